// Package hrctl implements the hrctl command line client: it signs in to the
// HR Payroll API, keeps the bearer token in a local file and exposes the
// session actions and the page router as commands.
//
// Every command restores the session first, the way the web shell does on
// start: a stored token is checked against the API and dropped on 401.
package hrctl
