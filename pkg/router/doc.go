// Package router holds the page route table of the portal and the guard that
// decides, before a page renders, whether navigation proceeds or redirects.
//
// Routes are matched in declaration order; the first record whose path
// matches wins and a catch-all record ("*") takes everything else. Resolve
// follows record redirects, normalises the path, computes the page title and
// applies the authentication rules:
//
//   - a route (or any of its ancestors) with RequiresAuth and no session
//     redirects to the login route with ?redirect=<original full path>;
//   - the login route with a session redirects to the dashboard;
//   - anything else proceeds.
//
// The same Resolve is used by the HTTP guard and by the hrctl nav command.
//
// Mount serves full documents to plain requests. Requests issued by datastar
// (IsPartial) get server-sent events instead: the rendered page replaces
// ContentSelector and a script updates the title, history and scroll
// offset. Guard redirects for them are streamed the same way.
//
//	rt, err := router.New(router.DefaultRoutes(), router.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	rt.Mount(mux, authFn, views)
package router
