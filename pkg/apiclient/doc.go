// Package apiclient is the HTTP/JSON client for the HR payroll backend's
// authentication endpoints.
//
// Every call takes the bearer token explicitly. The client never keeps an
// Authorization header between requests, so two callers holding different
// tokens can share one Client:
//
//	c := apiclient.New("http://localhost:8000/api")
//	res, err := c.Login(ctx, apiclient.Credentials{Email: "a@b.com", Password: "x"})
//	if err != nil {
//		return err
//	}
//	user, err := c.CurrentUser(ctx, res.Token)
//
// Failures are classified as transport errors (ErrTransport), unauthorized
// responses (ErrUnauthorized, also matched by IsUnauthorized), and other API
// errors returned as *Error carrying the status code and the server's message.
package apiclient
