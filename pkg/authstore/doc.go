// Package authstore holds the authentication state of one client session and
// the actions that change it.
//
// A Store is created once per session with the token persisted by a
// tokenstore.Storage, so a restarted client is immediately considered
// authenticated. The user profile is not persisted; Init re-fetches it and
// logs the session out when the backend answers 401.
//
//	store, err := authstore.New(ctx, api, tokenstore.NewFile(path))
//	if err != nil {
//		return err
//	}
//	store.Init(ctx)
//	if !store.IsAuthenticated() {
//		_, err = store.Login(ctx, apiclient.Credentials{Email: email, Password: pw})
//	}
//
// Each action marks the store as loading, clears the last error, performs one
// API call and updates the state. Failures are recorded as LastError and
// returned, except for Logout (local state is always cleared) and Init (only a
// 401 has an effect).
//
// Actions may run concurrently. Responses are applied only if no newer call
// touching the same state has started since, and never after a login or logout
// that happened in between, so a slow response cannot overwrite fresher state.
package authstore
