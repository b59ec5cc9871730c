// Package portal is the server-rendered HR Payroll shell: it serves the page
// route table behind the authentication guard and handles the login, logout,
// password and profile forms.
//
// Every request gets its own authstore.Store. The store's token lives in an
// encrypted cookie, or in Redis keyed by a signed device cookie when
// TOKEN_STORAGE=redis. Page requests call Init first, so an expired token is
// noticed (and cleared) before the guard runs.
//
//	p, err := portal.New(cfg, api, cookies,
//		portal.WithLogger(log),
//		portal.WithRedis(client),
//	)
//	if err != nil {
//		return err
//	}
//	return srv.Run(ctx, p.Handler())
package portal
