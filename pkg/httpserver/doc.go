// Package httpserver runs the portal's HTTP listener with graceful shutdown
// and exposes liveness and readiness probe handlers.
//
// Run blocks until its context is cancelled, SIGINT/SIGTERM arrives or the
// listener fails. On the way out in-flight requests get ShutdownTimeout to
// finish.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	mux.Get("/healthz", httpserver.Liveness())
//	mux.Get("/readyz", httpserver.Readiness(log, map[string]httpserver.Check{
//		"redis": redis.Healthcheck(client),
//	}))
//	if err := srv.Run(ctx, mux); err != nil {
//		return err
//	}
//
// Listen failures are joined with ErrStart and shutdown failures with
// ErrShutdown.
package httpserver
