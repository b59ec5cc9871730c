// Package logger builds the structured loggers used by the HR payroll shell.
//
// It wraps log/slog with functional options and a small set of attribute
// helpers so that every component names its fields the same way:
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "hrportal"),
//	    logger.WithContextValue("request_id", requestIDKey),
//	)
//	log.InfoContext(ctx, "navigation resolved",
//	    logger.Component("router"),
//	    logger.Path(r.URL.Path),
//	)
//
// Error and UserID return an empty attribute for nil input, so callers can pass
// them unconditionally:
//
//	log.Warn("logout request failed", logger.Error(err))
//
// Context extractors registered with WithContextExtractors or WithContextValue
// run on every record and inject request-scoped values such as request ids.
package logger
