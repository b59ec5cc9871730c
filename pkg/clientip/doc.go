// Package clientip determines the address of the browser behind a portal
// request and carries it in the request context for logging.
//
// Forwarding headers (X-Forwarded-For, X-Real-IP) are honoured only when the
// portal runs behind a trusted proxy; otherwise anyone could spoof them.
//
//	mux.Use(clientip.Middleware(cfg.TrustProxy))
//	ip := clientip.FromContext(r.Context())
package clientip
