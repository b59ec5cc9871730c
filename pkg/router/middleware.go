package router

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/hrpayroll/pkg/logger"
)

// AuthFunc returns the session of a request.
type AuthFunc func(*http.Request) Authenticator

// Guard resolves every GET and HEAD request against the table. Redirect
// decisions are answered with 302, or a streamed redirect for in-page
// navigations; otherwise the decision is stored in the request context for
// the view. Other methods pass through untouched.
func (r *Router) Guard(auth AuthFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Method != http.MethodGet && req.Method != http.MethodHead {
				next.ServeHTTP(w, req)
				return
			}

			var a Authenticator
			if auth != nil {
				a = auth(req)
			}

			partial := IsPartial(req)
			to := FromURL(req.URL)
			if partial {
				to.Query.Del(partialQuery)
			}
			from := referer(req)
			d := r.Resolve(to, from, a)
			if saved := ParsePosition(req.Header.Get(ScrollHeader)); saved != nil {
				d.Scroll = r.scroll(d.To, from, saved)
				d.Restored = true
			}

			d.Partial = partial
			if r.observe != nil {
				r.observe(req, d)
			}

			if d.Outcome == Redirect {
				r.redirect(w, req, d.Location.FullPath())
				return
			}

			next.ServeHTTP(w, req.WithContext(WithDecision(req.Context(), d)))
		})
	}
}

// Recoverer turns panics in page handlers into HandleError calls.
func (r *Router) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				r.HandleError(w, req, fmt.Errorf("%w: panic: %v", ErrNavigation, rec))
			}
		}()
		next.ServeHTTP(w, req)
	})
}

// HandleError logs a failed navigation and sends the client to the not-found
// page. A failure on the not-found page itself is answered with a plain 500.
func (r *Router) HandleError(w http.ResponseWriter, req *http.Request, err error) {
	r.logger.ErrorContext(req.Context(), "router error",
		logger.Component("router"),
		logger.Path(req.URL.Path),
		logger.Error(err),
	)

	target := r.PathOf(NameNotFound)
	if cleanPath(req.URL.Path) == target {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	r.redirect(w, req, target)
}

// referer returns the same-host previous location, or an empty one.
func referer(req *http.Request) Location {
	raw := req.Referer()
	if raw == "" {
		return Location{}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Host != "" && u.Host != req.Host) {
		return Location{}
	}
	return FromURL(u)
}
