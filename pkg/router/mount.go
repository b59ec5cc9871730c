package router

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/hrpayroll/pkg/logger"
)

// Mount registers the table on mux behind Guard. views maps route names to
// components; the not-found view also serves every unmatched path with 404.
// A record without a view fails its navigation through HandleError.
//
// mux may be the root router or a single Group of it.
func (r *Router) Mount(mux chi.Router, auth AuthFunc, views map[string]templ.Component) {
	guard := r.Guard(auth)
	guarded := mux.With(r.Recoverer, guard)

	for _, e := range r.entries {
		leaf := e.chain[len(e.chain)-1]
		switch {
		case e.path == CatchAll:
			mux.NotFound(r.Recoverer(guard(r.page(views[leaf.Name], http.StatusNotFound))).ServeHTTP)
		case leaf.Redirect != "":
			// answered by Guard through the not-found chain
		default:
			guarded.Get(e.path, r.page(views[leaf.Name], http.StatusOK))
		}
	}
}

// page renders c into a buffer so a failing component never leaves a
// half-written response. In-page navigations get the buffer as a content
// patch instead of a full document.
func (r *Router) page(c templ.Component, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if c == nil {
			r.HandleError(w, req, ErrViewNotFound)
			return
		}

		var buf bytes.Buffer
		if err := c.Render(req.Context(), &buf); err != nil {
			r.HandleError(w, req, err)
			return
		}

		if d, ok := DecisionFromContext(req.Context()); ok && d.Partial {
			if err := r.patch(w, req, d, buf.String()); err != nil {
				r.logger.WarnContext(req.Context(), "failed to stream page",
					logger.Component("router"),
					logger.Route(d.Route.Name),
					logger.Error(err),
				)
			}
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = buf.WriteTo(w)
	}
}
