package router

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/hrpayroll/pkg/logger"
)

// In-page navigation: the shell issues datastar requests and the page
// handler answers with server-sent events that swap the content element,
// update the title and history and apply the scroll position.
const (
	// ContentSelector is the element replaced on in-page navigations.
	ContentSelector = "#content"

	partialAccept = "text/event-stream"
	partialQuery  = "datastar"
)

// IsPartial reports whether req is an in-page navigation issued by datastar.
func IsPartial(req *http.Request) bool {
	if strings.Contains(req.Header.Get("Accept"), partialAccept) {
		return true
	}
	return req.URL.Query().Has(partialQuery)
}

// redirect sends the client to target, through an event stream for in-page
// navigations.
func (r *Router) redirect(w http.ResponseWriter, req *http.Request, target string) {
	if !IsPartial(req) {
		http.Redirect(w, req, target, http.StatusFound)
		return
	}
	if err := datastar.NewSSE(w, req).Redirect(target); err != nil {
		r.logger.WarnContext(req.Context(), "failed to stream redirect",
			logger.Component("router"),
			slog.String("location", target),
			logger.Error(err),
		)
	}
}

// patch streams a rendered page into the content element followed by a
// script that syncs the title, the address bar and the scroll offset.
func (r *Router) patch(w http.ResponseWriter, req *http.Request, d Decision, html string) error {
	sse := datastar.NewSSE(w, req)
	if err := sse.PatchElementTempl(templ.Raw(html), datastar.WithSelector(ContentSelector)); err != nil {
		return err
	}
	return sse.ExecuteScript(navigationScript(d))
}

// navigationScript syncs the document with d after a content patch.
// Back/forward navigations replace the history entry the browser already
// moved to instead of pushing a new one.
func navigationScript(d Decision) string {
	title, _ := json.Marshal(d.Title)
	path, _ := json.Marshal(d.To.FullPath())
	history := "pushState"
	if d.Restored {
		history = "replaceState"
	}
	return fmt.Sprintf("document.title=%s;history.%s(null,\"\",%s);window.scrollTo(%d,%d);",
		title, history, path, d.Scroll.Left, d.Scroll.Top)
}
