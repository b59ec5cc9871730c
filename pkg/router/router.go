package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/hrpayroll/pkg/logger"
)

// maxRedirects bounds how many record redirects one navigation may follow.
const maxRedirects = 8

// Authenticator reports whether the current session holds a token.
// *authstore.Store implements it.
type Authenticator interface {
	IsAuthenticated() bool
}

// Outcome is what the guard decided for a navigation.
type Outcome int

const (
	Proceed Outcome = iota
	Redirect
)

func (o Outcome) String() string {
	if o == Redirect {
		return "redirect"
	}
	return "proceed"
}

// Decision is the result of resolving a navigation.
type Decision struct {
	Outcome Outcome
	// To is the target after record redirects and path normalisation.
	To Location
	// Location is where to go instead when Outcome is Redirect.
	Location Location
	// Route is the matched leaf record for To.
	Route Route
	// Matched lists the records from the outermost parent to the leaf.
	Matched      []Route
	Title        string
	RequiresAuth bool
	Scroll       Position
	// Partial is set by Guard for in-page navigations.
	Partial bool
	// Restored is set by Guard when the client sent a saved scroll
	// position, i.e. on back/forward navigation.
	Restored bool
}

// entry is one flattened record with its absolute path and ancestry.
type entry struct {
	path  string
	chain []Route
}

// Router resolves navigations against an ordered route table.
type Router struct {
	routes  []Route
	entries []entry
	byName  map[string]int
	logger  *slog.Logger
	suffix  string
	scroll  ScrollFunc
	observe func(*http.Request, Decision)
}

// Option configures a Router.
type Option func(*Router)

func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTitleSuffix replaces TitleSuffix in page titles.
func WithTitleSuffix(s string) Option {
	return func(r *Router) {
		r.suffix = s
	}
}

// WithScrollBehavior replaces DefaultScrollBehavior.
func WithScrollBehavior(fn ScrollFunc) Option {
	return func(r *Router) {
		if fn != nil {
			r.scroll = fn
		}
	}
}

// WithObserver sets a function Guard calls with every decision it makes.
func WithObserver(fn func(*http.Request, Decision)) Option {
	return func(r *Router) {
		r.observe = fn
	}
}

// New builds a router. The table must contain a catch-all record plus the
// login, dashboard and not-found routes, and names must be unique.
func New(routes []Route, opts ...Option) (*Router, error) {
	r := &Router{
		routes: routes,
		byName: make(map[string]int),
		logger: logger.Discard(),
		suffix: TitleSuffix,
		scroll: DefaultScrollBehavior,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.flatten(routes, "", nil)

	catchAll := false
	for i, e := range r.entries {
		leaf := e.chain[len(e.chain)-1]
		if e.path == CatchAll {
			catchAll = true
		}
		if leaf.Name == "" {
			continue
		}
		if _, ok := r.byName[leaf.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, leaf.Name)
		}
		r.byName[leaf.Name] = i
	}
	if !catchAll {
		return nil, ErrNoCatchAll
	}
	for _, name := range []string{NameLogin, NameDashboard, NameNotFound} {
		if _, ok := r.byName[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingRoute, name)
		}
	}

	return r, nil
}

func (r *Router) flatten(routes []Route, parent string, ancestors []Route) {
	for _, rt := range routes {
		p := joinPath(parent, rt.Path)
		if p != CatchAll {
			p = cleanPath(p)
		}
		chain := append(append([]Route(nil), ancestors...), rt)
		r.entries = append(r.entries, entry{path: p, chain: chain})
		if len(rt.Children) > 0 {
			r.flatten(rt.Children, p, chain)
		}
	}
}

// Routes returns the route table as declared.
func (r *Router) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

// Route returns the named record and its absolute path.
func (r *Router) Route(name string) (Route, string, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Route{}, "", false
	}
	e := r.entries[i]
	return e.chain[len(e.chain)-1], e.path, true
}

// PathOf returns the absolute path of a named route. The catch-all route
// resolves to NotFoundPath.
func (r *Router) PathOf(name string) string {
	_, p, ok := r.Route(name)
	if !ok || p == CatchAll {
		return NotFoundPath
	}
	return p
}

// match returns the first entry whose path equals p, ignoring case.
func (r *Router) match(p string) entry {
	p = cleanPath(p)
	for _, e := range r.entries {
		if e.path == CatchAll || strings.EqualFold(e.path, p) {
			return e
		}
	}
	// unreachable: New guarantees a catch-all entry
	return r.entries[len(r.entries)-1]
}

// Title formats a page title the way Resolve does.
func (r *Router) Title(title string) string {
	switch {
	case title == "":
		return r.suffix
	case r.suffix == "":
		return title
	}
	return title + " - " + r.suffix
}

// Resolve decides what happens when navigating from one location to
// another. A nil auth counts as signed out.
func (r *Router) Resolve(to, from Location, auth Authenticator) Decision {
	d, err := r.resolve(to, from, auth)
	if err != nil {
		r.logger.Error("navigation failed",
			logger.Component("router"),
			logger.Path(to.FullPath()),
			logger.Error(err),
		)
		return r.notFound(from)
	}
	return d
}

// notFound is the decision for a failed navigation. It bypasses matching so
// a broken table cannot fail twice.
func (r *Router) notFound(from Location) Decision {
	i := r.byName[NameNotFound]
	e := r.entries[i]
	loc := Location{Path: r.PathOf(NameNotFound)}
	return Decision{
		Outcome:  Redirect,
		To:       loc,
		Location: loc,
		Route:    e.chain[len(e.chain)-1],
		Matched:  e.chain,
		Title:    r.Title(e.chain[len(e.chain)-1].Meta.Title),
		Scroll:   r.scroll(loc, from, nil),
	}
}

func (r *Router) resolve(to, from Location, auth Authenticator) (Decision, error) {
	loc := Location{Path: to.Path, Query: to.Query}
	moved := false

	var e entry
	for i := 0; ; i++ {
		if i > maxRedirects {
			return Decision{}, errors.Join(ErrNavigation, ErrRedirectLoop)
		}
		e = r.match(loc.Path)
		leaf := e.chain[len(e.chain)-1]
		if leaf.Redirect == "" {
			break
		}
		target, err := ParseLocation(leaf.Redirect)
		if err != nil {
			return Decision{}, errors.Join(ErrNavigation, err)
		}
		if len(target.Query) == 0 {
			target.Query = loc.Query
		}
		loc = target
		moved = true
	}
	if e.path != CatchAll && loc.Path != e.path {
		loc.Path = e.path
		moved = true
	}

	leaf := e.chain[len(e.chain)-1]
	d := Decision{
		Outcome: Proceed,
		To:      loc,
		Route:   leaf,
		Matched: e.chain,
		Title:   r.Title(leaf.Meta.Title),
		Scroll:  r.scroll(loc, from, nil),
	}
	for _, rt := range e.chain {
		if rt.Meta.RequiresAuth {
			d.RequiresAuth = true
			break
		}
	}

	authed := auth != nil && auth.IsAuthenticated()
	switch {
	case d.RequiresAuth && !authed:
		d.Outcome = Redirect
		d.Location = Location{
			Path:  r.PathOf(NameLogin),
			Query: url.Values{"redirect": {loc.FullPath()}},
		}
	case leaf.Name == NameLogin && authed:
		d.Outcome = Redirect
		d.Location = Location{Path: r.PathOf(NameDashboard)}
	case moved:
		d.Outcome = Redirect
		d.Location = loc
	}

	r.logger.Debug("navigation resolved",
		logger.Component("router"),
		logger.Route(leaf.Name),
		logger.Path(to.FullPath()),
		slog.String("from", from.FullPath()),
		slog.String("outcome", d.Outcome.String()),
	)
	return d, nil
}
