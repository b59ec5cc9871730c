package portal

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/hrpayroll/pkg/apiclient"
	"github.com/dmitrymomot/hrpayroll/pkg/requestid"
	"github.com/dmitrymomot/hrpayroll/pkg/router"
)

// NavItem is one entry of the main menu.
type NavItem struct {
	Title  string
	Path   string
	Active bool
}

// Layout is the data every page shares.
type Layout struct {
	Title     string
	Layout    string
	User      *apiclient.User
	Nav       []NavItem
	Scroll    router.Position
	RequestID string
	// Partial pages render only the content element.
	Partial bool
}

// PageParams is passed to the section pages and the not-found page.
type PageParams struct {
	Layout
	Route router.Route
	Path  string
}

type LoginParams struct {
	Layout
	Email    string
	Redirect string
	Error    string
	Notice   string
}

type ForgotPasswordParams struct {
	Layout
	Email string
	Sent  bool
	Error string
}

type ResetPasswordParams struct {
	Layout
	Token string
	Email string
	Error string
}

type ProfileParams struct {
	Layout
	Error  string
	Notice string
}

// Views renders the portal pages.
type Views struct {
	Page           func(PageParams) templ.Component
	NotFound       func(PageParams) templ.Component
	Login          func(LoginParams) templ.Component
	ForgotPassword func(ForgotPasswordParams) templ.Component
	ResetPassword  func(ResetPasswordParams) templ.Component
	Profile        func(ProfileParams) templ.Component
}

func (v Views) merge(o Views) Views {
	if o.Page != nil {
		v.Page = o.Page
	}
	if o.NotFound != nil {
		v.NotFound = o.NotFound
	}
	if o.Login != nil {
		v.Login = o.Login
	}
	if o.ForgotPassword != nil {
		v.ForgotPassword = o.ForgotPassword
	}
	if o.ResetPassword != nil {
		v.ResetPassword = o.ResetPassword
	}
	if o.Profile != nil {
		v.Profile = o.Profile
	}
	return v
}

// layout collects the shared page data. The guard's decision provides the
// title and scroll position on page requests; form posts fall back to the
// named route.
func (p *Portal) layout(ctx context.Context, name string) Layout {
	l := Layout{RequestID: requestid.FromContext(ctx)}

	current := name
	if d, ok := router.DecisionFromContext(ctx); ok {
		l.Title = d.Title
		l.Layout = d.Route.Meta.Layout
		l.Scroll = d.Scroll
		l.Partial = d.Partial
		current = d.Route.Name
	} else if rt, _, ok := p.router.Route(name); ok {
		l.Title = p.router.Title(rt.Meta.Title)
		l.Layout = rt.Meta.Layout
	}
	if l.Layout == "" {
		l.Layout = router.LayoutDefault
	}

	store, ok := StoreFromContext(ctx)
	if !ok || !store.IsAuthenticated() {
		return l
	}
	l.User = store.User()
	for _, rt := range p.router.Routes() {
		if rt.Name == "" || !rt.Meta.RequiresAuth {
			continue
		}
		l.Nav = append(l.Nav, NavItem{
			Title:  rt.Meta.Title,
			Path:   p.router.PathOf(rt.Name),
			Active: rt.Name == current,
		})
	}
	return l
}

// pages binds every named route to a component reading its data from the
// request context at render time.
func (p *Portal) pages() map[string]templ.Component {
	views := make(map[string]templ.Component)
	for _, rt := range p.router.Routes() {
		if rt.Name == "" {
			continue
		}
		name := rt.Name
		views[name] = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return p.page(ctx, name).Render(ctx, w)
		})
	}
	return views
}

func (p *Portal) page(ctx context.Context, name string) templ.Component {
	l := p.layout(ctx, name)
	d, _ := router.DecisionFromContext(ctx)
	q := d.To.Query

	var lastError string
	if store, ok := StoreFromContext(ctx); ok {
		lastError = store.LastError()
	}

	switch name {
	case router.NameLogin:
		params := LoginParams{Layout: l, Redirect: q.Get("redirect")}
		if q.Has("reset") {
			params.Notice = "Your password has been reset. Please sign in."
		}
		return p.views.Login(params)
	case NameForgotPassword:
		return p.views.ForgotPassword(ForgotPasswordParams{Layout: l, Email: q.Get("email")})
	case NameResetPassword:
		return p.views.ResetPassword(ResetPasswordParams{Layout: l, Token: q.Get("token"), Email: q.Get("email")})
	case NameProfile:
		return p.views.Profile(ProfileParams{Layout: l, Error: lastError})
	case router.NameNotFound:
		return p.views.NotFound(PageParams{Layout: l, Route: d.Route, Path: d.To.Path})
	default:
		return p.views.Page(PageParams{Layout: l, Route: d.Route, Path: d.To.Path})
	}
}
