package portal

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// DefaultViews returns minimal placeholder pages. Real screens are expected
// to replace them through WithViews.
func DefaultViews() Views {
	return Views{
		Page:           pageView,
		NotFound:       notFoundView,
		Login:          loginView,
		ForgotPassword: forgotPasswordView,
		ResetPassword:  resetPasswordView,
		Profile:        profileView,
	}
}

type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) { h.raw(templ.EscapeString(s)) }

func (h *html) alert(class, msg string) {
	if msg == "" {
		return
	}
	h.raw(`<p class="` + class + `" role="alert">`)
	h.text(msg)
	h.raw(`</p>`)
}

func (h *html) hidden(name, value string) {
	h.raw(`<input type="hidden" name="` + name + `" value="`)
	h.text(value)
	h.raw(`">`)
}

func (h *html) input(kind, name, label, value string) {
	h.raw(`<label>` + label + ` <input type="` + kind + `" name="` + name + `"`)
	if value != "" {
		h.raw(` value="`)
		h.text(value)
		h.raw(`"`)
	}
	h.raw(`></label>`)
}

// datastarScript loads the client that turns menu clicks into in-page
// navigations.
const datastarScript = `<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"></script>`

func shell(l Layout, body func(h *html)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		if l.Partial {
			h.raw(`<main id="content">`)
			body(h)
			h.raw(`</main>`)
			return h.err
		}

		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		h.text(l.Title)
		h.raw(`</title>` + datastarScript + `</head><body data-layout="`)
		h.text(l.Layout)
		h.raw(`" data-scroll-left="` + strconv.Itoa(l.Scroll.Left) + `" data-scroll-top="` + strconv.Itoa(l.Scroll.Top) + `"`)
		if l.RequestID != "" {
			h.raw(` data-request-id="`)
			h.text(l.RequestID)
			h.raw(`"`)
		}
		h.raw(`>`)

		if l.User != nil {
			h.raw(`<nav>`)
			for _, item := range l.Nav {
				h.raw(`<a href="`)
				h.text(item.Path)
				h.raw(`" data-on-click__prevent="@get('`)
				h.text(item.Path)
				h.raw(`')"`)
				if item.Active {
					h.raw(` aria-current="page"`)
				}
				h.raw(`>`)
				h.text(item.Title)
				h.raw(`</a>`)
			}
			h.raw(`<a href="/profile">`)
			h.text(l.User.DisplayName())
			h.raw(`</a><form method="post" action="/logout"><button type="submit">Sign out</button></form></nav>`)
		}

		h.raw(`<main id="content">`)
		body(h)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

func pageView(p PageParams) templ.Component {
	return shell(p.Layout, func(h *html) {
		h.raw(`<h1>`)
		h.text(p.Route.Meta.Title)
		h.raw(`</h1><section data-component="`)
		h.text(p.Route.Component)
		h.raw(`"></section>`)
	})
}

func notFoundView(p PageParams) templ.Component {
	return shell(p.Layout, func(h *html) {
		h.raw(`<h1>Page Not Found</h1><p>Nothing lives at <code>`)
		h.text(p.Path)
		h.raw(`</code>.</p><a href="/dashboard">Back to the dashboard</a>`)
	})
}

func loginView(p LoginParams) templ.Component {
	return shell(p.Layout, func(h *html) {
		h.raw(`<h1>Sign in</h1>`)
		h.alert("notice", p.Notice)
		h.alert("error", p.Error)
		h.raw(`<form method="post" action="/login">`)
		h.input("email", "email", "Email", p.Email)
		h.input("password", "password", "Password", "")
		h.hidden("redirect", p.Redirect)
		h.raw(`<button type="submit">Sign in</button></form><a href="/forgot-password">Forgot your password?</a>`)
	})
}

func forgotPasswordView(p ForgotPasswordParams) templ.Component {
	return shell(p.Layout, func(h *html) {
		h.raw(`<h1>Forgot password</h1>`)
		if p.Sent {
			h.raw(`<p class="notice">If an account exists for `)
			h.text(p.Email)
			h.raw(`, a reset link is on its way.</p>`)
			return
		}
		h.alert("error", p.Error)
		h.raw(`<form method="post" action="/forgot-password">`)
		h.input("email", "email", "Email", p.Email)
		h.raw(`<button type="submit">Send reset link</button></form>`)
	})
}

func resetPasswordView(p ResetPasswordParams) templ.Component {
	return shell(p.Layout, func(h *html) {
		h.raw(`<h1>Reset password</h1>`)
		h.alert("error", p.Error)
		h.raw(`<form method="post" action="/reset-password">`)
		h.hidden("token", p.Token)
		h.input("email", "email", "Email", p.Email)
		h.input("password", "password", "New password", "")
		h.input("password", "password_confirmation", "Confirm password", "")
		h.raw(`<button type="submit">Reset password</button></form>`)
	})
}

func profileView(p ProfileParams) templ.Component {
	return shell(p.Layout, func(h *html) {
		h.raw(`<h1>Profile</h1>`)
		h.alert("notice", p.Notice)
		h.alert("error", p.Error)

		var name, username, email string
		if p.User != nil {
			name, username, email = p.User.Name, p.User.Username, p.User.Email
		}
		h.raw(`<form method="post" action="/profile">`)
		h.input("text", "name", "Name", name)
		h.input("text", "username", "Username", username)
		h.input("email", "email", "Email", email)
		h.raw(`<button type="submit">Save</button></form>`)

		h.raw(`<form method="post" action="/password">`)
		h.input("password", "current_password", "Current password", "")
		h.input("password", "password", "New password", "")
		h.input("password", "password_confirmation", "Confirm password", "")
		h.raw(`<button type="submit">Change password</button></form>`)
	})
}
