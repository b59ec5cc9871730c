package portal

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/hrpayroll/pkg/apiclient"
	"github.com/dmitrymomot/hrpayroll/pkg/authstore"
	"github.com/dmitrymomot/hrpayroll/pkg/clientip"
	"github.com/dmitrymomot/hrpayroll/pkg/logger"
	"github.com/dmitrymomot/hrpayroll/pkg/router"
)

func (p *Portal) login(w http.ResponseWriter, r *http.Request) {
	store, ok := p.formStore(w, r)
	if !ok {
		return
	}

	creds := apiclient.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	redirect := r.PostFormValue("redirect")

	key := "login:" + clientip.FromContext(r.Context())
	if wait, throttled := p.throttle(r, key); throttled {
		p.metrics.observeThrottled("login")
		w.Header().Set("Retry-After", strconv.Itoa(wait))
		p.render(w, r, http.StatusTooManyRequests, p.views.Login(LoginParams{
			Layout:   p.layout(r.Context(), router.NameLogin),
			Email:    creds.Email,
			Redirect: redirect,
			Error:    fmt.Sprintf("Too many sign-in attempts. Try again in %d seconds.", wait),
		}))
		return
	}

	_, err := store.Login(r.Context(), creds)
	p.metrics.observeAction("login", err)
	if err != nil {
		p.render(w, r, statusFor(err), p.views.Login(LoginParams{
			Layout:   p.layout(r.Context(), router.NameLogin),
			Email:    creds.Email,
			Redirect: redirect,
			Error:    store.LastError(),
		}))
		return
	}

	if p.limiter != nil {
		if err := p.limiter.Reset(r.Context(), key); err != nil {
			p.logger.WarnContext(r.Context(), "failed to reset login attempts",
				logger.Component("portal"),
				logger.Error(err),
			)
		}
	}
	http.Redirect(w, r, p.afterLogin(store, redirect), http.StatusSeeOther)
}

// throttle records a sign-in attempt for key. It reports the seconds to wait
// when the attempt is over the limit. Limiter failures let the attempt
// through.
func (p *Portal) throttle(r *http.Request, key string) (int, bool) {
	if p.limiter == nil {
		return 0, false
	}
	res, err := p.limiter.Allow(r.Context(), key)
	if err != nil {
		p.logger.WarnContext(r.Context(), "login rate limiter unavailable",
			logger.Component("portal"),
			logger.Error(err),
		)
		return 0, false
	}
	if res.Allowed() {
		return 0, false
	}
	return max(res.RetryAfterSeconds(), 1), true
}

// afterLogin picks where a fresh session lands: the requested same-origin
// location, resolved through the guard, or the dashboard.
func (p *Portal) afterLogin(store *authstore.Store, raw string) string {
	dashboard := p.router.PathOf(router.NameDashboard)
	if raw == "" {
		return dashboard
	}
	to, err := router.ParseLocation(raw)
	if err != nil {
		return dashboard
	}

	d := p.router.Resolve(to, router.Location{Path: p.router.PathOf(router.NameLogin)}, store)
	if d.Outcome == router.Redirect {
		return d.Location.FullPath()
	}
	return d.To.FullPath()
}

func (p *Portal) logout(w http.ResponseWriter, r *http.Request) {
	if store, ok := StoreFromContext(r.Context()); ok {
		store.Logout(r.Context())
		p.metrics.observeAction("logout", nil)
	}
	http.Redirect(w, r, p.router.PathOf(router.NameLogin), http.StatusSeeOther)
}

func (p *Portal) forgotPassword(w http.ResponseWriter, r *http.Request) {
	store, ok := p.formStore(w, r)
	if !ok {
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	params := ForgotPasswordParams{
		Layout: p.layout(r.Context(), NameForgotPassword),
		Email:  email,
	}

	err := store.ForgotPassword(r.Context(), email)
	p.metrics.observeAction("forgot_password", err)
	if err != nil {
		params.Error = store.LastError()
		p.render(w, r, statusFor(err), p.views.ForgotPassword(params))
		return
	}

	params.Sent = true
	p.render(w, r, http.StatusOK, p.views.ForgotPassword(params))
}

func (p *Portal) resetPassword(w http.ResponseWriter, r *http.Request) {
	store, ok := p.formStore(w, r)
	if !ok {
		return
	}

	data := apiclient.PasswordReset{
		Token:                r.PostFormValue("token"),
		Email:                strings.TrimSpace(r.PostFormValue("email")),
		Password:             r.PostFormValue("password"),
		PasswordConfirmation: r.PostFormValue("password_confirmation"),
	}

	err := store.ResetPassword(r.Context(), data)
	p.metrics.observeAction("reset_password", err)
	if err != nil {
		p.render(w, r, statusFor(err), p.views.ResetPassword(ResetPasswordParams{
			Layout: p.layout(r.Context(), NameResetPassword),
			Token:  data.Token,
			Email:  data.Email,
			Error:  store.LastError(),
		}))
		return
	}

	loc := router.Location{Path: p.router.PathOf(router.NameLogin), Query: url.Values{"reset": {"1"}}}
	http.Redirect(w, r, loc.FullPath(), http.StatusSeeOther)
}

func (p *Portal) updateProfile(w http.ResponseWriter, r *http.Request) {
	store, ok := p.authedFormStore(w, r)
	if !ok {
		return
	}

	data := apiclient.ProfileUpdate{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
	}

	status := http.StatusOK
	params := ProfileParams{Notice: "Profile updated."}
	_, err := store.UpdateProfile(r.Context(), data)
	p.metrics.observeAction("update_profile", err)
	if err != nil {
		status = statusFor(err)
		params = ProfileParams{Error: store.LastError()}
	}

	p.ensureUser(r, store)
	params.Layout = p.layout(r.Context(), NameProfile)
	p.render(w, r, status, p.views.Profile(params))
}

func (p *Portal) changePassword(w http.ResponseWriter, r *http.Request) {
	store, ok := p.authedFormStore(w, r)
	if !ok {
		return
	}

	data := apiclient.PasswordChange{
		CurrentPassword:      r.PostFormValue("current_password"),
		Password:             r.PostFormValue("password"),
		PasswordConfirmation: r.PostFormValue("password_confirmation"),
	}

	status := http.StatusOK
	params := ProfileParams{Notice: "Password changed."}
	err := store.ChangePassword(r.Context(), data)
	p.metrics.observeAction("change_password", err)
	if err != nil {
		status = statusFor(err)
		params = ProfileParams{Error: store.LastError()}
	}

	p.ensureUser(r, store)
	params.Layout = p.layout(r.Context(), NameProfile)
	p.render(w, r, status, p.views.Profile(params))
}

// ensureUser loads the profile shown next to the forms. Posts skip Init, so
// the store usually has no user yet; a failed fetch leaves the form blank.
func (p *Portal) ensureUser(r *http.Request, store *authstore.Store) {
	if store.User() == nil {
		_, _ = store.FetchUser(r.Context())
	}
}

// formStore parses the posted form and returns the request's store.
func (p *Portal) formStore(w http.ResponseWriter, r *http.Request) (*authstore.Store, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return nil, false
	}
	store, ok := StoreFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return nil, false
	}
	return store, true
}

// authedFormStore is formStore for forms that need a session; anonymous
// posts are sent to the login page, which returns them to the profile.
func (p *Portal) authedFormStore(w http.ResponseWriter, r *http.Request) (*authstore.Store, bool) {
	store, ok := p.formStore(w, r)
	if !ok {
		return nil, false
	}
	if !store.IsAuthenticated() {
		loc := router.Location{
			Path:  p.router.PathOf(router.NameLogin),
			Query: url.Values{"redirect": {p.router.PathOf(NameProfile)}},
		}
		http.Redirect(w, r, loc.FullPath(), http.StatusSeeOther)
		return nil, false
	}
	return store, true
}

// render writes c with status, or hands a render failure to the router.
func (p *Portal) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		p.router.HandleError(w, r, errors.Join(router.ErrNavigation, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// statusFor maps a failed action to the status of the re-rendered form.
func statusFor(err error) int {
	switch {
	case apiclient.IsUnauthorized(err):
		return http.StatusUnauthorized
	case errors.Is(err, apiclient.ErrTransport), errors.Is(err, apiclient.ErrDecode):
		return http.StatusBadGateway
	}
	if code := apiclient.StatusCode(err); code >= 400 && code < 500 {
		return code
	}
	if apiclient.StatusCode(err) >= 500 {
		return http.StatusBadGateway
	}
	return http.StatusUnprocessableEntity
}
