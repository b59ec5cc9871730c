package portal_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hrpayroll/modules/portal"
	"github.com/dmitrymomot/hrpayroll/pkg/apiclient"
	"github.com/dmitrymomot/hrpayroll/pkg/cookie"
	"github.com/dmitrymomot/hrpayroll/pkg/ratelimiter"
	"github.com/dmitrymomot/hrpayroll/pkg/tokenstore"
)

// backend is an in-memory stand-in for the HR Payroll API.
type backend struct {
	mu      sync.Mutex
	tokens  map[string]*apiclient.User
	bearers []string
	logouts int
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()
	b := &backend{tokens: map[string]*apiclient.User{}}
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *backend) revokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.tokens)
}

func (b *backend) sawBearer(v string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, h := range b.bearers {
		if h == v {
			return true
		}
	}
	return false
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	auth := r.Header.Get("Authorization")
	if auth != "" {
		b.bearers = append(b.bearers, auth)
	}
	user := b.tokens[strings.TrimPrefix(auth, "Bearer ")]

	reply := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if v != nil {
			_ = json.NewEncoder(w).Encode(v)
		}
	}
	fail := func(status int, msg string) { reply(status, map[string]string{"message": msg}) }

	switch r.Method + " " + r.URL.Path {
	case "POST /api/auth/login":
		var creds apiclient.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "a@b.com" || creds.Password != "x" {
			fail(http.StatusUnauthorized, "Invalid credentials")
			return
		}
		u := &apiclient.User{ID: 1, Name: "A", Email: creds.Email}
		b.tokens["T1"] = u
		reply(http.StatusOK, apiclient.LoginResponse{User: *u, Token: "T1"})
	case "POST /api/auth/logout":
		if user == nil {
			fail(http.StatusUnauthorized, "")
			return
		}
		b.logouts++
		delete(b.tokens, strings.TrimPrefix(auth, "Bearer "))
		reply(http.StatusNoContent, nil)
	case "GET /api/auth/user":
		if user == nil {
			fail(http.StatusUnauthorized, "")
			return
		}
		reply(http.StatusOK, user)
	case "PUT /api/auth/profile":
		if user == nil {
			fail(http.StatusUnauthorized, "")
			return
		}
		var data apiclient.ProfileUpdate
		_ = json.NewDecoder(r.Body).Decode(&data)
		if data.Name != "" {
			user.Name = data.Name
		}
		reply(http.StatusOK, user)
	case "PUT /api/auth/password":
		var data apiclient.PasswordChange
		_ = json.NewDecoder(r.Body).Decode(&data)
		if user == nil || data.CurrentPassword != "x" {
			fail(http.StatusUnprocessableEntity, "Current password is incorrect")
			return
		}
		reply(http.StatusNoContent, nil)
	case "POST /api/auth/forgot-password":
		reply(http.StatusOK, map[string]string{"status": "sent"})
	case "POST /api/auth/reset-password":
		var data apiclient.PasswordReset
		_ = json.NewDecoder(r.Body).Decode(&data)
		if data.Token != "good" {
			fail(http.StatusUnprocessableEntity, "Invalid token")
			return
		}
		reply(http.StatusNoContent, nil)
	default:
		fail(http.StatusNotFound, "not found")
	}
}

type harness struct {
	backend *backend
	server  *httptest.Server
	client  *http.Client
	jar     *cookiejar.Jar
}

func newHarness(t *testing.T, cfg portal.Config, opts ...portal.Option) *harness {
	t.Helper()

	b, api := newBackend(t)
	cookies, err := cookie.New([]string{strings.Repeat("k", 32)})
	require.NoError(t, err)

	p, err := portal.New(cfg, apiclient.New(api.URL+"/api"), cookies, opts...)
	require.NoError(t, err)

	srv := httptest.NewServer(p.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &harness{
		backend: b,
		server:  srv,
		jar:     jar,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (h *harness) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := h.client.Get(h.server.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (h *harness) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := h.client.PostForm(h.server.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	resp, _ := h.post(t, "/login", url.Values{"email": {"a@b.com"}, "password": {"x"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func (h *harness) hasCookie(name string) bool {
	u, _ := url.Parse(h.server.URL)
	for _, c := range h.jar.Cookies(u) {
		if c.Name == name {
			return true
		}
	}
	return false
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestAnonymousPageRedirectsToLogin(t *testing.T) {
	t.Parallel()
	h := newHarness(t, portal.Config{})

	resp, _ := h.get(t, "/dashboard?tab=overview")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?redirect=%2Fdashboard%3Ftab%3Doverview", resp.Header.Get("Location"))

	resp, body := h.get(t, "/login?redirect=%2Fdashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<title>Login - HR Payroll</title>")
	assert.Contains(t, body, `data-layout="auth"`)
	assert.Contains(t, body, `name="redirect" value="/dashboard"`)
}

func TestLoginFlow(t *testing.T) {
	t.Parallel()
	h := newHarness(t, portal.Config{})

	resp, _ := h.post(t, "/login", url.Values{
		"email":    {"a@b.com"},
		"password": {"x"},
		"redirect": {"/payroll?month=3"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/payroll?month=3", resp.Header.Get("Location"))
	assert.True(t, h.hasCookie(tokenstore.Key))

	resp, body := h.get(t, "/payroll?month=3")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<title>Payroll - HR Payroll</title>")
	assert.Contains(t, body, `href="/payroll" data-on-click__prevent="@get('/payroll')" aria-current="page"`)
	assert.Contains(t, body, `<a href="/profile">A</a>`)
	assert.True(t, h.backend.sawBearer("Bearer T1"))

	resp, _ = h.get(t, "/login")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp, _ = h.get(t, "/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestInPageNavigation(t *testing.T) {
	t.Parallel()
	h := newHarness(t, portal.Config{})
	h.login(t)

	req, err := http.NewRequest(http.MethodGet, h.server.URL+"/employees", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `<main id="content">`)
	assert.Contains(t, body, "Employees - HR Payroll")
	assert.NotContains(t, body, "<!DOCTYPE html>")
}

func TestLoginFailureShowsMessage(t *testing.T) {
	t.Parallel()
	h := newHarness(t, portal.Config{})

	resp, body := h.post(t, "/login", url.Values{"email": {"a@b.com"}, "password": {"nope"}, "redirect": {"/employees"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid credentials")
	assert.Contains(t, body, `value="a@b.com"`)
	assert.Contains(t, body, `name="redirect" value="/employees"`)
	assert.False(t, h.hasCookie(tokenstore.Key))

	resp, _ = h.get(t, "/employees")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestLoginThrottling(t *testing.T) {
	t.Parallel()
	h := newHarness(t, portal.Config{LoginRate: ratelimiter.Config{Limit: 2, Window: time.Minute}})
	bad := url.Values{"email": {"a@b.com"}, "password": {"nope"}}

	resp, _ := h.post(t, "/login", bad)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = h.post(t, "/login", url.Values{"email": {"a@b.com"}, "password": {"x"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	for range 2 {
		resp, _ = h.post(t, "/login", bad)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp, body := h.post(t, "/login", url.Values{"email": {"a@b.com"}, "password": {"x"}})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Contains(t, body, "Too many sign-in attempts")
}

func TestLoginRedirectTargets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		redirect string
		want     string
	}{
		{redirect: "", want: "/dashboard"},
		{redirect: "https://evil.test/steal", want: "/dashboard"},
		{redirect: "//evil.test", want: "/dashboard"},
		{redirect: "/\\evil.test", want: "/dashboard"},
		{redirect: "/", want: "/dashboard"},
		{redirect: "/login", want: "/dashboard"},
		{redirect: "/attendance/", want: "/attendance"},
		{redirect: "/employees?dept=2", want: "/employees?dept=2"},
	}

	for _, tt := range tests {
		t.Run(tt.redirect, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, portal.Config{})
			resp, _ := h.post(t, "/login", url.Values{"email": {"a@b.com"}, "password": {"x"}, "redirect": {tt.redirect}})
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, tt.want, resp.Header.Get("Location"))
		})
	}
}

func TestLogout(t *testing.T) {
	t.Parallel()
	h := newHarness(t, portal.Config{})
	h.login(t)

	resp, _ := h.post(t, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.False(t, h.hasCookie(tokenstore.Key))
	assert.Equal(t, 1, h.backend.logouts)

	resp, _ = h.get(t, "/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestExpiredTokenIsDropped(t *testing.T) {
	t.Parallel()
	h := newHarness(t, portal.Config{})
	h.login(t)
	h.backend.revokeAll()

	resp, _ := h.get(t, "/employees")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?redirect=%2Femployees", resp.Header.Get("Location"))
	assert.False(t, h.hasCookie(tokenstore.Key))
}

func TestUnknownPage(t *testing.T) {
	t.Parallel()
	h := newHarness(t, portal.Config{})

	resp, body := h.get(t, "/payslips/2024")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "<title>Page Not Found - HR Payroll</title>")
	assert.Contains(t, body, "<code>/payslips/2024</code>")
}

func TestProfile(t *testing.T) {
	t.Parallel()
	h := newHarness(t, portal.Config{})

	resp, _ := h.post(t, "/profile", url.Values{"name": {"B"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?redirect=%2Fprofile", resp.Header.Get("Location"))

	h.login(t)

	resp, body := h.get(t, "/profile")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="name" value="A"`)

	resp, body = h.post(t, "/profile", url.Values{"name": {"B"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Profile updated.")
	assert.Contains(t, body, `name="name" value="B"`)

	resp, body = h.post(t, "/password", url.Values{"current_password": {"wrong"}, "password": {"y"}, "password_confirmation": {"y"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Current password is incorrect")
	assert.Contains(t, body, `name="name" value="B"`)

	resp, body = h.post(t, "/password", url.Values{"current_password": {"x"}, "password": {"y"}, "password_confirmation": {"y"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Password changed.")
}

func TestPasswordRecovery(t *testing.T) {
	t.Parallel()
	h := newHarness(t, portal.Config{})

	resp, body := h.get(t, "/forgot-password")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<title>Forgot Password - HR Payroll</title>")

	resp, body = h.post(t, "/forgot-password", url.Values{"email": {"a@b.com"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "a reset link is on its way")

	resp, body = h.get(t, "/reset-password?token=good&email=a%40b.com")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="token" value="good"`)

	resp, body = h.post(t, "/reset-password", url.Values{"token": {"bad"}, "email": {"a@b.com"}, "password": {"n"}, "password_confirmation": {"n"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Invalid token")

	resp, _ = h.post(t, "/reset-password", url.Values{"token": {"good"}, "email": {"a@b.com"}, "password": {"n"}, "password_confirmation": {"n"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?reset=1", resp.Header.Get("Location"))

	_, body = h.get(t, "/login?reset=1")
	assert.Contains(t, body, "Your password has been reset.")
}

func TestRedisTokenStorage(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := newHarness(t, portal.Config{TokenStorage: portal.StorageRedis}, portal.WithRedis(client))
	h.login(t)

	assert.True(t, h.hasCookie("hr_device"))
	assert.False(t, h.hasCookie(tokenstore.Key))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "hrpayroll:"))
	assert.True(t, strings.HasSuffix(keys[0], ":token"))
	val, err := mr.Get(keys[0])
	require.NoError(t, err)
	assert.Equal(t, "T1", val)

	resp, _ := h.get(t, "/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := h.get(t, "/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "READY", body)

	mr.Close()

	resp, body = h.get(t, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "NOT_READY", body)

	resp, _ = h.get(t, "/dashboard")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestProbes(t *testing.T) {
	t.Parallel()
	h := newHarness(t, portal.Config{})

	resp, body := h.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ALIVE", body)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, body = h.get(t, "/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "READY", body)
	assert.False(t, h.hasCookie("hr_device"))
}

func TestMetrics(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	h := newHarness(t, portal.Config{}, portal.WithRegistry(reg))

	h.get(t, "/payroll")
	h.login(t)
	h.get(t, "/payroll")

	resp, body := h.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `hrportal_navigations_total{outcome="redirect",route="payroll"} 1`)
	assert.Contains(t, body, `hrportal_navigations_total{outcome="proceed",route="payroll"} 1`)
	assert.Contains(t, body, `hrportal_session_actions_total{action="login",result="ok"} 1`)
	assert.Contains(t, body, `hrportal_http_requests_total{method="POST",status="303"} 1`)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNew(t *testing.T) {
	t.Parallel()

	cookies, err := cookie.New([]string{strings.Repeat("k", 32)})
	require.NoError(t, err)
	api := apiclient.New("http://localhost/api")

	_, err = portal.New(portal.Config{}, nil, cookies)
	assert.ErrorIs(t, err, portal.ErrNilDependency)

	_, err = portal.New(portal.Config{}, api, nil)
	assert.ErrorIs(t, err, portal.ErrNilDependency)

	_, err = portal.New(portal.Config{TokenStorage: "disk"}, api, cookies)
	assert.ErrorIs(t, err, portal.ErrUnknownStorage)

	_, err = portal.New(portal.Config{TokenStorage: portal.StorageRedis}, api, cookies)
	assert.ErrorIs(t, err, portal.ErrRedisRequired)

	p, err := portal.New(portal.Config{}, api, cookies)
	require.NoError(t, err)
	_, path, ok := p.Router().Route(portal.NameProfile)
	require.True(t, ok)
	assert.Equal(t, "/profile", path)
}
