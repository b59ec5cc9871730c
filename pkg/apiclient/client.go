package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/hrpayroll/pkg/logger"
	"github.com/dmitrymomot/hrpayroll/pkg/requestid"
)

// Endpoint paths, relative to the /api base.
const (
	PathLogin          = "auth/login"
	PathLogout         = "auth/logout"
	PathUser           = "auth/user"
	PathProfile        = "auth/profile"
	PathPassword       = "auth/password"
	PathForgotPassword = "auth/forgot-password"
	PathResetPassword  = "auth/reset-password"
)

// DefaultTimeout bounds each request made through the client's own
// http.Client.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 64 << 10

// Client calls the backend's auth endpoints.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

// New creates a client for the API rooted at baseURL (for example
// "http://localhost:8000/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a token and the user's profile.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var res LoginResponse
	if err := c.Do(ctx, http.MethodPost, PathLogin, "", creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout invalidates token on the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.Do(ctx, http.MethodPost, PathLogout, token, nil, nil)
}

// CurrentUser fetches the profile of the token's owner.
func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	var u User
	if err := c.Do(ctx, http.MethodGet, PathUser, token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile saves profile changes and returns the updated user.
func (c *Client) UpdateProfile(ctx context.Context, token string, data ProfileUpdate) (*User, error) {
	var u User
	if err := c.Do(ctx, http.MethodPut, PathProfile, token, data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ChangePassword(ctx context.Context, token string, data PasswordChange) error {
	return c.Do(ctx, http.MethodPut, PathPassword, token, data, nil)
}

// ForgotPassword asks the backend to send a reset email. The token is
// optional and sent only when non-empty.
func (c *Client) ForgotPassword(ctx context.Context, token, email string) error {
	return c.Do(ctx, http.MethodPost, PathForgotPassword, token, forgotPasswordRequest{Email: email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token string, data PasswordReset) error {
	return c.Do(ctx, http.MethodPost, PathResetPassword, token, data, nil)
}

// Do sends one JSON request. A non-empty token is sent as a bearer
// Authorization header on this request only. A nil in sends no body; a nil
// out discards the response body.
func (c *Client) Do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return errors.Join(ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", BearerHeader(token))
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "api request failed",
			logger.Component("apiclient"),
			slog.String("method", method),
			logger.Path(path),
			logger.Error(err),
		)
		return errors.Join(ErrTransport, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "api request",
		logger.Component("apiclient"),
		slog.String("method", method),
		logger.Path(path),
		logger.Status(resp.StatusCode),
		logger.Duration(time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

// BearerHeader formats token as an Authorization header value.
func BearerHeader(token string) string {
	return "Bearer " + token
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// decodeError reads an error response. The message comes from a "message"
// field, falling back to a string "detail" field.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var payload struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return apiErr
	}

	apiErr.Message = payload.Message
	if apiErr.Message == "" && len(payload.Detail) > 0 {
		var detail string
		if json.Unmarshal(payload.Detail, &detail) == nil {
			apiErr.Message = detail
		}
	}
	return apiErr
}
