package tokenstore

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/hrpayroll/pkg/cookie"
)

// Cookie stores the token in an encrypted cookie. It is bound to a single
// request/response pair: Load reads the request, Save and Clear write the
// response, and later Loads see the writes made during the same exchange.
type Cookie struct {
	mgr    *cookie.Manager
	w      http.ResponseWriter
	r      *http.Request
	maxAge time.Duration

	mu      sync.Mutex
	written bool
	token   string
}

// NewCookie binds a cookie storage to one HTTP exchange. maxAge sets the
// cookie lifetime; zero makes it a browser-session cookie.
func NewCookie(mgr *cookie.Manager, w http.ResponseWriter, r *http.Request, maxAge time.Duration) *Cookie {
	return &Cookie{mgr: mgr, w: w, r: r, maxAge: maxAge}
}

func (c *Cookie) Load(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.written {
		if c.token == "" {
			return "", ErrNotFound
		}
		return c.token, nil
	}

	token, err := c.mgr.GetEncrypted(c.r, Key)
	switch {
	case errors.Is(err, cookie.ErrCookieNotFound):
		return "", ErrNotFound
	case errors.Is(err, cookie.ErrDecryptionFailed), errors.Is(err, cookie.ErrInvalidFormat):
		// Unreadable cookies (rotated secrets, tampering) count as absent.
		return "", ErrNotFound
	case err != nil:
		return "", err
	case token == "":
		return "", ErrNotFound
	}
	return token, nil
}

func (c *Cookie) Save(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var opts []cookie.Option
	if c.maxAge > 0 {
		opts = append(opts, cookie.WithMaxAge(int(c.maxAge.Seconds())))
	}
	if err := c.mgr.SetEncrypted(c.w, Key, token, opts...); err != nil {
		return err
	}

	c.written, c.token = true, token
	return nil
}

func (c *Cookie) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mgr.Delete(c.w, Key)
	c.written, c.token = true, ""
	return nil
}
