// Package tokenstore persists the bearer token across restarts.
//
// A Storage holds exactly one value, the token, under the key "token". The
// session store reads it at startup, writes it on login and erases it on
// logout. Implementations:
//
//   - Memory: process-local, for tests and throwaway sessions.
//   - File: a 0600 file under the user's config directory, used by hrctl.
//   - Redis: one key per browser device, used by hrportal behind a load balancer.
//   - Cookie: an encrypted, HttpOnly cookie bound to a single HTTP exchange.
package tokenstore

import (
	"context"
	"errors"
)

// Key is the name under which the token is persisted.
const Key = "token"

var (
	// ErrNotFound is returned by Load when no token is persisted.
	ErrNotFound = errors.New("tokenstore.not_found")

	// ErrEmptyToken is returned by Save for an empty token.
	ErrEmptyToken = errors.New("tokenstore.empty_token")
)

// Storage is durable storage for one bearer token.
type Storage interface {
	// Load returns the persisted token or ErrNotFound.
	Load(ctx context.Context) (string, error)

	// Save persists token, replacing any previous value.
	Save(ctx context.Context, token string) error

	// Clear erases the persisted token. Clearing an empty storage is not an error.
	Clear(ctx context.Context) error
}
