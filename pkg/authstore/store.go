package authstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/hrpayroll/pkg/apiclient"
	"github.com/dmitrymomot/hrpayroll/pkg/logger"
	"github.com/dmitrymomot/hrpayroll/pkg/tokenstore"
)

// State is a point-in-time copy of the session.
type State struct {
	User      *apiclient.User `json:"user,omitempty"`
	Token     string          `json:"-"`
	Loading   bool            `json:"loading"`
	LastError string          `json:"last_error,omitempty"`
}

// slot groups actions whose responses write the same piece of state.
// A response is stale once a newer call in its slot has started.
type slot int

const (
	slotSession slot = iota // login, logout
	slotUser                // fetch user, update profile
	slotChangePassword
	slotForgotPassword
	slotResetPassword
	slotCount
)

// call identifies one in-flight action.
type call struct {
	slot  slot
	seq   uint64
	epoch uint64
	token string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store is the session state container.
type Store struct {
	api     API
	storage tokenstore.Storage
	logger  *slog.Logger

	mu        sync.RWMutex
	user      *apiclient.User
	token     string
	lastError string
	inflight  int
	epoch     uint64
	seq       [slotCount]uint64
}

// New creates a store whose token is seeded from storage.
func New(ctx context.Context, api API, storage tokenstore.Storage, opts ...Option) (*Store, error) {
	if api == nil || storage == nil {
		return nil, ErrNilDependency
	}

	s := &Store{
		api:     api,
		storage: storage,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	token, err := storage.Load(ctx)
	switch {
	case errors.Is(err, tokenstore.ErrNotFound):
	case err != nil:
		return nil, errors.Join(ErrStorage, err)
	default:
		s.token = token
	}

	return s, nil
}

// IsAuthenticated reports whether a token is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// IsLoading reports whether any action is in flight.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// LastError returns the message recorded by the most recent failed action.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// User returns a copy of the current profile, or nil if none is loaded.
func (s *Store) User() *apiclient.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

// Token returns the bearer token, or an empty string when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// AuthorizationHeader returns "Bearer <token>", or an empty string when
// unauthenticated. Every API call the store makes carries this value.
func (s *Store) AuthorizationHeader() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return ""
	}
	return apiclient.BearerHeader(s.token)
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		User:      copyUser(s.user),
		Token:     s.token,
		Loading:   s.inflight > 0,
		LastError: s.lastError,
	}
}

// begin registers a new call in sl: marks the store loading, clears the
// last error and captures the token the call will send.
func (s *Store) begin(sl slot) call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginLocked(sl)
}

// beginLocked is begin for callers that already hold mu.
func (s *Store) beginLocked(sl slot) call {
	s.inflight++
	s.lastError = ""
	s.seq[sl]++
	return call{slot: sl, seq: s.seq[sl], epoch: s.epoch, token: s.token}
}

// end runs once per begin, whatever the outcome.
func (s *Store) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
}

// current reports whether c may still write state. Caller holds mu.
func (s *Store) current(c call) bool {
	return s.seq[c.slot] == c.seq && s.epoch == c.epoch
}

// fail records err as the last error if c is still current and returns err.
func (s *Store) fail(ctx context.Context, c call, action string, err error, fallback string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current(c) {
		s.lastError = messageOr(err, fallback)
	}

	s.logger.DebugContext(ctx, "session action failed",
		logger.Component("authstore"),
		logger.Action(action),
		logger.Status(apiclient.StatusCode(err)),
		logger.Error(err),
	)
	return err
}

func messageOr(err error, fallback string) string {
	if msg := apiclient.Message(err); msg != "" {
		return msg
	}
	return fallback
}

func copyUser(u *apiclient.User) *apiclient.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
