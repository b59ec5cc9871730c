package authstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hrpayroll/pkg/apiclient"
	"github.com/dmitrymomot/hrpayroll/pkg/authstore"
	"github.com/dmitrymomot/hrpayroll/pkg/tokenstore"
)

func newStore(t *testing.T, api authstore.API, storage tokenstore.Storage) *authstore.Store {
	t.Helper()
	s, err := authstore.New(context.Background(), api, storage)
	require.NoError(t, err)
	return s
}

func unauthorized(msg string) error {
	return &apiclient.Error{Status: http.StatusUnauthorized, Message: msg}
}

func TestNew(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("seeds token from storage", func(t *testing.T) {
		s := newStore(t, &mockAPI{}, tokenstore.NewMemory("T0"))
		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, "T0", s.Token())
		assert.Nil(t, s.User())
		assert.Equal(t, "Bearer T0", s.AuthorizationHeader())
	})

	t.Run("empty storage", func(t *testing.T) {
		s := newStore(t, &mockAPI{}, tokenstore.NewMemory(""))
		assert.False(t, s.IsAuthenticated())
		assert.Empty(t, s.AuthorizationHeader())
		assert.False(t, s.IsLoading())
		assert.Empty(t, s.LastError())
	})

	t.Run("storage failure", func(t *testing.T) {
		_, err := authstore.New(ctx, &mockAPI{}, brokenStorage{})
		assert.ErrorIs(t, err, authstore.ErrStorage)
		assert.ErrorIs(t, err, errDisk)
	})

	t.Run("nil dependencies", func(t *testing.T) {
		_, err := authstore.New(ctx, nil, tokenstore.NewMemory(""))
		assert.ErrorIs(t, err, authstore.ErrNilDependency)
		_, err = authstore.New(ctx, &mockAPI{}, nil)
		assert.ErrorIs(t, err, authstore.ErrNilDependency)
	})
}

func TestLoginScenario(t *testing.T) {
	t.Parallel()

	var (
		mu         sync.Mutex
		userHeader string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var creds apiclient.Credentials
			_ = json.NewDecoder(r.Body).Decode(&creds)
			assert.Equal(t, "a@b.com", creds.Email)
			assert.Equal(t, "x", creds.Password)
			_, _ = w.Write([]byte(`{"user":{"id":1,"name":"A"},"token":"T1"}`))
		case "/api/auth/user":
			mu.Lock()
			userHeader = r.Header.Get("Authorization")
			mu.Unlock()
			_, _ = w.Write([]byte(`{"id":1,"name":"A"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	storage := tokenstore.NewMemory("")
	s := newStore(t, apiclient.New(srv.URL+"/api"), storage)

	res, err := s.Login(ctx, apiclient.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "T1", res.Token)

	state := s.Snapshot()
	assert.Equal(t, "T1", state.Token)
	require.NotNil(t, state.User)
	assert.Equal(t, 1, state.User.ID)
	assert.False(t, state.Loading)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "Bearer T1", s.AuthorizationHeader())

	persisted, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T1", persisted)

	_, err = s.FetchUser(ctx)
	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, "Bearer T1", userHeader)
	mu.Unlock()
}

func TestLoginFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	creds := apiclient.Credentials{Email: "a@b.com", Password: "bad"}

	t.Run("server message", func(t *testing.T) {
		api := &mockAPI{}
		api.On("Login", mock.Anything, creds).Return(nil, unauthorized("Invalid credentials"))
		s := newStore(t, api, tokenstore.NewMemory(""))

		_, err := s.Login(ctx, creds)
		require.Error(t, err)
		assert.True(t, apiclient.IsUnauthorized(err))
		assert.Equal(t, "Invalid credentials", s.LastError())
		assert.False(t, s.IsAuthenticated())
		assert.False(t, s.IsLoading())
	})

	t.Run("generic message", func(t *testing.T) {
		api := &mockAPI{}
		api.On("Login", mock.Anything, creds).Return(nil, errors.Join(apiclient.ErrTransport, errors.New("refused")))
		s := newStore(t, api, tokenstore.NewMemory(""))

		_, err := s.Login(ctx, creds)
		assert.ErrorIs(t, err, apiclient.ErrTransport)
		assert.Equal(t, authstore.MsgLoginFailed, s.LastError())
	})

	t.Run("persist failure keeps session in memory", func(t *testing.T) {
		api := &mockAPI{}
		api.On("Login", mock.Anything, creds).Return(&apiclient.LoginResponse{Token: "T1", User: apiclient.User{ID: 1}}, nil)
		s := newStore(t, api, readOnlyStorage{})

		_, err := s.Login(ctx, creds)
		require.NoError(t, err)
		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, "T1", s.Token())
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("clears state even when the request fails", func(t *testing.T) {
		api := &mockAPI{}
		api.On("ForgotPassword", mock.Anything, "T1", "x").Return(unauthorized(""))
		api.On("Logout", mock.Anything, "T1").Return(errors.Join(apiclient.ErrTransport, errors.New("offline")))

		storage := tokenstore.NewMemory("T1")
		s := newStore(t, api, storage)
		require.Error(t, s.ForgotPassword(ctx, "x"))
		require.NotEmpty(t, s.LastError())

		s.Logout(ctx)

		state := s.Snapshot()
		assert.Empty(t, state.Token)
		assert.Nil(t, state.User)
		assert.Empty(t, state.LastError)
		assert.False(t, state.Loading)
		assert.Empty(t, s.AuthorizationHeader())

		_, err := storage.Load(ctx)
		assert.ErrorIs(t, err, tokenstore.ErrNotFound)
		api.AssertExpectations(t)
	})

	t.Run("skips the request without a token", func(t *testing.T) {
		api := &mockAPI{}
		s := newStore(t, api, tokenstore.NewMemory(""))
		s.Logout(ctx)
		api.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
	})

	t.Run("storage failure does not block logout", func(t *testing.T) {
		api := &mockAPI{}
		api.On("Login", mock.Anything, mock.Anything).Return(&apiclient.LoginResponse{Token: "T1"}, nil)
		api.On("Logout", mock.Anything, "T1").Return(nil)

		s := newStore(t, api, readOnlyStorage{})
		_, err := s.Login(ctx, apiclient.Credentials{})
		require.NoError(t, err)

		s.Logout(ctx)
		assert.False(t, s.IsAuthenticated())
		api.AssertExpectations(t)
	})
}

func TestFetchUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stores user", func(t *testing.T) {
		api := &mockAPI{}
		api.On("CurrentUser", mock.Anything, "T1").Return(&apiclient.User{ID: 3, Name: "C"}, nil)
		s := newStore(t, api, tokenstore.NewMemory("T1"))

		u, err := s.FetchUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, u.ID)
		assert.Equal(t, "C", s.User().Name)
	})

	t.Run("401 without message", func(t *testing.T) {
		api := &mockAPI{}
		api.On("CurrentUser", mock.Anything, "T1").Return(nil, unauthorized(""))
		s := newStore(t, api, tokenstore.NewMemory("T1"))

		_, err := s.FetchUser(ctx)
		require.Error(t, err)
		assert.Equal(t, "Failed to fetch user data", s.LastError())
		assert.True(t, s.IsAuthenticated())
	})

	t.Run("returned user is a copy", func(t *testing.T) {
		api := &mockAPI{}
		api.On("CurrentUser", mock.Anything, "T1").Return(&apiclient.User{ID: 3, Name: "C"}, nil)
		s := newStore(t, api, tokenstore.NewMemory("T1"))

		_, err := s.FetchUser(ctx)
		require.NoError(t, err)
		s.User().Name = "mutated"
		assert.Equal(t, "C", s.User().Name)
	})
}

func TestActionFailureMessages(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := &apiclient.Error{Status: http.StatusInternalServerError}

	tests := []struct {
		name   string
		setup  func(api *mockAPI)
		action func(s *authstore.Store) error
		want   string
	}{
		{
			name:  "update profile",
			setup: func(api *mockAPI) { api.On("UpdateProfile", mock.Anything, "T", mock.Anything).Return(nil, boom) },
			action: func(s *authstore.Store) error {
				_, err := s.UpdateProfile(ctx, apiclient.ProfileUpdate{Name: "N"})
				return err
			},
			want: authstore.MsgUpdateProfileFailed,
		},
		{
			name:   "change password",
			setup:  func(api *mockAPI) { api.On("ChangePassword", mock.Anything, "T", mock.Anything).Return(boom) },
			action: func(s *authstore.Store) error { return s.ChangePassword(ctx, apiclient.PasswordChange{}) },
			want:   authstore.MsgChangePasswordFailed,
		},
		{
			name:   "forgot password",
			setup:  func(api *mockAPI) { api.On("ForgotPassword", mock.Anything, "T", "a@b.com").Return(boom) },
			action: func(s *authstore.Store) error { return s.ForgotPassword(ctx, "a@b.com") },
			want:   authstore.MsgForgotPasswordFailed,
		},
		{
			name:   "reset password",
			setup:  func(api *mockAPI) { api.On("ResetPassword", mock.Anything, "T", mock.Anything).Return(boom) },
			action: func(s *authstore.Store) error { return s.ResetPassword(ctx, apiclient.PasswordReset{}) },
			want:   authstore.MsgResetPasswordFailed,
		},
		{
			name: "validation message wins",
			setup: func(api *mockAPI) {
				api.On("ChangePassword", mock.Anything, "T", mock.Anything).
					Return(&apiclient.Error{Status: http.StatusBadRequest, Message: "Current password is incorrect"})
			},
			action: func(s *authstore.Store) error { return s.ChangePassword(ctx, apiclient.PasswordChange{}) },
			want:   "Current password is incorrect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			api := &mockAPI{}
			tt.setup(api)
			s := newStore(t, api, tokenstore.NewMemory("T"))

			require.Error(t, tt.action(s))
			assert.Equal(t, tt.want, s.LastError())
			assert.False(t, s.IsLoading())
			assert.True(t, s.IsAuthenticated())
		})
	}
}

func TestSuccessfulActionClearsLastError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	api := &mockAPI{}
	api.On("ResetPassword", mock.Anything, "", mock.Anything).Return(&apiclient.Error{Status: 400}).Once()
	api.On("ResetPassword", mock.Anything, "", mock.Anything).Return(nil).Once()
	s := newStore(t, api, tokenstore.NewMemory(""))

	require.Error(t, s.ResetPassword(ctx, apiclient.PasswordReset{Token: "r"}))
	assert.Equal(t, authstore.MsgResetPasswordFailed, s.LastError())

	require.NoError(t, s.ResetPassword(ctx, apiclient.PasswordReset{Token: "r"}))
	assert.Empty(t, s.LastError())
}

func TestInit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no token does nothing", func(t *testing.T) {
		api := &mockAPI{}
		s := newStore(t, api, tokenstore.NewMemory(""))
		s.Init(ctx)
		api.AssertNotCalled(t, "CurrentUser", mock.Anything, mock.Anything)
	})

	t.Run("restores user", func(t *testing.T) {
		api := &mockAPI{}
		api.On("CurrentUser", mock.Anything, "T1").Return(&apiclient.User{ID: 1}, nil)
		s := newStore(t, api, tokenstore.NewMemory("T1"))

		s.Init(ctx)
		require.NotNil(t, s.User())
		assert.Equal(t, 1, s.User().ID)
		assert.Equal(t, "Bearer T1", s.AuthorizationHeader())
	})

	t.Run("401 logs out", func(t *testing.T) {
		api := &mockAPI{}
		api.On("CurrentUser", mock.Anything, "T1").Return(nil, unauthorized("Token expired"))
		api.On("Logout", mock.Anything, "T1").Return(unauthorized(""))
		storage := tokenstore.NewMemory("T1")
		s := newStore(t, api, storage)

		s.Init(ctx)

		assert.False(t, s.IsAuthenticated())
		assert.Nil(t, s.User())
		assert.Empty(t, s.LastError())
		assert.Empty(t, s.AuthorizationHeader())
		_, err := storage.Load(ctx)
		assert.ErrorIs(t, err, tokenstore.ErrNotFound)
	})

	t.Run("other failures keep the stale token", func(t *testing.T) {
		api := &mockAPI{}
		api.On("CurrentUser", mock.Anything, "T1").Return(nil, &apiclient.Error{Status: http.StatusServiceUnavailable})
		storage := tokenstore.NewMemory("T1")
		s := newStore(t, api, storage)

		s.Init(ctx)

		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, authstore.MsgFetchUserFailed, s.LastError())
		persisted, err := storage.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "T1", persisted)
		api.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
	})
}
