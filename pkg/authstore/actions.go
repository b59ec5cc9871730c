package authstore

import (
	"context"

	"github.com/dmitrymomot/hrpayroll/pkg/apiclient"
	"github.com/dmitrymomot/hrpayroll/pkg/logger"
)

// Login authenticates with credentials, persists the returned token and
// stores the user. If a newer login or a logout started while this one was in
// flight, the payload is returned but the state is left to the newer call.
func (s *Store) Login(ctx context.Context, creds apiclient.Credentials) (*apiclient.LoginResponse, error) {
	c := s.begin(slotSession)
	defer s.end()

	res, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, s.fail(ctx, c, "login", err, MsgLoginFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(c) {
		return res, nil
	}

	if err := s.storage.Save(ctx, res.Token); err != nil {
		s.logger.WarnContext(ctx, "failed to persist token",
			logger.Component("authstore"),
			logger.Action("login"),
			logger.Error(err),
		)
	}

	s.token = res.Token
	s.user = copyUser(&res.User)
	s.epoch++

	s.logger.InfoContext(ctx, "logged in",
		logger.Component("authstore"),
		logger.UserID(res.User.ID),
	)
	return res, nil
}

// Logout clears the token, the user and the last error, erases the persisted
// token and then tells the backend. A failed request is only logged.
func (s *Store) Logout(ctx context.Context) {
	s.logout(ctx, nil)
}

// logout signs out when keep is nil or reports true under mu. It returns
// false, leaving the session untouched, when keep rejects it.
func (s *Store) logout(ctx context.Context, keep func() bool) bool {
	s.mu.Lock()
	if keep != nil && !keep() {
		s.mu.Unlock()
		return false
	}
	c := s.beginLocked(slotSession)
	defer s.end()

	s.token = ""
	s.user = nil
	s.lastError = ""
	s.epoch++
	if err := s.storage.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to erase persisted token",
			logger.Component("authstore"),
			logger.Action("logout"),
			logger.Error(err),
		)
	}
	s.mu.Unlock()

	if c.token == "" {
		return true
	}

	if err := s.api.Logout(ctx, c.token); err != nil {
		s.logger.WarnContext(ctx, "logout request failed",
			logger.Component("authstore"),
			logger.Action("logout"),
			logger.Error(err),
		)
	}
	return true
}

// FetchUser loads the profile of the current token's owner.
func (s *Store) FetchUser(ctx context.Context) (*apiclient.User, error) {
	c := s.begin(slotUser)
	defer s.end()

	u, err := s.api.CurrentUser(ctx, c.token)
	if err != nil {
		return nil, s.fail(ctx, c, "fetch_user", err, MsgFetchUserFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current(c) {
		s.user = copyUser(u)
	}
	return u, nil
}

// UpdateProfile saves profile changes and stores the updated user.
func (s *Store) UpdateProfile(ctx context.Context, data apiclient.ProfileUpdate) (*apiclient.User, error) {
	c := s.begin(slotUser)
	defer s.end()

	u, err := s.api.UpdateProfile(ctx, c.token, data)
	if err != nil {
		return nil, s.fail(ctx, c, "update_profile", err, MsgUpdateProfileFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current(c) {
		s.user = copyUser(u)
	}
	return u, nil
}

// ChangePassword changes the signed-in user's password. State other than the
// last error is unchanged.
func (s *Store) ChangePassword(ctx context.Context, data apiclient.PasswordChange) error {
	c := s.begin(slotChangePassword)
	defer s.end()

	if err := s.api.ChangePassword(ctx, c.token, data); err != nil {
		return s.fail(ctx, c, "change_password", err, MsgChangePasswordFailed)
	}
	return nil
}

// ForgotPassword asks the backend to mail a reset link to email.
func (s *Store) ForgotPassword(ctx context.Context, email string) error {
	c := s.begin(slotForgotPassword)
	defer s.end()

	if err := s.api.ForgotPassword(ctx, c.token, email); err != nil {
		return s.fail(ctx, c, "forgot_password", err, MsgForgotPasswordFailed)
	}
	return nil
}

// ResetPassword sets a new password using a token from the reset link.
func (s *Store) ResetPassword(ctx context.Context, data apiclient.PasswordReset) error {
	c := s.begin(slotResetPassword)
	defer s.end()

	if err := s.api.ResetPassword(ctx, c.token, data); err != nil {
		return s.fail(ctx, c, "reset_password", err, MsgResetPasswordFailed)
	}
	return nil
}

// Init restores the session after a restart: with a persisted token it
// fetches the user. A 401 means the token is no longer valid and triggers a
// logout, unless a login or logout replaced the session in the meantime; any
// other failure keeps the token.
func (s *Store) Init(ctx context.Context) {
	s.mu.RLock()
	epoch, token := s.epoch, s.token
	s.mu.RUnlock()

	if token == "" {
		return
	}

	_, err := s.FetchUser(ctx)
	switch {
	case err == nil:
	case apiclient.IsUnauthorized(err):
		expired := s.logout(ctx, func() bool {
			return s.epoch == epoch && s.token == token
		})
		if !expired {
			s.logger.DebugContext(ctx, "rejected token already replaced",
				logger.Component("authstore"),
			)
			return
		}
		s.logger.InfoContext(ctx, "persisted token rejected, logged out",
			logger.Component("authstore"),
		)
	default:
		s.logger.WarnContext(ctx, "could not restore user profile",
			logger.Component("authstore"),
			logger.Error(err),
		)
	}
}
