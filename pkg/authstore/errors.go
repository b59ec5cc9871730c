package authstore

import "errors"

// Messages recorded as LastError when the backend does not provide one.
const (
	MsgLoginFailed          = "Login failed"
	MsgFetchUserFailed      = "Failed to fetch user data"
	MsgUpdateProfileFailed  = "Failed to update profile"
	MsgChangePasswordFailed = "Failed to change password"
	MsgForgotPasswordFailed = "Failed to send reset email"
	MsgResetPasswordFailed  = "Failed to reset password"
)

var (
	// ErrStorage wraps failures to read the persisted token at startup.
	ErrStorage = errors.New("authstore.storage")

	// ErrNilDependency is returned by New when the API or storage is missing.
	ErrNilDependency = errors.New("authstore.nil_dependency")
)
