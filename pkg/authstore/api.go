package authstore

import (
	"context"

	"github.com/dmitrymomot/hrpayroll/pkg/apiclient"
)

// API is the part of the backend the store talks to. *apiclient.Client
// implements it.
type API interface {
	Login(ctx context.Context, creds apiclient.Credentials) (*apiclient.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*apiclient.User, error)
	UpdateProfile(ctx context.Context, token string, data apiclient.ProfileUpdate) (*apiclient.User, error)
	ChangePassword(ctx context.Context, token string, data apiclient.PasswordChange) error
	ForgotPassword(ctx context.Context, token, email string) error
	ResetPassword(ctx context.Context, token string, data apiclient.PasswordReset) error
}

var _ API = (*apiclient.Client)(nil)
