package authstore_test

import (
	"context"
	"errors"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/hrpayroll/pkg/apiclient"
	"github.com/dmitrymomot/hrpayroll/pkg/tokenstore"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Login(ctx context.Context, creds apiclient.Credentials) (*apiclient.LoginResponse, error) {
	args := m.Called(ctx, creds)
	res, _ := args.Get(0).(*apiclient.LoginResponse)
	return res, args.Error(1)
}

func (m *mockAPI) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAPI) CurrentUser(ctx context.Context, token string) (*apiclient.User, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*apiclient.User)
	return u, args.Error(1)
}

func (m *mockAPI) UpdateProfile(ctx context.Context, token string, data apiclient.ProfileUpdate) (*apiclient.User, error) {
	args := m.Called(ctx, token, data)
	u, _ := args.Get(0).(*apiclient.User)
	return u, args.Error(1)
}

func (m *mockAPI) ChangePassword(ctx context.Context, token string, data apiclient.PasswordChange) error {
	return m.Called(ctx, token, data).Error(0)
}

func (m *mockAPI) ForgotPassword(ctx context.Context, token, email string) error {
	return m.Called(ctx, token, email).Error(0)
}

func (m *mockAPI) ResetPassword(ctx context.Context, token string, data apiclient.PasswordReset) error {
	return m.Called(ctx, token, data).Error(0)
}

// brokenStorage fails every operation.
type brokenStorage struct{}

var errDisk = errors.New("disk on fire")

func (brokenStorage) Load(context.Context) (string, error) { return "", errDisk }
func (brokenStorage) Save(context.Context, string) error   { return errDisk }
func (brokenStorage) Clear(context.Context) error          { return errDisk }

// readOnlyStorage starts empty and fails every write.
type readOnlyStorage struct{}

func (readOnlyStorage) Load(context.Context) (string, error) { return "", tokenstore.ErrNotFound }
func (readOnlyStorage) Save(context.Context, string) error   { return errDisk }
func (readOnlyStorage) Clear(context.Context) error          { return errDisk }
