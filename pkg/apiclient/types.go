package apiclient

import "time"

// User is the authenticated user's profile as returned by the backend.
type User struct {
	ID        int        `json:"id"`
	Name      string     `json:"name,omitempty"`
	Username  string     `json:"username,omitempty"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"role,omitempty"`
	IsActive  bool       `json:"is_active,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// DisplayName prefers the full name, then the username, then the email.
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return ""
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

// Credentials is the body of POST auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the payload of POST auth/login.
type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// ProfileUpdate carries the editable profile fields. Empty fields are omitted
// from the request body.
type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// PasswordChange is the body of PUT auth/password.
type PasswordChange struct {
	CurrentPassword      string `json:"current_password"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation,omitempty"`
}

// PasswordReset is the body of POST auth/reset-password.
type PasswordReset struct {
	Token                string `json:"token"`
	Email                string `json:"email,omitempty"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation,omitempty"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}
