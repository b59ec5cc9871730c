package portal

import "github.com/dmitrymomot/hrpayroll/pkg/router"

// Portal-only pages on top of the shared table.
const (
	NameForgotPassword = "forgot-password"
	NameResetPassword  = "reset-password"
	NameProfile        = "profile"
)

// Routes returns the shared route table with the account pages in front of
// it, keeping the catch-all last.
func Routes() []router.Route {
	return append([]router.Route{
		{
			Path:      "/forgot-password",
			Name:      NameForgotPassword,
			Component: "ForgotPassword",
			Meta:      router.Meta{Layout: router.LayoutAuth, Title: "Forgot Password"},
		},
		{
			Path:      "/reset-password",
			Name:      NameResetPassword,
			Component: "ResetPassword",
			Meta:      router.Meta{Layout: router.LayoutAuth, Title: "Reset Password"},
		},
		{
			Path:      "/profile",
			Name:      NameProfile,
			Component: "Profile",
			Meta:      router.Meta{Title: "Profile", RequiresAuth: true},
		},
	}, router.DefaultRoutes()...)
}
