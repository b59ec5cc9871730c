package router

import "errors"

var (
	ErrNavigation      = errors.New("router.navigation_failed")
	ErrRedirectLoop    = errors.New("router.redirect_loop")
	ErrNoCatchAll      = errors.New("router.no_catch_all")
	ErrMissingRoute    = errors.New("router.missing_route")
	ErrDuplicateName   = errors.New("router.duplicate_name")
	ErrViewNotFound    = errors.New("router.view_not_found")
	ErrInvalidLocation = errors.New("router.invalid_location")
)
