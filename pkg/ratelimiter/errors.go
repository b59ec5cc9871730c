package ratelimiter

import "errors"

var (
	ErrInvalidConfig = errors.New("ratelimiter.invalid_config")
	ErrStore         = errors.New("ratelimiter.store")
)
