package portal

import "errors"

var (
	ErrNilDependency  = errors.New("portal.nil_dependency")
	ErrUnknownStorage = errors.New("portal.unknown_token_storage")
	ErrRedisRequired  = errors.New("portal.redis_required")
)
