package portal

import (
	"time"

	"github.com/dmitrymomot/hrpayroll/pkg/ratelimiter"
)

// Token storage backends.
const (
	StorageCookie = "cookie"
	StorageRedis  = "redis"
)

type Config struct {
	TokenStorage   string        `env:"TOKEN_STORAGE" envDefault:"cookie"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
	RedisKeyPrefix string        `env:"TOKEN_REDIS_PREFIX" envDefault:"hrpayroll"`
	DeviceCookie   string        `env:"DEVICE_COOKIE" envDefault:"hr_device"`
	TrustProxy     bool          `env:"PORTAL_TRUST_PROXY" envDefault:"false"`

	// LoginRate throttles POST /login per client address. A zero Limit
	// disables throttling.
	LoginRate ratelimiter.Config
}
