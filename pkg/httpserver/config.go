package httpserver

import "time"

// Config is the portal listener configuration.
type Config struct {
	Addr              string        `env:"PORTAL_ADDR" envDefault:":8080"`
	ReadHeaderTimeout time.Duration `env:"PORTAL_READ_HEADER_TIMEOUT" envDefault:"10s"`
	ReadTimeout       time.Duration `env:"PORTAL_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout      time.Duration `env:"PORTAL_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout       time.Duration `env:"PORTAL_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout   time.Duration `env:"PORTAL_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// NewFromConfig creates a Server from cfg. Zero values keep the defaults and
// opts are applied last.
func NewFromConfig(cfg Config, opts ...Option) *Server {
	configOpts := make([]Option, 0, 6+len(opts))
	configOpts = append(configOpts,
		WithAddr(cfg.Addr),
		WithReadHeaderTimeout(cfg.ReadHeaderTimeout),
		WithReadTimeout(cfg.ReadTimeout),
		WithWriteTimeout(cfg.WriteTimeout),
		WithIdleTimeout(cfg.IdleTimeout),
		WithShutdownTimeout(cfg.ShutdownTimeout),
	)
	configOpts = append(configOpts, opts...)
	return New(configOpts...)
}

func setIfPositive(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}
