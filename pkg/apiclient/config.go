package apiclient

import "time"

type Config struct {
	BaseURL   string        `env:"API_BASE_URL" envDefault:"http://localhost:8000/api"` // BaseURL is the backend's /api root.
	Timeout   time.Duration `env:"API_TIMEOUT" envDefault:"15s"`                        // Timeout bounds each request.
	UserAgent string        `env:"API_USER_AGENT" envDefault:"hrpayroll-shell"`         // UserAgent is sent with every request.
}

// NewFromConfig creates a new Client from the provided Config.
// Only non-zero values from the config are applied.
func NewFromConfig(cfg Config, opts ...Option) *Client {
	configOpts := make([]Option, 0, 2+len(opts))

	if cfg.Timeout > 0 {
		configOpts = append(configOpts, WithTimeout(cfg.Timeout))
	}
	if cfg.UserAgent != "" {
		configOpts = append(configOpts, WithUserAgent(cfg.UserAgent))
	}

	configOpts = append(configOpts, opts...)

	return New(cfg.BaseURL, configOpts...)
}
