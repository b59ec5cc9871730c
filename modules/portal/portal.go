package portal

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/hrpayroll/pkg/authstore"
	"github.com/dmitrymomot/hrpayroll/pkg/clientip"
	"github.com/dmitrymomot/hrpayroll/pkg/cookie"
	"github.com/dmitrymomot/hrpayroll/pkg/httpserver"
	"github.com/dmitrymomot/hrpayroll/pkg/logger"
	"github.com/dmitrymomot/hrpayroll/pkg/ratelimiter"
	"github.com/dmitrymomot/hrpayroll/pkg/redis"
	"github.com/dmitrymomot/hrpayroll/pkg/requestid"
	"github.com/dmitrymomot/hrpayroll/pkg/router"
)

// Portal serves the HR Payroll pages and session forms.
type Portal struct {
	cfg     Config
	api     authstore.API
	cookies *cookie.Manager
	redis   goredis.UniversalClient
	router  *router.Router
	views   Views
	logger  *slog.Logger
	metrics *metrics
	limiter *ratelimiter.Limiter

	registry *prometheus.Registry
}

// Option configures a Portal.
type Option func(*Portal)

func WithLogger(l *slog.Logger) Option {
	return func(p *Portal) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRedis sets the client used when TokenStorage is "redis".
func WithRedis(client goredis.UniversalClient) Option {
	return func(p *Portal) { p.redis = client }
}

// WithRouter replaces the router built from Routes. Navigation metrics are
// only recorded by routers built with router.WithObserver.
func WithRouter(rt *router.Router) Option {
	return func(p *Portal) { p.router = rt }
}

// WithRegistry registers the portal metrics on reg instead of a private
// registry. GET /metrics serves whatever reg gathers.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(p *Portal) { p.registry = reg }
}

// WithViews overrides individual views; nil fields keep the defaults.
func WithViews(v Views) Option {
	return func(p *Portal) { p.views = p.views.merge(v) }
}

// New builds a portal that signs in against api and keeps tokens in the
// storage selected by cfg.TokenStorage.
func New(cfg Config, api authstore.API, cookies *cookie.Manager, opts ...Option) (*Portal, error) {
	if api == nil || cookies == nil {
		return nil, ErrNilDependency
	}
	if cfg.TokenStorage == "" {
		cfg.TokenStorage = StorageCookie
	}
	if cfg.DeviceCookie == "" {
		cfg.DeviceCookie = "hr_device"
	}
	if cfg.RedisKeyPrefix == "" {
		cfg.RedisKeyPrefix = "hrpayroll"
	}

	p := &Portal{
		cfg:     cfg,
		api:     api,
		cookies: cookies,
		views:   DefaultViews(),
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}

	switch cfg.TokenStorage {
	case StorageCookie:
	case StorageRedis:
		if p.redis == nil {
			return nil, ErrRedisRequired
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorage, cfg.TokenStorage)
	}

	p.metrics = newMetrics(p.registry)

	if cfg.LoginRate.Limit > 0 {
		var store ratelimiter.Store = ratelimiter.NewMemoryStore()
		if cfg.TokenStorage == StorageRedis {
			store = ratelimiter.NewRedisStore(p.redis, cfg.RedisKeyPrefix+":ratelimit")
		}
		l, err := ratelimiter.New(store, cfg.LoginRate)
		if err != nil {
			return nil, err
		}
		p.limiter = l
	}

	if p.router == nil {
		rt, err := router.New(Routes(),
			router.WithLogger(p.logger),
			router.WithObserver(p.metrics.observeNavigation),
		)
		if err != nil {
			return nil, err
		}
		p.router = rt
	}

	return p, nil
}

// Router returns the page router.
func (p *Portal) Router() *router.Router { return p.router }

// Handler builds the HTTP handler of the portal.
func (p *Portal) Handler() http.Handler {
	mux := chi.NewRouter()
	mux.Use(
		requestid.Middleware,
		clientip.Middleware(p.cfg.TrustProxy),
		p.logRequests,
	)

	mux.Get("/healthz", httpserver.Liveness())
	mux.Get("/readyz", httpserver.Readiness(p.logger, p.readinessChecks()))
	mux.Method(http.MethodGet, "/metrics", p.metrics.handler())

	mux.Group(func(r chi.Router) {
		r.Use(p.session)
		p.router.Mount(r, authFromRequest, p.pages())

		r.Post("/login", p.login)
		r.Post("/logout", p.logout)
		r.Post("/forgot-password", p.forgotPassword)
		r.Post("/reset-password", p.resetPassword)
		r.Post("/profile", p.updateProfile)
		r.Post("/password", p.changePassword)
	})

	return mux
}

func (p *Portal) readinessChecks() map[string]httpserver.Check {
	checks := map[string]httpserver.Check{}
	if p.cfg.TokenStorage == StorageRedis {
		checks["redis"] = redis.Healthcheck(p.redis)
	}
	return checks
}
