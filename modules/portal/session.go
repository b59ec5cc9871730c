package portal

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/hrpayroll/pkg/authstore"
	"github.com/dmitrymomot/hrpayroll/pkg/cookie"
	"github.com/dmitrymomot/hrpayroll/pkg/logger"
	"github.com/dmitrymomot/hrpayroll/pkg/tokenstore"
)

// session attaches a store seeded from the request's token storage. Page
// requests also run Init so the user is loaded (or a dead token dropped)
// before the guard looks at the session.
func (p *Portal) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		store, err := authstore.New(ctx, p.api, p.storageFor(w, r), authstore.WithLogger(p.logger))
		if err != nil {
			p.logger.ErrorContext(ctx, "session storage unavailable",
				logger.Component("portal"),
				logger.Error(err),
			)
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}

		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			store.Init(ctx)
		}

		next.ServeHTTP(w, r.WithContext(WithStore(ctx, store)))
	})
}

func (p *Portal) storageFor(w http.ResponseWriter, r *http.Request) tokenstore.Storage {
	if p.cfg.TokenStorage == StorageRedis {
		return tokenstore.NewRedis(p.redis, p.cfg.RedisKeyPrefix, p.deviceID(w, r), p.cfg.TokenTTL)
	}
	return tokenstore.NewCookie(p.cookies, w, r, p.cfg.TokenTTL)
}

// deviceID returns the browser's id from its signed cookie, issuing a new
// one when the cookie is missing or was tampered with.
func (p *Portal) deviceID(w http.ResponseWriter, r *http.Request) string {
	if id, err := p.cookies.GetSigned(r, p.cfg.DeviceCookie); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}

	id := uuid.NewString()
	opts := []cookie.Option{}
	if p.cfg.TokenTTL > 0 {
		opts = append(opts, cookie.WithMaxAge(int(p.cfg.TokenTTL.Seconds())))
	}
	if err := p.cookies.SetSigned(w, p.cfg.DeviceCookie, id, opts...); err != nil {
		p.logger.WarnContext(r.Context(), "failed to issue device cookie",
			logger.Component("portal"),
			logger.Error(err),
		)
	}
	return id
}
