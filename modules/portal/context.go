package portal

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/hrpayroll/pkg/authstore"
	"github.com/dmitrymomot/hrpayroll/pkg/router"
)

type storeKey struct{}

func WithStore(ctx context.Context, s *authstore.Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// StoreFromContext returns the session store of the current request.
func StoreFromContext(ctx context.Context) (*authstore.Store, bool) {
	s, ok := ctx.Value(storeKey{}).(*authstore.Store)
	return s, ok && s != nil
}

func authFromRequest(r *http.Request) router.Authenticator {
	if s, ok := StoreFromContext(r.Context()); ok {
		return s
	}
	return nil
}
