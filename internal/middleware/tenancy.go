package middleware

import (
	"context"
	"net/http"

	"github.com/openkcm/tenancy/internal/apierrors"
	"github.com/openkcm/tenancy/internal/tenancy"
)

type Booter interface {
	Boot(ctx context.Context, host string) (context.Context, *tenancy.State, error)
}

// TenancyMiddleware boots the tenant of every request before handing it on.
// Failures are answered through the API error mapping: an unavailable
// website database gives 503 and an unresolved tenant gives 404.
func TenancyMiddleware(env Booter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, _, err := env.Boot(r.Context(), r.Host)
			if err != nil {
				apierrors.Write(ctx, w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
