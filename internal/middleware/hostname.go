package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/apierrors"
	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/repo"
	"github.com/openkcm/tenancy/internal/resolver"
)

const headerForwardedProto = "X-Forwarded-Proto"

type HostResolver interface {
	Resolve(ctx context.Context, host string) (*resolver.Resolution, error)
}

// HostnameFinder looks up redirect targets.
type HostnameFinder interface {
	Find(ctx context.Context, id uuid.UUID) (*model.Hostname, error)
}

// HostnameMiddleware resolves the request host once and records the
// resolution for later stages. It answers with a permanent redirect when the
// hostname points at another hostname, when it prefers https and the request
// is plain, or when the host only matched through the default hostname and
// redirectToDefault is set.
func HostnameMiddleware(res HostResolver, hostnames HostnameFinder, cfg config.Tenancy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			resolution, ok := resolver.FromContext(ctx)
			if !ok {
				var err error

				resolution, err = res.Resolve(ctx, r.Host)
				if err != nil {
					apierrors.Write(ctx, w, err)
					return
				}

				ctx = resolver.WithResolution(ctx, resolution)
				r = r.WithContext(ctx)
			}

			if resolution == nil {
				next.ServeHTTP(w, r)
				return
			}

			target, err := redirectTarget(ctx, r, resolution, hostnames, cfg)
			if err != nil {
				apierrors.Write(ctx, w, err)
				return
			}

			if target != "" {
				log.Debug(ctx, "Redirecting request", slog.String("location", target))
				http.Redirect(w, r, target, http.StatusMovedPermanently)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func redirectTarget(
	ctx context.Context,
	r *http.Request,
	res *resolver.Resolution,
	hostnames HostnameFinder,
	cfg config.Tenancy,
) (string, error) {
	current := res.Hostname

	if current.RedirectTo != nil {
		target, err := hostnames.Find(ctx, *current.RedirectTo)
		switch {
		case repo.IsNotFound(err):
			log.Warn(ctx, "Redirect target missing", slog.String("hostname", current.Hostname))
		case err != nil:
			return "", err
		default:
			return location(r, target), nil
		}
	}

	if res.Fallback && cfg.RedirectToDefault {
		return location(r, current), nil
	}

	if current.PreferHTTPS && !isHTTPS(r) {
		return location(r, current), nil
	}

	return "", nil
}

// location keeps the path and query of r on the canonical host.
func location(r *http.Request, target *model.Hostname) string {
	scheme := "http"
	if target.PreferHTTPS || isHTTPS(r) {
		scheme = "https"
	}

	return scheme + "://" + target.Hostname + r.URL.RequestURI()
}

func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}

	return strings.EqualFold(r.Header.Get(headerForwardedProto), "https")
}
