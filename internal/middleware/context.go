package middleware

import (
	"net/http"

	tenancycontext "github.com/openkcm/tenancy/utils/context"
)

const HeaderRequestID = "X-Request-Id"

// InjectRequestID injects a RequestID into the context to be used by other middlewares.
// A request id sent by the client is kept and echoed back.
func InjectRequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if id := r.Header.Get(HeaderRequestID); id != "" {
				ctx = tenancycontext.New(ctx, tenancycontext.WithRequestID(id))
			} else {
				ctx = tenancycontext.InjectRequestID(ctx)
			}

			requestID, _ := tenancycontext.GetRequestID(ctx)
			w.Header().Set(HeaderRequestID, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
