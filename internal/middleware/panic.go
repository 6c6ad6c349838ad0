package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/openkcm/tenancy/internal/apierrors"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/log"
)

var ErrHandlerPanicked = errors.New("request handler panicked")

// PanicRecoveryMiddleware turns a panic in a later handler into an internal
// server error carrying the request id. When the handler already started the
// response only the log entry is written. http.ErrAbortHandler is passed on
// so the server can drop the connection.
func PanicRecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := log.InjectRequest(r.Context(), r)
			rw := &startedWriter{ResponseWriter: w}

			defer func() {
				v := recover()
				if v == nil {
					return
				}

				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				recovered(ctx, rw, v)
			}()

			next.ServeHTTP(rw, r)
		})
	}
}

func recovered(ctx context.Context, rw *startedWriter, v any) {
	err := errs.Wrapf(ErrHandlerPanicked, fmt.Sprint(v))

	log.Error(ctx, "Panic Occurred", err,
		slog.String("stackTrace", string(debug.Stack())),
		slog.Bool("responseStarted", rw.started),
	)

	if rw.started {
		return
	}

	apierrors.ErrorResponse(ctx, rw, apierrors.APIErrorMapper.Transform(err))
}

// startedWriter records whether the response status was sent.
type startedWriter struct {
	http.ResponseWriter

	started bool
}

func (w *startedWriter) WriteHeader(code int) {
	w.started = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *startedWriter) Write(b []byte) (int, error) {
	w.started = true
	return w.ResponseWriter.Write(b)
}
