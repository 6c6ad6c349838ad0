package context

import (
	"context"
	"errors"

	"github.com/bartventer/gorm-multitenancy/middleware/nethttp/v8"
	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/errs"
)

var (
	ErrExtractTenantSchema = errors.New("could not extract tenant schema from context")
	ErrGetRequestID        = errors.New("no requestID found in context")
)

type Opt func(ctx context.Context) context.Context

//nolint:fatcontext
func New(ctx context.Context, opts ...Opt) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	for _, opt := range opts {
		ctx = opt(ctx)
	}

	return ctx
}

// ExtractTenantSchema returns the schema of the website activated for the request.
// It shares the key used by the gorm-multitenancy middlewares.
func ExtractTenantSchema(ctx context.Context) (string, error) {
	schema, ok := ctx.Value(nethttp.TenantKey).(string)
	if !ok || schema == "" {
		return "", errs.Wrap(ErrExtractTenantSchema, nethttp.ErrTenantInvalid)
	}

	return schema, nil
}

func CreateTenantContext(ctx context.Context, tenantSchema string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, nethttp.TenantKey, tenantSchema)
}

func WithTenant(tenantSchema string) Opt {
	return func(ctx context.Context) context.Context {
		return CreateTenantContext(ctx, tenantSchema)
	}
}

type key string

const requestID = key("requestID")

func InjectRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestID, uuid.NewString())
}

func WithRequestID(id string) Opt {
	return func(ctx context.Context) context.Context {
		return context.WithValue(ctx, requestID, id)
	}
}

func GetRequestID(ctx context.Context) (string, error) {
	requestID, ok := ctx.Value(requestID).(string)
	if !ok || requestID == "" {
		return "", ErrGetRequestID
	}

	return requestID, nil
}
