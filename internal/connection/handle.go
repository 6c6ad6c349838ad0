package connection

import (
	"context"

	"github.com/bartventer/gorm-multitenancy/v8/pkg/scopes"
	"gorm.io/gorm"
)

type handleKey struct{}

// Handle is the active website database of a request.
type Handle struct {
	key    string
	schema string
	db     *gorm.DB
}

// DB returns a session bound to ctx. Queries are scoped to the website schema when one is set.
func (h *Handle) DB(ctx context.Context) *gorm.DB {
	db := h.db.WithContext(ctx)
	if h.schema != "" {
		db = db.Scopes(scopes.WithTenantSchema(h.schema))
	}

	return db
}

func (h *Handle) Key() string    { return h.key }
func (h *Handle) Schema() string { return h.schema }

// Current returns the handle activated for ctx.
func Current(ctx context.Context) (*Handle, bool) {
	h, ok := ctx.Value(handleKey{}).(*Handle)
	return h, ok
}
