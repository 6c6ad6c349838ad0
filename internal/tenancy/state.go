package tenancy

import (
	"context"

	"github.com/openkcm/tenancy/internal/connection"
	"github.com/openkcm/tenancy/internal/directory"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/view"
)

// State is the tenant of one request. Website is nil for tenant-less requests.
type State struct {
	Hostname   *model.Hostname
	Website    *model.Website
	Fallback   bool
	Connection *connection.Handle
	Paths      *directory.Paths
	View       view.TenantView
}

func (s *State) Resolved() bool {
	return s.Website != nil
}

type stateKey struct{}

func WithState(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

func FromContext(ctx context.Context) (*State, bool) {
	s, ok := ctx.Value(stateKey{}).(*State)
	return s, ok
}
