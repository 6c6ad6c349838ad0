// Package observer holds the lifecycle invariants of tenants, websites and hostnames.
// Repositories call these hooks synchronously inside the transaction of the
// mutating operation, so a caller that sees the operation succeed also sees the
// invariants satisfied.
package observer

import (
	"context"

	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/model"
)

// HostnameStore is the transactional view of hostnames used by the observers.
type HostnameStore interface {
	// LockDefaults serialises writers of the default flag until the transaction ends.
	LockDefaults(ctx context.Context) error
	// ListDefaults returns every hostname flagged default, oldest first.
	ListDefaults(ctx context.Context) ([]model.Hostname, error)
	SetDefault(ctx context.Context, id uuid.UUID, isDefault bool) error
	Find(ctx context.Context, id uuid.UUID) (*model.Hostname, error)
	ListByWebsite(ctx context.Context, websiteID uuid.UUID) ([]model.Hostname, error)
	ClearRedirectsTo(ctx context.Context, ids ...uuid.UUID) error
	DeleteByWebsite(ctx context.Context, websiteID uuid.UUID) (int64, error)
	Insert(ctx context.Context, hostname *model.Hostname) error
}

// WebsiteStore is the transactional view of websites used by the observers.
type WebsiteStore interface {
	Find(ctx context.Context, id uuid.UUID) (*model.Website, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Website, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// Store binds the transactional views of one unit of work.
type Store interface {
	Hostnames() HostnameStore
	Websites() WebsiteStore
}

// Listener is told after a committed write to any entity.
type Listener interface {
	Changed(ctx context.Context)
}

// Set groups the observers of all three entities.
type Set struct {
	Hostname HostnameObserver
	Website  WebsiteObserver
	Tenant   TenantObserver

	listeners []Listener
}

func NewSet(cfg config.Tenancy, listeners ...Listener) *Set {
	return &Set{
		Hostname: HostnameObserver{},
		Website:  WebsiteObserver{autoHostname: cfg.AutoHostname},
		Tenant:   TenantObserver{},

		listeners: listeners,
	}
}

// Committed notifies listeners once a write has been committed.
func (s *Set) Committed(ctx context.Context) {
	if s == nil {
		return
	}

	for _, l := range s.listeners {
		l.Changed(ctx)
	}
}
