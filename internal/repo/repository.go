package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/model"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrUniqueConstraint = errors.New("unique constraint violation")
	ErrCreateResource   = errors.New("failed to create resource")
	ErrUpdateResource   = errors.New("failed to update resource")
	ErrDeleteResource   = errors.New("failed to delete resource")
	ErrGetResource      = errors.New("failed to get resource")
	ErrTransaction      = errors.New("failed to execute transaction")
	ErrUnknownTenant    = errors.New("website references an unknown tenant")
	ErrUnknownWebsite   = errors.New("hostname references an unknown website")
	ErrUnknownRedirect  = errors.New("hostname redirects to an unknown hostname")
	ErrLastHostname     = errors.New("cannot delete the last hostname of an active website")
)

// TenantRepository is the store contract for tenants.
type TenantRepository interface {
	Find(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	List(ctx context.Context) ([]model.Tenant, error)
	Create(ctx context.Context, attrs model.TenantAttributes) (*model.Tenant, error)
	Update(ctx context.Context, tenant *model.Tenant, attrs model.TenantAttributes) (*model.Tenant, error)
	// Delete removes the tenant and everything it owns. It reports false when
	// there was nothing to delete.
	Delete(ctx context.Context, tenant *model.Tenant) (bool, error)
}

// WebsiteRepository is the store contract for websites.
type WebsiteRepository interface {
	Find(ctx context.Context, id uuid.UUID) (*model.Website, error)
	List(ctx context.Context) ([]model.Website, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Website, error)
	Create(ctx context.Context, attrs model.WebsiteAttributes) (*model.Website, error)
	Update(ctx context.Context, website *model.Website, attrs model.WebsiteAttributes) (*model.Website, error)
	Delete(ctx context.Context, website *model.Website) (bool, error)
}

// HostnameRepository is the store contract for hostnames.
type HostnameRepository interface {
	Find(ctx context.Context, id uuid.UUID) (*model.Hostname, error)
	// FindByHostname matches the normalized host exactly.
	FindByHostname(ctx context.Context, host string) (*model.Hostname, error)
	// FindDefault returns the default hostname. When several are flagged the
	// oldest one wins.
	FindDefault(ctx context.Context) (*model.Hostname, error)
	List(ctx context.Context) ([]model.Hostname, error)
	ListByWebsite(ctx context.Context, websiteID uuid.UUID) ([]model.Hostname, error)
	Create(ctx context.Context, attrs model.HostnameAttributes) (*model.Hostname, error)
	Update(ctx context.Context, hostname *model.Hostname, attrs model.HostnameAttributes) (*model.Hostname, error)
	Delete(ctx context.Context, hostname *model.Hostname) (bool, error)
}

// Repositories bundles the three stores over one backend.
type Repositories struct {
	Tenants   TenantRepository
	Websites  WebsiteRepository
	Hostnames HostnameRepository
}

// IsNotFound reports whether err means the record is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
