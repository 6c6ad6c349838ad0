package mock

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/observer"
	"github.com/openkcm/tenancy/internal/repo"
)

// InMemoryDB holds the records of all three entities. Writes are serialised
// and rolled back when an observer fails.
type InMemoryDB struct {
	mu sync.RWMutex

	tenants   map[uuid.UUID]model.Tenant
	websites  map[uuid.UUID]model.Website
	hostnames map[uuid.UUID]model.Hostname

	// Err is returned by every read when set.
	Err error
}

func NewInMemoryDB() *InMemoryDB {
	return &InMemoryDB{
		tenants:   map[uuid.UUID]model.Tenant{},
		websites:  map[uuid.UUID]model.Website{},
		hostnames: map[uuid.UUID]model.Hostname{},
	}
}

// transaction runs fn under the write lock and restores the previous state on error.
func (d *InMemoryDB) transaction(fn func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tenants := maps.Clone(d.tenants)
	websites := maps.Clone(d.websites)
	hostnames := maps.Clone(d.hostnames)

	err := fn()
	if err != nil {
		d.tenants = tenants
		d.websites = websites
		d.hostnames = hostnames

		return err
	}

	return nil
}

func (d *InMemoryDB) Hostnames() observer.HostnameStore { return hostnameStore{d} }
func (d *InMemoryDB) Websites() observer.WebsiteStore   { return websiteStore{d} }

func sorted[T any](values []T, created func(T) (int64, string)) []T {
	slices.SortFunc(values, func(a, b T) int {
		ta, ia := created(a)
		tb, ib := created(b)

		return cmp.Or(cmp.Compare(ta, tb), cmp.Compare(ia, ib))
	})

	return values
}

func hostnameOrder(h model.Hostname) (int64, string) { return h.CreatedAt.UnixNano(), h.ID.String() }
func websiteOrder(w model.Website) (int64, string)   { return w.CreatedAt.UnixNano(), w.ID.String() }
func tenantOrder(t model.Tenant) (int64, string)     { return t.CreatedAt.UnixNano(), t.ID.String() }

// The stores below are only used while the write lock is held.

type hostnameStore struct {
	d *InMemoryDB
}

func (s hostnameStore) LockDefaults(context.Context) error { return nil }

func (s hostnameStore) ListDefaults(context.Context) ([]model.Hostname, error) {
	var defaults []model.Hostname

	for _, h := range s.d.hostnames {
		if h.IsDefault {
			defaults = append(defaults, h)
		}
	}

	return sorted(defaults, hostnameOrder), nil
}

func (s hostnameStore) SetDefault(_ context.Context, id uuid.UUID, isDefault bool) error {
	h, ok := s.d.hostnames[id]
	if !ok {
		return repo.ErrNotFound
	}

	h.IsDefault = isDefault
	s.d.hostnames[id] = h

	return nil
}

func (s hostnameStore) Find(_ context.Context, id uuid.UUID) (*model.Hostname, error) {
	h, ok := s.d.hostnames[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	return &h, nil
}

func (s hostnameStore) ListByWebsite(_ context.Context, websiteID uuid.UUID) ([]model.Hostname, error) {
	return s.d.hostnamesOf(websiteID), nil
}

func (s hostnameStore) ClearRedirectsTo(_ context.Context, ids ...uuid.UUID) error {
	for id, h := range s.d.hostnames {
		if h.RedirectTo != nil && slices.Contains(ids, *h.RedirectTo) {
			h.RedirectTo = nil
			s.d.hostnames[id] = h
		}
	}

	return nil
}

func (s hostnameStore) DeleteByWebsite(_ context.Context, websiteID uuid.UUID) (int64, error) {
	var removed int64

	for id, h := range s.d.hostnames {
		if h.WebsiteID == websiteID {
			delete(s.d.hostnames, id)
			removed++
		}
	}

	return removed, nil
}

func (s hostnameStore) Insert(_ context.Context, hostname *model.Hostname) error {
	return s.d.putHostname(hostname, true)
}

type websiteStore struct {
	d *InMemoryDB
}

func (s websiteStore) Find(_ context.Context, id uuid.UUID) (*model.Website, error) {
	w, ok := s.d.websites[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	return &w, nil
}

func (s websiteStore) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]model.Website, error) {
	var websites []model.Website

	for _, w := range s.d.websites {
		if w.TenantID == tenantID {
			websites = append(websites, w)
		}
	}

	return sorted(websites, websiteOrder), nil
}

func (s websiteStore) Remove(_ context.Context, id uuid.UUID) error {
	delete(s.d.websites, id)
	return nil
}

func (d *InMemoryDB) hostnamesOf(websiteID uuid.UUID) []model.Hostname {
	var hostnames []model.Hostname

	for _, h := range d.hostnames {
		if h.WebsiteID == websiteID {
			hostnames = append(hostnames, h)
		}
	}

	return sorted(hostnames, hostnameOrder)
}

// putHostname stores h, enforcing the unique hostname index.
func (d *InMemoryDB) putHostname(h *model.Hostname, isNew bool) error {
	_, exists := d.hostnames[h.ID]
	if isNew == exists {
		if isNew {
			return repo.ErrUniqueConstraint
		}

		return repo.ErrNotFound
	}

	for _, other := range d.hostnames {
		if other.ID != h.ID && other.Hostname == h.Hostname {
			return repo.ErrUniqueConstraint
		}
	}

	h.Touch(now())
	d.hostnames[h.ID] = *h

	return nil
}
