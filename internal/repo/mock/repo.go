package mock

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/observer"
	"github.com/openkcm/tenancy/internal/repo"
)

// now is monotonic so records created back to back keep their order.
var now = func() func() time.Time {
	var (
		mu   sync.Mutex
		last time.Time
	)

	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		t := time.Now().UTC()
		if !t.After(last) {
			t = last.Add(time.Microsecond)
		}

		last = t

		return t
	}
}()

// NewInMemoryRepositories returns repositories over a fresh InMemoryDB.
func NewInMemoryRepositories(obs *observer.Set) (repo.Repositories, *InMemoryDB) {
	d := NewInMemoryDB()

	return repo.Repositories{
		Tenants:   &TenantRepository{d: d, obs: obs},
		Websites:  &WebsiteRepository{d: d, obs: obs},
		Hostnames: &HostnameRepository{d: d, obs: obs},
	}, d
}

func (d *InMemoryDB) read(fn func()) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.Err != nil {
		return errs.Wrap(repo.ErrGetResource, d.Err)
	}

	fn()

	return nil
}

func commit(ctx context.Context, obs *observer.Set, err error) error {
	if err != nil {
		return errs.Wrap(repo.ErrTransaction, err)
	}

	obs.Committed(ctx)

	return nil
}

type TenantRepository struct {
	d   *InMemoryDB
	obs *observer.Set
}

func (r *TenantRepository) Find(_ context.Context, id uuid.UUID) (*model.Tenant, error) {
	var (
		t  model.Tenant
		ok bool
	)

	err := r.d.read(func() { t, ok = r.d.tenants[id] })
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, repo.ErrNotFound
	}

	return &t, nil
}

func (r *TenantRepository) List(context.Context) ([]model.Tenant, error) {
	var tenants []model.Tenant

	err := r.d.read(func() {
		tenants = sorted(slices.Collect(maps.Values(r.d.tenants)), tenantOrder)
	})

	return tenants, err
}

func (r *TenantRepository) Create(ctx context.Context, attrs model.TenantAttributes) (*model.Tenant, error) {
	t := &model.Tenant{ID: uuid.New()}
	t.Apply(attrs)

	err := t.Validate()
	if err != nil {
		return nil, err
	}

	err = r.d.transaction(func() error {
		t.Touch(now())
		r.d.tenants[t.ID] = *t

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.obs.Committed(ctx)

	return t, nil
}

func (r *TenantRepository) Update(
	ctx context.Context,
	tenant *model.Tenant,
	attrs model.TenantAttributes,
) (*model.Tenant, error) {
	updated := *tenant
	updated.Apply(attrs)

	err := updated.Validate()
	if err != nil {
		return nil, err
	}

	err = r.d.transaction(func() error {
		if _, ok := r.d.tenants[updated.ID]; !ok {
			return repo.ErrNotFound
		}

		updated.Touch(now())
		r.d.tenants[updated.ID] = updated

		return nil
	})
	if err != nil {
		return nil, errs.Wrap(repo.ErrTransaction, err)
	}

	r.obs.Committed(ctx)

	return &updated, nil
}

func (r *TenantRepository) Delete(ctx context.Context, tenant *model.Tenant) (bool, error) {
	deleted := false

	err := r.d.transaction(func() error {
		current, ok := r.d.tenants[tenant.ID]
		if !ok {
			return nil
		}

		err := r.obs.Tenant.Deleting(ctx, r.d, r.obs.Website, &current)
		if err != nil {
			return err
		}

		delete(r.d.tenants, current.ID)
		deleted = true

		return nil
	})

	return deleted, commit(ctx, r.obs, err)
}

type WebsiteRepository struct {
	d   *InMemoryDB
	obs *observer.Set
}

func (r *WebsiteRepository) Find(ctx context.Context, id uuid.UUID) (*model.Website, error) {
	var (
		w   *model.Website
		err error
	)

	readErr := r.d.read(func() { w, err = websiteStore{r.d}.Find(ctx, id) })
	if readErr != nil {
		return nil, readErr
	}

	return w, err
}

func (r *WebsiteRepository) List(context.Context) ([]model.Website, error) {
	var websites []model.Website

	err := r.d.read(func() {
		websites = sorted(slices.Collect(maps.Values(r.d.websites)), websiteOrder)
	})

	return websites, err
}

func (r *WebsiteRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Website, error) {
	var websites []model.Website

	err := r.d.read(func() { websites, _ = websiteStore{r.d}.ListByTenant(ctx, tenantID) })

	return websites, err
}

func (r *WebsiteRepository) Create(ctx context.Context, attrs model.WebsiteAttributes) (*model.Website, error) {
	w := &model.Website{ID: uuid.New(), Active: true}
	w.Apply(attrs)

	err := w.Validate()
	if err != nil {
		return nil, err
	}

	err = r.d.transaction(func() error {
		err := r.put(w, true)
		if err != nil {
			return err
		}

		return r.obs.Website.Created(ctx, r.d, w)
	})
	if err != nil {
		return nil, errs.Wrap(repo.ErrTransaction, err)
	}

	r.obs.Committed(ctx)

	return w, nil
}

func (r *WebsiteRepository) Update(
	ctx context.Context,
	website *model.Website,
	attrs model.WebsiteAttributes,
) (*model.Website, error) {
	updated := *website
	updated.Apply(attrs)

	err := updated.Validate()
	if err != nil {
		return nil, err
	}

	err = r.d.transaction(func() error {
		return r.put(&updated, false)
	})
	if err != nil {
		return nil, errs.Wrap(repo.ErrTransaction, err)
	}

	r.obs.Committed(ctx)

	return &updated, nil
}

func (r *WebsiteRepository) Delete(ctx context.Context, website *model.Website) (bool, error) {
	deleted := false

	err := r.d.transaction(func() error {
		current, ok := r.d.websites[website.ID]
		if !ok {
			return nil
		}

		err := r.obs.Website.Deleting(ctx, r.d, &current)
		if err != nil {
			return err
		}

		delete(r.d.websites, current.ID)
		deleted = true

		return nil
	})

	return deleted, commit(ctx, r.obs, err)
}

func (r *WebsiteRepository) put(w *model.Website, isNew bool) error {
	_, exists := r.d.websites[w.ID]
	if !isNew && !exists {
		return repo.ErrNotFound
	}

	if _, ok := r.d.tenants[w.TenantID]; !ok {
		return repo.ErrUnknownTenant
	}

	for _, other := range r.d.websites {
		if other.ID != w.ID && other.Slug == w.Slug {
			return repo.ErrUniqueConstraint
		}
	}

	w.Touch(now())
	r.d.websites[w.ID] = *w

	return nil
}

type HostnameRepository struct {
	d   *InMemoryDB
	obs *observer.Set
}

func (r *HostnameRepository) Find(_ context.Context, id uuid.UUID) (*model.Hostname, error) {
	return r.findBy(func(h model.Hostname) bool { return h.ID == id })
}

func (r *HostnameRepository) FindByHostname(_ context.Context, host string) (*model.Hostname, error) {
	host = model.NormalizeHost(host)
	return r.findBy(func(h model.Hostname) bool { return h.Hostname == host })
}

func (r *HostnameRepository) FindDefault(ctx context.Context) (*model.Hostname, error) {
	var defaults []model.Hostname

	err := r.d.read(func() { defaults, _ = hostnameStore{r.d}.ListDefaults(ctx) })
	if err != nil {
		return nil, err
	}

	if len(defaults) == 0 {
		return nil, repo.ErrNotFound
	}

	return &defaults[0], nil
}

func (r *HostnameRepository) List(context.Context) ([]model.Hostname, error) {
	var hostnames []model.Hostname

	err := r.d.read(func() {
		hostnames = sorted(slices.Collect(maps.Values(r.d.hostnames)), hostnameOrder)
	})

	return hostnames, err
}

func (r *HostnameRepository) ListByWebsite(_ context.Context, websiteID uuid.UUID) ([]model.Hostname, error) {
	var hostnames []model.Hostname

	err := r.d.read(func() { hostnames = r.d.hostnamesOf(websiteID) })

	return hostnames, err
}

func (r *HostnameRepository) Create(ctx context.Context, attrs model.HostnameAttributes) (*model.Hostname, error) {
	h := &model.Hostname{ID: uuid.New()}
	h.Apply(attrs)

	err := r.save(ctx, h, true)
	if err != nil {
		return nil, err
	}

	return h, nil
}

func (r *HostnameRepository) Update(
	ctx context.Context,
	hostname *model.Hostname,
	attrs model.HostnameAttributes,
) (*model.Hostname, error) {
	updated := *hostname
	updated.Apply(attrs)

	err := r.save(ctx, &updated, false)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *HostnameRepository) Delete(ctx context.Context, hostname *model.Hostname) (bool, error) {
	deleted := false

	err := r.d.transaction(func() error {
		current, ok := r.d.hostnames[hostname.ID]
		if !ok {
			return nil
		}

		err := r.obs.Hostname.Deleting(ctx, r.d, &current)
		if err != nil {
			return err
		}

		delete(r.d.hostnames, current.ID)
		deleted = true

		return nil
	})

	return deleted, commit(ctx, r.obs, err)
}

func (r *HostnameRepository) save(ctx context.Context, h *model.Hostname, isNew bool) error {
	err := h.Validate()
	if err != nil {
		return err
	}

	err = r.d.transaction(func() error {
		err := r.obs.Hostname.Saving(ctx, r.d, h)
		if err != nil {
			return err
		}

		err = r.d.putHostname(h, isNew)
		if err != nil {
			return err
		}

		return r.obs.Hostname.Saved(ctx, r.d, h)
	})

	return commit(ctx, r.obs, err)
}

func (r *HostnameRepository) findBy(match func(model.Hostname) bool) (*model.Hostname, error) {
	var (
		found model.Hostname
		ok    bool
	)

	err := r.d.read(func() {
		for _, h := range r.d.hostnames {
			if match(h) {
				found, ok = h, true
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, repo.ErrNotFound
	}

	return &found, nil
}
