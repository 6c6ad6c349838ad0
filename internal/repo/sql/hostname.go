package sql

import (
	"context"

	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/repo"
)

type HostnameRepository struct {
	*base
}

func (r *HostnameRepository) Find(ctx context.Context, id uuid.UUID) (*model.Hostname, error) {
	return r.findBy(ctx, "id = ?", id)
}

func (r *HostnameRepository) FindByHostname(ctx context.Context, host string) (*model.Hostname, error) {
	return r.findBy(ctx, "hostname = ?", model.NormalizeHost(host))
}

func (r *HostnameRepository) FindDefault(ctx context.Context) (*model.Hostname, error) {
	var hostname model.Hostname

	err := first(ctx, r.db.Order("created_at asc").Order("id asc"), &hostname, "is_default = ?", true)
	if err != nil {
		return nil, err
	}

	return &hostname, nil
}

func (r *HostnameRepository) List(ctx context.Context) ([]model.Hostname, error) {
	var hostnames []model.Hostname

	err := find(ctx, r.db, &hostnames, "")

	return hostnames, err
}

func (r *HostnameRepository) ListByWebsite(ctx context.Context, websiteID uuid.UUID) ([]model.Hostname, error) {
	return hostnameStore{db: r.db}.ListByWebsite(ctx, websiteID)
}

func (r *HostnameRepository) Create(ctx context.Context, attrs model.HostnameAttributes) (*model.Hostname, error) {
	hostname := &model.Hostname{ID: uuid.New()}
	hostname.Apply(attrs)

	err := hostname.Validate()
	if err != nil {
		return nil, err
	}

	err = r.transaction(ctx, func(s *txStore) error {
		err := r.obs.Hostname.Saving(ctx, s, hostname)
		if err != nil {
			return err
		}

		err = create(ctx, s.db, hostname)
		if err != nil {
			return err
		}

		return r.obs.Hostname.Saved(ctx, s, hostname)
	})
	if err != nil {
		return nil, err
	}

	return hostname, nil
}

func (r *HostnameRepository) Update(
	ctx context.Context,
	hostname *model.Hostname,
	attrs model.HostnameAttributes,
) (*model.Hostname, error) {
	updated := *hostname
	updated.Apply(attrs)

	err := updated.Validate()
	if err != nil {
		return nil, err
	}

	err = r.transaction(ctx, func(s *txStore) error {
		err := r.obs.Hostname.Saving(ctx, s, &updated)
		if err != nil {
			return err
		}

		err = update(ctx, s.db, &updated)
		if err != nil {
			return err
		}

		return r.obs.Hostname.Saved(ctx, s, &updated)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *HostnameRepository) Delete(ctx context.Context, hostname *model.Hostname) (bool, error) {
	deleted := false

	err := r.transaction(ctx, func(s *txStore) error {
		var current model.Hostname

		err := first(ctx, forUpdate(s.db), &current, "id = ?", hostname.ID)
		if repo.IsNotFound(err) {
			return nil
		}

		if err != nil {
			return err
		}

		err = r.obs.Hostname.Deleting(ctx, s, &current)
		if err != nil {
			return err
		}

		deleted = true

		return remove(ctx, s.db, &model.Hostname{}, current.ID)
	})

	return deleted, err
}

func (r *HostnameRepository) findBy(ctx context.Context, query string, args ...any) (*model.Hostname, error) {
	var hostname model.Hostname

	err := first(ctx, r.db, &hostname, query, args...)
	if err != nil {
		return nil, err
	}

	return &hostname, nil
}
