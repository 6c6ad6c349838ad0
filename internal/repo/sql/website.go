package sql

import (
	"context"

	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/repo"
)

type WebsiteRepository struct {
	*base
}

func (r *WebsiteRepository) Find(ctx context.Context, id uuid.UUID) (*model.Website, error) {
	return websiteStore{db: r.db}.Find(ctx, id)
}

func (r *WebsiteRepository) List(ctx context.Context) ([]model.Website, error) {
	var websites []model.Website

	err := find(ctx, r.db, &websites, "")

	return websites, err
}

func (r *WebsiteRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Website, error) {
	return websiteStore{db: r.db}.ListByTenant(ctx, tenantID)
}

func (r *WebsiteRepository) Create(ctx context.Context, attrs model.WebsiteAttributes) (*model.Website, error) {
	website := &model.Website{ID: uuid.New(), Active: true}
	website.Apply(attrs)

	err := website.Validate()
	if err != nil {
		return nil, err
	}

	err = r.transaction(ctx, func(s *txStore) error {
		err := r.checkTenant(ctx, s, website.TenantID)
		if err != nil {
			return err
		}

		err = create(ctx, s.db, website)
		if err != nil {
			return err
		}

		return r.obs.Website.Created(ctx, s, website)
	})
	if err != nil {
		return nil, err
	}

	return website, nil
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

	err = r.transaction(ctx, func(s *txStore) error {
		if updated.TenantID != website.TenantID {
			err := r.checkTenant(ctx, s, updated.TenantID)
			if err != nil {
				return err
			}
		}

		return update(ctx, s.db, &updated)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes the website and its hostnames.
func (r *WebsiteRepository) Delete(ctx context.Context, website *model.Website) (bool, error) {
	deleted := false

	err := r.transaction(ctx, func(s *txStore) error {
		var current model.Website

		err := first(ctx, forUpdate(s.db), &current, "id = ?", website.ID)
		if repo.IsNotFound(err) {
			return nil
		}

		if err != nil {
			return err
		}

		err = r.obs.Website.Deleting(ctx, s, &current)
		if err != nil {
			return err
		}

		deleted = true

		return remove(ctx, s.db, &model.Website{}, current.ID)
	})

	return deleted, err
}

func (r *WebsiteRepository) checkTenant(ctx context.Context, s *txStore, tenantID uuid.UUID) error {
	var tenant model.Tenant

	err := first(ctx, s.db, &tenant, "id = ?", tenantID)
	if repo.IsNotFound(err) {
		return repo.ErrUnknownTenant
	}

	return err
}
