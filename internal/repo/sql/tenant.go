package sql

import (
	"context"

	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/repo"
)

type TenantRepository struct {
	*base
}

func (r *TenantRepository) Find(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	var tenant model.Tenant

	err := first(ctx, r.db, &tenant, "id = ?", id)
	if err != nil {
		return nil, err
	}

	return &tenant, nil
}

func (r *TenantRepository) List(ctx context.Context) ([]model.Tenant, error) {
	var tenants []model.Tenant

	err := find(ctx, r.db, &tenants, "")

	return tenants, err
}

func (r *TenantRepository) Create(ctx context.Context, attrs model.TenantAttributes) (*model.Tenant, error) {
	tenant := &model.Tenant{ID: uuid.New()}
	tenant.Apply(attrs)

	err := tenant.Validate()
	if err != nil {
		return nil, err
	}

	err = r.transaction(ctx, func(s *txStore) error {
		return create(ctx, s.db, tenant)
	})
	if err != nil {
		return nil, err
	}

	return tenant, nil
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

	err = r.transaction(ctx, func(s *txStore) error {
		return update(ctx, s.db, &updated)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes the tenant with its websites and their hostnames.
func (r *TenantRepository) Delete(ctx context.Context, tenant *model.Tenant) (bool, error) {
	deleted := false

	err := r.transaction(ctx, func(s *txStore) error {
		var current model.Tenant

		err := first(ctx, forUpdate(s.db), &current, "id = ?", tenant.ID)
		if repo.IsNotFound(err) {
			return nil
		}

		if err != nil {
			return err
		}

		err = r.obs.Tenant.Deleting(ctx, s, r.obs.Website, &current)
		if err != nil {
			return err
		}

		deleted = true

		return remove(ctx, s.db, &model.Tenant{}, current.ID)
	})

	return deleted, err
}
