package sql

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/observer"
	"github.com/openkcm/tenancy/internal/repo"
)

// txStore exposes one open transaction to the observers.
type txStore struct {
	db *gorm.DB
}

func (s *txStore) Hostnames() observer.HostnameStore { return hostnameStore{db: s.db} }
func (s *txStore) Websites() observer.WebsiteStore   { return websiteStore{db: s.db} }

type hostnameStore struct {
	db *gorm.DB
}

func (s hostnameStore) LockDefaults(ctx context.Context) error {
	if s.db.Dialector.Name() != postgresDialect {
		return nil
	}

	err := s.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", defaultHostnameLock).Error
	if err != nil {
		return errs.Wrap(repo.ErrTransaction, err)
	}

	return nil
}

func (s hostnameStore) ListDefaults(ctx context.Context) ([]model.Hostname, error) {
	var hostnames []model.Hostname

	err := find(ctx, forUpdate(s.db), &hostnames, "is_default = ?", true)

	return hostnames, err
}

func (s hostnameStore) SetDefault(ctx context.Context, id uuid.UUID, isDefault bool) error {
	err := s.db.WithContext(ctx).Model(&model.Hostname{}).
		Where("id = ?", id).
		Update("is_default", isDefault).Error
	if err != nil {
		return errs.Wrap(repo.ErrUpdateResource, err)
	}

	return nil
}

func (s hostnameStore) Find(ctx context.Context, id uuid.UUID) (*model.Hostname, error) {
	var hostname model.Hostname

	err := first(ctx, s.db, &hostname, "id = ?", id)
	if err != nil {
		return nil, err
	}

	return &hostname, nil
}

func (s hostnameStore) ListByWebsite(ctx context.Context, websiteID uuid.UUID) ([]model.Hostname, error) {
	var hostnames []model.Hostname

	err := find(ctx, s.db, &hostnames, "website_id = ?", websiteID)

	return hostnames, err
}

func (s hostnameStore) ClearRedirectsTo(ctx context.Context, ids ...uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&model.Hostname{}).
		Where("redirect_to IN ?", ids).
		Update("redirect_to", gorm.Expr("NULL")).Error
	if err != nil {
		return errs.Wrap(repo.ErrUpdateResource, err)
	}

	return nil
}

func (s hostnameStore) DeleteByWebsite(ctx context.Context, websiteID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Where("website_id = ?", websiteID).Delete(&model.Hostname{})
	if res.Error != nil {
		return 0, errs.Wrap(repo.ErrDeleteResource, res.Error)
	}

	return res.RowsAffected, nil
}

func (s hostnameStore) Insert(ctx context.Context, hostname *model.Hostname) error {
	return create(ctx, s.db, hostname)
}

type websiteStore struct {
	db *gorm.DB
}

func (s websiteStore) Find(ctx context.Context, id uuid.UUID) (*model.Website, error) {
	var website model.Website

	err := first(ctx, s.db, &website, "id = ?", id)
	if err != nil {
		return nil, err
	}

	return &website, nil
}

func (s websiteStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Website, error) {
	var websites []model.Website

	err := find(ctx, s.db, &websites, "tenant_id = ?", tenantID)

	return websites, err
}

func (s websiteStore) Remove(ctx context.Context, id uuid.UUID) error {
	return remove(ctx, s.db, &model.Website{}, id)
}
