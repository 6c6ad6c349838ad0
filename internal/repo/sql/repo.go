package sql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/observer"
	"github.com/openkcm/tenancy/internal/repo"
	"github.com/openkcm/tenancy/internal/repo/violations"
)

const postgresDialect = "postgres"

// defaultHostnameLock is the advisory lock key serialising default hostname writers.
const defaultHostnameLock int64 = 0x74656e616e6379

// NewRepositories returns the gorm backed repositories sharing db and observers.
func NewRepositories(db *gorm.DB, obs *observer.Set) repo.Repositories {
	b := &base{db: db, obs: obs}

	return repo.Repositories{
		Tenants:   &TenantRepository{base: b},
		Websites:  &WebsiteRepository{base: b},
		Hostnames: &HostnameRepository{base: b},
	}
}

type base struct {
	db  *gorm.DB
	obs *observer.Set
}

// transaction runs fn in a database transaction and notifies listeners after commit.
func (b *base) transaction(ctx context.Context, fn func(s *txStore) error) error {
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txStore{db: tx})
	})
	if err != nil {
		return errs.Wrap(repo.ErrTransaction, err)
	}

	b.obs.Committed(ctx)

	return nil
}

func first(ctx context.Context, db *gorm.DB, dest any, query string, args ...any) error {
	err := db.WithContext(ctx).Where(query, args...).First(dest).Error
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Wrap(repo.ErrNotFound, err)
	}

	log.Error(ctx, "error finding the resource", err)

	return errs.Wrap(repo.ErrGetResource, err)
}

func find(ctx context.Context, db *gorm.DB, dest any, query string, args ...any) error {
	q := db.WithContext(ctx)
	if query != "" {
		q = q.Where(query, args...)
	}

	err := q.Order("created_at asc").Order("id asc").Find(dest).Error
	if err != nil {
		log.Error(ctx, "error listing resources", err)
		return errs.Wrap(repo.ErrGetResource, err)
	}

	return nil
}

func writeErr(err, kind error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || violations.IsUniqueConstraint(err) {
		return errs.Wrap(repo.ErrUniqueConstraint, err)
	}

	return errs.Wrap(kind, err)
}

func create(ctx context.Context, db *gorm.DB, resource any) error {
	err := db.WithContext(ctx).Create(resource).Error
	if err != nil {
		log.Error(ctx, "error creating resource", err)
		return writeErr(err, repo.ErrCreateResource)
	}

	return nil
}

// update writes every column of resource. It fails with ErrNotFound when the row is gone.
func update(ctx context.Context, db *gorm.DB, resource any) error {
	res := db.WithContext(ctx).Model(resource).Select("*").Updates(resource)
	if res.Error != nil {
		log.Error(ctx, "error updating resource", res.Error)
		return writeErr(res.Error, repo.ErrUpdateResource)
	}

	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	return nil
}

func remove(ctx context.Context, db *gorm.DB, resource any, id any) error {
	err := db.WithContext(ctx).Where("id = ?", id).Delete(resource).Error
	if err != nil {
		log.Error(ctx, "error deleting resource", err)
		return errs.Wrap(repo.ErrDeleteResource, err)
	}

	return nil
}

func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() != postgresDialect {
		return db
	}

	return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}
