package model_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/utils/ptr"
)

func validWebsiteAttrs() model.WebsiteAttributes {
	return model.WebsiteAttributes{
		TenantID: ptr.PointTo(uuid.New()),
		Slug:     ptr.PointTo("acme"),
		Database: &model.DatabaseConfig{Host: "db.local", Name: "acme"},
		Active:   ptr.PointTo(true),
	}
}

func TestWebsiteValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*model.WebsiteAttributes)
		expectErr bool
	}{
		{
			name:   "valid",
			mutate: func(*model.WebsiteAttributes) {},
		},
		{
			name:   "slug is lower cased",
			mutate: func(a *model.WebsiteAttributes) { a.Slug = ptr.PointTo("ACME") },
		},
		{
			name:      "slug with slash",
			mutate:    func(a *model.WebsiteAttributes) { a.Slug = ptr.PointTo("../etc") },
			expectErr: true,
		},
		{
			name:      "single character slug",
			mutate:    func(a *model.WebsiteAttributes) { a.Slug = ptr.PointTo("a") },
			expectErr: true,
		},
		{
			name:      "missing tenant",
			mutate:    func(a *model.WebsiteAttributes) { a.TenantID = ptr.PointTo(uuid.Nil) },
			expectErr: true,
		},
		{
			name:      "database without host",
			mutate:    func(a *model.WebsiteAttributes) { a.Database = &model.DatabaseConfig{Name: "acme"} },
			expectErr: true,
		},
		{
			name: "database with bad ssl mode",
			mutate: func(a *model.WebsiteAttributes) {
				a.Database = &model.DatabaseConfig{Host: "db", Name: "acme", SSLMode: "sometimes"}
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := validWebsiteAttrs()
			tt.mutate(&attrs)

			website := &model.Website{}
			website.Apply(attrs)

			err := website.Validate()
			if tt.expectErr {
				assert.ErrorIs(t, err, errs.ErrInvalidTenantData)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig(t *testing.T) {
	cfg := model.DatabaseConfig{Host: "db.local", Name: "acme", User: "app", Password: "s3cret", SSLMode: "disable"}

	t.Run("Should render dsn with default port", func(t *testing.T) {
		assert.Equal(t, "host=db.local port=5432 dbname=acme user=app password=s3cret sslmode=disable", cfg.DSN())
	})

	t.Run("Should give equal keys for equal configs", func(t *testing.T) {
		same := cfg
		assert.Equal(t, cfg.Key(), same.Key())
	})

	t.Run("Should give different keys for different targets", func(t *testing.T) {
		other := cfg
		other.Name = "other"
		assert.NotEqual(t, cfg.Key(), other.Key())
	})

	t.Run("Should not leak password", func(t *testing.T) {
		assert.NotContains(t, cfg.String(), "s3cret")
		assert.NotContains(t, cfg.Key(), "s3cret")
	})
}
