package db_test

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/db"
	"github.com/openkcm/tenancy/internal/observer"
	"github.com/openkcm/tenancy/internal/repo/mock"
	"github.com/openkcm/tenancy/internal/testutils"
	"github.com/openkcm/tenancy/migrations"
)

func TestMigratorPlan(t *testing.T) {
	r, _ := mock.NewInMemoryRepositories(observer.NewSet(config.Tenancy{}))
	tenant := testutils.CreateTenant(t, r, "acme")
	testutils.CreateWebsite(t, r, tenant, "shop")

	cfg := &config.Config{Database: config.Database{
		Name:     "tenancy",
		Host:     commoncfg.SourceRef{Source: commoncfg.EmbeddedSourceValue, Value: "system.db"},
		Migrator: config.Migrator{System: "system", Website: "website"},
	}}

	m, err := db.NewMigrator(r.Websites, cfg)
	require.NoError(t, err)

	tests := []struct {
		name    string
		target  db.MigrationTarget
		jobs    []string
		wantErr error
	}{
		{name: "system only", target: db.SystemTarget, jobs: []string{"system"}},
		{name: "websites only", target: db.WebsiteTarget, jobs: []string{"shop"}},
		{name: "all", target: db.AllTarget, jobs: []string{"system", "shop"}},
		{name: "unknown", target: "tenants", wantErr: db.ErrUnsupportedMigration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := db.Plan(t.Context(), m, tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)

			names := make([]string, 0, len(jobs))
			for _, j := range jobs {
				names = append(names, j.Name())
			}

			assert.Equal(t, tt.jobs, names)
		})
	}

	t.Run("Website jobs use the website schema", func(t *testing.T) {
		jobs, err := db.Plan(t.Context(), m, db.WebsiteTarget)
		require.NoError(t, err)
		require.Len(t, jobs, 1)

		assert.Equal(t, "shop", jobs[0].Schema())
		assert.Equal(t, "website", jobs[0].Dir())
		assert.Contains(t, jobs[0].DSN(), `search_path="shop"`)
	})
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, dir := range []string{"system", "website"} {
		entries, err := fs.ReadDir(migrations.FS, dir)
		require.NoError(t, err)
		assert.NotEmpty(t, entries, dir)
	}
}

func TestMigratorCreate(t *testing.T) {
	r, _ := mock.NewInMemoryRepositories(observer.NewSet(config.Tenancy{}))
	source := t.TempDir()

	cfg := &config.Config{Database: config.Database{
		Name:     "tenancy",
		Host:     commoncfg.SourceRef{Source: commoncfg.EmbeddedSourceValue, Value: "system.db"},
		Migrator: config.Migrator{System: "system", Website: "website", Source: source},
	}}

	m, err := db.NewMigrator(r.Websites, cfg)
	require.NoError(t, err)

	t.Run("Should write a numbered migration for the target", func(t *testing.T) {
		dir, err := m.Create(t.Context(), db.WebsiteTarget, "add_theme", db.SQLMigration)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(source, "website"), dir)

		files, err := filepath.Glob(filepath.Join(dir, "*_add_theme.sql"))
		require.NoError(t, err)
		assert.Len(t, files, 1)

		files, err = filepath.Glob(filepath.Join(source, "system", "*"))
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("Should refuse targets spanning several directories", func(t *testing.T) {
		_, err := m.Create(t.Context(), db.AllTarget, "add_theme", db.SQLMigration)
		assert.ErrorIs(t, err, db.ErrUnsupportedMigration)
	})

	t.Run("Should refuse unknown migration types", func(t *testing.T) {
		_, err := m.Create(t.Context(), db.SystemTarget, "add_theme", "yaml")
		assert.ErrorIs(t, err, db.ErrMigrationType)
	})
}
