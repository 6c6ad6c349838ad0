package db

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pressly/goose/v3"

	_ "github.com/lib/pq" // registers the "postgres" database/sql driver used by goose

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/db/dsn"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/repo"
	"github.com/openkcm/tenancy/migrations"
)

type (
	MigrationTarget string
	migrateFunc     func(ctx context.Context, db *sql.DB, dir string) error
)

const (
	MigrationTable                   = "goose_db_version"
	SystemTarget     MigrationTarget = "system"
	WebsiteTarget    MigrationTarget = "website"
	AllTarget        MigrationTarget = "all"
	driverName                       = "postgres"

	SQLMigration = "sql"
	GoMigration  = "go"

	sourceDirMode os.FileMode = 0o755
)

var (
	ErrUnsupportedMigration = errors.New("unsupported migration")
	ErrMigrationFailed      = errors.New("migration failed")
	ErrMigrationType        = errors.New("migration type must be sql or go")
)

// goose keeps its dialect, base FS and table name in package state.
var gooseMu sync.Mutex

type Migration struct {
	Downgrade bool
	Target    MigrationTarget
}

type Migrator interface {
	MigrateWebsiteToLatest(ctx context.Context, website *model.Website) error
	MigrateToLatest(ctx context.Context, migration Migration) error
	MigrateTo(ctx context.Context, migration Migration, version int64) error
	Status(ctx context.Context, target MigrationTarget) error
	// Reset rolls back every applied migration.
	Reset(ctx context.Context, target MigrationTarget) error
	// Refresh resets and then migrates up to the latest version.
	Refresh(ctx context.Context, target MigrationTarget) error
	// Redo rolls back the latest migration and applies it again.
	Redo(ctx context.Context, target MigrationTarget) error
	// Create writes a new numbered migration for a single target and returns
	// the directory it was written to.
	Create(ctx context.Context, target MigrationTarget, name, kind string) (string, error)
}

// job is one migration run against one database.
type job struct {
	name   string
	dsn    string
	schema string
	dir    string
}

type migrator struct {
	websites repo.WebsiteRepository
	system   model.DatabaseConfig
	dirs     config.Migrator
}

func NewMigrator(websites repo.WebsiteRepository, cfg *config.Config) (Migrator, error) {
	system, err := dsn.FromDBConfig(cfg.Database)
	if err != nil {
		return nil, errs.Wrap(ErrLoadingDsnFromDBConfig, err)
	}

	return &migrator{
		websites: websites,
		system:   system,
		dirs:     cfg.Database.Migrator,
	}, nil
}

// MigrateToLatest migrates every database of the target up to the latest
// version, or down by one version when Downgrade is set.
func (m *migrator) MigrateToLatest(ctx context.Context, migration Migration) error {
	return m.migrate(ctx, migration, func(ctx context.Context, db *sql.DB, dir string) error {
		if migration.Downgrade {
			return goose.DownContext(ctx, db, dir)
		}

		return goose.UpContext(ctx, db, dir)
	})
}

// MigrateTo migrates every database of the target up or down to version.
func (m *migrator) MigrateTo(ctx context.Context, migration Migration, version int64) error {
	return m.migrate(ctx, migration, func(ctx context.Context, db *sql.DB, dir string) error {
		if migration.Downgrade {
			return goose.DownToContext(ctx, db, dir, version)
		}

		return goose.UpToContext(ctx, db, dir, version)
	})
}

// Status logs the applied and pending migrations of every database of the target.
func (m *migrator) Status(ctx context.Context, target MigrationTarget) error {
	return m.migrate(ctx, Migration{Target: target}, func(ctx context.Context, db *sql.DB, dir string) error {
		return goose.StatusContext(ctx, db, dir)
	})
}

func (m *migrator) Reset(ctx context.Context, target MigrationTarget) error {
	return m.migrate(ctx, Migration{Target: target}, func(ctx context.Context, db *sql.DB, dir string) error {
		return goose.ResetContext(ctx, db, dir)
	})
}

func (m *migrator) Refresh(ctx context.Context, target MigrationTarget) error {
	return m.migrate(ctx, Migration{Target: target}, func(ctx context.Context, db *sql.DB, dir string) error {
		err := goose.ResetContext(ctx, db, dir)
		if err != nil {
			return err
		}

		return goose.UpContext(ctx, db, dir)
	})
}

func (m *migrator) Redo(ctx context.Context, target MigrationTarget) error {
	return m.migrate(ctx, Migration{Target: target}, func(ctx context.Context, db *sql.DB, dir string) error {
		return goose.RedoContext(ctx, db, dir)
	})
}

// Create writes the migration below the source directory. It does not touch
// any database, the migration is embedded on the next build.
func (m *migrator) Create(ctx context.Context, target MigrationTarget, name, kind string) (string, error) {
	var dir string

	switch target {
	case SystemTarget:
		dir = m.dirs.System
	case WebsiteTarget:
		dir = m.dirs.Website
	default:
		return "", ErrUnsupportedMigration
	}

	if kind != SQLMigration && kind != GoMigration {
		return "", ErrMigrationType
	}

	path := filepath.Join(m.dirs.Source, dir)

	err := os.MkdirAll(path, sourceDirMode)
	if err != nil {
		return "", errs.Wrap(ErrMigrationFailed, err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	// nil switches goose back to the OS filesystem, run sets the embedded one again
	goose.SetBaseFS(nil)
	goose.SetSequential(true)

	err = goose.Create(nil, path, name, kind)
	if err != nil {
		return "", errs.Wrap(ErrMigrationFailed, err)
	}

	log.Info(ctx, "Created migration", slog.String("name", name), slog.String("dir", path))

	return path, nil
}

// MigrateWebsiteToLatest prepares the database of a newly created website.
func (m *migrator) MigrateWebsiteToLatest(ctx context.Context, website *model.Website) error {
	return m.run(ctx, m.websiteJob(website), func(ctx context.Context, db *sql.DB, dir string) error {
		return goose.UpContext(ctx, db, dir)
	})
}

func (m *migrator) migrate(ctx context.Context, migration Migration, f migrateFunc) error {
	jobs, err := m.plan(ctx, migration.Target)
	if err != nil {
		return err
	}

	for _, j := range jobs {
		err = m.run(ctx, j, f)
		if err != nil {
			return err
		}
	}

	return nil
}

// plan lists the databases a target covers, system database first.
func (m *migrator) plan(ctx context.Context, target MigrationTarget) ([]job, error) {
	var jobs []job

	switch target {
	case SystemTarget, AllTarget:
		jobs = append(jobs, job{name: "system", dsn: m.system.DSN(), dir: m.dirs.System})
	case WebsiteTarget:
	default:
		return nil, ErrUnsupportedMigration
	}

	if target == SystemTarget {
		return jobs, nil
	}

	websites, err := m.websites.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range websites {
		jobs = append(jobs, m.websiteJob(&websites[i]))
	}

	return jobs, nil
}

func (m *migrator) websiteJob(website *model.Website) job {
	cfg := website.DatabaseConfig()

	return job{
		name:   website.Slug,
		dsn:    dsn.WithSearchPath(cfg.DSN(), cfg.Schema),
		schema: cfg.Schema,
		dir:    m.dirs.Website,
	}
}

func (m *migrator) run(ctx context.Context, j job, f migrateFunc) error {
	ctx = log.InjectCommand(ctx, "migrate")
	log.Info(ctx, "Running migration", slog.String("database", j.name), slog.String("dir", j.dir))

	db, err := sql.Open(driverName, j.dsn)
	if err != nil {
		return errs.Wrap(ErrMigrationFailed, err)
	}
	defer db.Close()

	if j.schema != "" {
		_, err = db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+dsn.QuoteSchema(j.schema))
		if err != nil {
			return errs.Wrap(ErrMigrationFailed, err)
		}
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(MigrationTable)

	err = goose.SetDialect(string(goose.DialectPostgres))
	if err != nil {
		return errs.Wrap(ErrMigrationFailed, err)
	}

	err = f(ctx, db, j.dir)
	if err != nil {
		return errs.Wrap(ErrMigrationFailed, err)
	}

	return nil
}
