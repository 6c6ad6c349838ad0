package db

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/log"
)

const DBLogDomain = "db"

// StartDB opens the system database and tunes its pool.
func StartDB(
	ctx context.Context,
	cfg *config.Config,
) (*multitenancy.DB, error) {
	log.Info(ctx, "Starting DB connection",
		slog.String("database", cfg.Database.Name),
		slog.Int("replicas", len(cfg.DatabaseReplicas)),
	)

	dbCon, err := StartDBConnection(ctx, cfg.Database, cfg.DatabaseReplicas)
	if err != nil {
		return nil, oops.In(DBLogDomain).Wrapf(err, "failed to initialize DB Connection")
	}

	sqlDB, err := dbCon.DB.DB()
	if err != nil {
		return nil, oops.In(DBLogDomain).Wrapf(err, "failed to access connection pool")
	}

	sqlDB.SetMaxOpenConns(cfg.Connections.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Connections.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Connections.ConnMaxLifetime)

	return dbCon, nil
}
