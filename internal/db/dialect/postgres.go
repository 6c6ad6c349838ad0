package dialect

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	pg "github.com/bartventer/gorm-multitenancy/postgres/v8"

	"github.com/openkcm/tenancy/internal/model"
)

// NewFrom returns a postgres dialector for a keyword/value DSN.
// PreferSimpleProtocol disables prepared statement caching, which prevents
// "cached plan must not change result type" errors after migrations.
func NewFrom(dsn string) gorm.Dialector {
	return pg.New(pg.Config{
		Config: postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		},
	})
}

// ForWebsite returns the dialector of a website database descriptor.
func ForWebsite(cfg model.DatabaseConfig) gorm.Dialector {
	return NewFrom(cfg.DSN())
}
