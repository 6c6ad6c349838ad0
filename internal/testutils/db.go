package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openkcm/tenancy/internal/model"
)

// NewTestDB opens an in-memory sqlite database with the system tables migrated.
func NewTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(tb, err)

	sqlDB, err := db.DB()
	require.NoError(tb, err)

	// every connection to :memory: is a new database
	sqlDB.SetMaxOpenConns(1)

	tb.Cleanup(func() {
		_ = sqlDB.Close()
	})

	err = db.AutoMigrate(&model.Tenant{}, &model.Website{}, &model.Hostname{})
	require.NoError(tb, err)

	return db
}
