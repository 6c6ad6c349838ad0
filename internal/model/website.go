package model

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Website is a tenant operated site with its own database and storage root.
type Website struct {
	ID       uuid.UUID                          `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID                          `gorm:"type:uuid;not null;index" validate:"required"`
	Slug     string                             `gorm:"column:directory_slug;type:varchar(63);not null;uniqueIndex" validate:"required,slug"`
	Database datatypes.JSONType[DatabaseConfig] `gorm:"column:db_config;not null"`
	Active   bool                               `gorm:"not null"`

	AutoTimeModel
}

func (Website) TableName() string   { return "websites" }
func (Website) IsSharedModel() bool { return true }

func (w *Website) Validate() error {
	err := validateStruct(w)
	if err != nil {
		return err
	}

	return w.DatabaseConfig().Validate()
}

// DatabaseConfig returns the connection descriptor stored on the website.
func (w *Website) DatabaseConfig() DatabaseConfig {
	return w.Database.Data()
}

// WebsiteAttributes carries the fields of a create or update. Nil fields are left untouched.
type WebsiteAttributes struct {
	TenantID *uuid.UUID
	Slug     *string
	Database *DatabaseConfig
	Active   *bool
}

func (w *Website) Apply(attrs WebsiteAttributes) {
	if attrs.TenantID != nil {
		w.TenantID = *attrs.TenantID
	}

	if attrs.Slug != nil {
		w.Slug = strings.ToLower(strings.TrimSpace(*attrs.Slug))
	}

	if attrs.Database != nil {
		w.Database = datatypes.NewJSONType(*attrs.Database)
	}

	if attrs.Active != nil {
		w.Active = *attrs.Active
	}
}
