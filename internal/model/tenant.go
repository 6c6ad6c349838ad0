package model

import (
	"strings"

	"github.com/google/uuid"
)

// Tenant is the organisation owning one or more websites.
type Tenant struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name  string    `gorm:"type:varchar(255);not null" validate:"required,min=3,max=255"`
	Email string    `gorm:"type:varchar(255);not null;default:''" validate:"omitempty,email"`

	AutoTimeModel
}

func (Tenant) TableName() string   { return "tenants" }
func (Tenant) IsSharedModel() bool { return true }

func (t *Tenant) Validate() error {
	return validateStruct(t)
}

// TenantAttributes carries the fields of a create or update. Nil fields are left untouched.
type TenantAttributes struct {
	Name  *string
	Email *string
}

func (t *Tenant) Apply(attrs TenantAttributes) {
	if attrs.Name != nil {
		t.Name = strings.TrimSpace(*attrs.Name)
	}

	if attrs.Email != nil {
		t.Email = strings.TrimSpace(*attrs.Email)
	}
}
