package model

import (
	"net"
	"strings"

	"github.com/google/uuid"
)

// Hostname is a DNS name routed to exactly one website.
type Hostname struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	WebsiteID   uuid.UUID  `gorm:"type:uuid;not null;index" validate:"required"`
	Hostname    string     `gorm:"type:varchar(255);not null;uniqueIndex" validate:"required,max=253,hostname_rfc1123"`
	IsDefault   bool       `gorm:"not null;default:false;index"`
	PreferHTTPS bool       `gorm:"column:prefer_https;not null;default:false"`
	RedirectTo  *uuid.UUID `gorm:"type:uuid"`

	AutoTimeModel
}

func (Hostname) TableName() string   { return "hostnames" }
func (Hostname) IsSharedModel() bool { return true }

func (h *Hostname) Validate() error {
	return validateStruct(h)
}

// HostnameAttributes carries the fields of a create or update. Nil fields are
// left untouched; ClearRedirect removes an existing redirect.
type HostnameAttributes struct {
	WebsiteID     *uuid.UUID
	Hostname      *string
	IsDefault     *bool
	PreferHTTPS   *bool
	RedirectTo    *uuid.UUID
	ClearRedirect bool
}

func (h *Hostname) Apply(attrs HostnameAttributes) {
	if attrs.WebsiteID != nil {
		h.WebsiteID = *attrs.WebsiteID
	}

	if attrs.Hostname != nil {
		h.Hostname = NormalizeHost(*attrs.Hostname)
	}

	if attrs.IsDefault != nil {
		h.IsDefault = *attrs.IsDefault
	}

	if attrs.PreferHTTPS != nil {
		h.PreferHTTPS = *attrs.PreferHTTPS
	}

	if attrs.RedirectTo != nil {
		id := *attrs.RedirectTo
		h.RedirectTo = &id
	}

	if attrs.ClearRedirect {
		h.RedirectTo = nil
	}
}

// NormalizeHost lower-cases a Host header value and strips the port and a trailing dot.
// IPv6 literals keep their address without brackets.
func NormalizeHost(raw string) string {
	host := strings.TrimSpace(raw)

	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	} else if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = strings.Trim(host, "[]")
	}

	host = strings.TrimSuffix(host, ".")

	return strings.ToLower(host)
}
