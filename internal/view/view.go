// Package view exposes the active tenant to presentation code without giving
// it any way to change tenancy state.
package view

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/constants"
	"github.com/openkcm/tenancy/internal/model"
)

// Hostname is the read-only projection of a hostname record.
type Hostname struct {
	ID          uuid.UUID `json:"id"`
	Hostname    string    `json:"hostname"`
	IsDefault   bool      `json:"isDefault"`
	PreferHTTPS bool      `json:"preferHttps"`
}

// Website is the read-only projection of a website. Database credentials are never exposed.
type Website struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenantId"`
	Slug     string    `json:"slug"`
	Active   bool      `json:"active"`
}

// TenantView is the tenant context every rendered view receives. The zero
// value is the tenant-less view.
type TenantView struct {
	hostname *Hostname
	website  *Website
}

func New(hostname *model.Hostname, website *model.Website) TenantView {
	var v TenantView

	if hostname != nil {
		v.hostname = &Hostname{
			ID:          hostname.ID,
			Hostname:    hostname.Hostname,
			IsDefault:   hostname.IsDefault,
			PreferHTTPS: hostname.PreferHTTPS,
		}
	}

	if website != nil {
		v.website = &Website{
			ID:       website.ID,
			TenantID: website.TenantID,
			Slug:     website.Slug,
			Active:   website.Active,
		}
	}

	return v
}

// Hostname returns a copy of the resolved hostname, or nil.
func (v TenantView) Hostname() *Hostname {
	if v.hostname == nil {
		return nil
	}

	h := *v.hostname

	return &h
}

// Website returns a copy of the active website, or nil.
func (v TenantView) Website() *Website {
	if v.website == nil {
		return nil
	}

	w := *v.website

	return &w
}

// Resolved reports whether a website is active for the request.
func (v TenantView) Resolved() bool {
	return v.website != nil
}

func (v TenantView) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Hostname *Hostname `json:"hostname"`
		Website  *Website  `json:"website"`
	}{v.hostname, v.website})
}

type viewKey struct{}

func WithView(ctx context.Context, v TenantView) context.Context {
	return context.WithValue(ctx, viewKey{}, v)
}

// FromContext returns the view of ctx, or the tenant-less view.
func FromContext(ctx context.Context) TenantView {
	v, _ := ctx.Value(viewKey{}).(TenantView)
	return v
}

// Composer shares the tenant view with every view rendered for a request.
type Composer struct{}

// Compose adds the tenant view of ctx to data under the "tenant" key.
func (Composer) Compose(ctx context.Context, data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}

	data[constants.ViewTenantKey] = FromContext(ctx)

	return data
}
