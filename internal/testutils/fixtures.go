package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/repo"
	"github.com/openkcm/tenancy/utils/ptr"
)

// TestDatabase is the descriptor used for websites created by fixtures.
var TestDatabase = model.DatabaseConfig{
	Host: "localhost",
	Port: "5432",
	Name: "tenancy",
	User: "tenancy",
}

func CreateTenant(tb testing.TB, r repo.Repositories, name string) *model.Tenant {
	tb.Helper()

	tenant, err := r.Tenants.Create(tb.Context(), model.TenantAttributes{Name: ptr.PointTo(name)})
	require.NoError(tb, err)

	return tenant
}

func CreateWebsite(tb testing.TB, r repo.Repositories, tenant *model.Tenant, slug string) *model.Website {
	tb.Helper()

	db := TestDatabase
	db.Schema = slug

	website, err := r.Websites.Create(tb.Context(), model.WebsiteAttributes{
		TenantID: ptr.PointTo(tenant.ID),
		Slug:     ptr.PointTo(slug),
		Database: &db,
	})
	require.NoError(tb, err)

	return website
}

func CreateHostname(
	tb testing.TB,
	r repo.Repositories,
	website *model.Website,
	host string,
	isDefault bool,
) *model.Hostname {
	tb.Helper()

	hostname, err := r.Hostnames.Create(tb.Context(), model.HostnameAttributes{
		WebsiteID: ptr.PointTo(website.ID),
		Hostname:  ptr.PointTo(host),
		IsDefault: ptr.PointTo(isDefault),
	})
	require.NoError(tb, err)

	return hostname
}
