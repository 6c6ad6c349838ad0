package observer_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/observer"
	"github.com/openkcm/tenancy/internal/repo"
	"github.com/openkcm/tenancy/internal/repo/mock"
	"github.com/openkcm/tenancy/internal/testutils"
	"github.com/openkcm/tenancy/utils/ptr"
)

type listenerFunc func(ctx context.Context)

func (f listenerFunc) Changed(ctx context.Context) { f(ctx) }

func TestHostnameObserverRedirects(t *testing.T) {
	r, _ := mock.NewInMemoryRepositories(observer.NewSet(config.Tenancy{}))
	ctx := t.Context()

	website := testutils.CreateWebsite(t, r, testutils.CreateTenant(t, r, "acme"), "one")
	a := testutils.CreateHostname(t, r, website, "a.example.com", true)

	t.Run("Should reject unknown redirect targets", func(t *testing.T) {
		_, err := r.Hostnames.Create(ctx, model.HostnameAttributes{
			WebsiteID:  ptr.PointTo(website.ID),
			Hostname:   ptr.PointTo("b.example.com"),
			RedirectTo: ptr.PointTo(uuid.New()),
		})
		assert.ErrorIs(t, err, repo.ErrUnknownRedirect)
	})

	t.Run("Should reject redirects to itself", func(t *testing.T) {
		_, err := r.Hostnames.Update(ctx, a, model.HostnameAttributes{RedirectTo: ptr.PointTo(a.ID)})
		assert.ErrorIs(t, err, errs.ErrInvalidTenantData)
	})

	t.Run("Should clear a redirect", func(t *testing.T) {
		b := testutils.CreateHostname(t, r, website, "b.example.com", false)

		b, err := r.Hostnames.Update(ctx, b, model.HostnameAttributes{RedirectTo: ptr.PointTo(a.ID)})
		require.NoError(t, err)
		require.NotNil(t, b.RedirectTo)

		b, err = r.Hostnames.Update(ctx, b, model.HostnameAttributes{ClearRedirect: true})
		require.NoError(t, err)
		assert.Nil(t, b.RedirectTo)
	})
}

func TestHostnameObserverRedirectCycles(t *testing.T) {
	r, _ := mock.NewInMemoryRepositories(observer.NewSet(config.Tenancy{}))
	ctx := t.Context()

	website := testutils.CreateWebsite(t, r, testutils.CreateTenant(t, r, "acme"), "one")
	a := testutils.CreateHostname(t, r, website, "a.example.com", true)
	b := testutils.CreateHostname(t, r, website, "b.example.com", false)
	c := testutils.CreateHostname(t, r, website, "c.example.com", false)

	b, err := r.Hostnames.Update(ctx, b, model.HostnameAttributes{RedirectTo: ptr.PointTo(a.ID)})
	require.NoError(t, err)

	c, err = r.Hostnames.Update(ctx, c, model.HostnameAttributes{RedirectTo: ptr.PointTo(b.ID)})
	require.NoError(t, err)

	tests := []struct {
		name   string
		source *model.Hostname
		target uuid.UUID
	}{
		{name: "two hostnames", source: a, target: b.ID},
		{name: "three hostnames", source: a, target: c.ID},
	}

	for _, tt := range tests {
		t.Run("Should reject a cycle of "+tt.name, func(t *testing.T) {
			_, err := r.Hostnames.Update(ctx, tt.source, model.HostnameAttributes{RedirectTo: ptr.PointTo(tt.target)})
			assert.ErrorIs(t, err, errs.ErrInvalidTenantData)

			stored, err := r.Hostnames.Find(ctx, tt.source.ID)
			require.NoError(t, err)
			assert.Nil(t, stored.RedirectTo)
		})
	}

	t.Run("Should accept a chain without a cycle", func(t *testing.T) {
		d := testutils.CreateHostname(t, r, website, "d.example.com", false)

		d, err := r.Hostnames.Update(ctx, d, model.HostnameAttributes{RedirectTo: ptr.PointTo(c.ID)})
		require.NoError(t, err)
		assert.Equal(t, c.ID, *d.RedirectTo)
	})
}

func TestHostnameObserverMoves(t *testing.T) {
	r, _ := mock.NewInMemoryRepositories(observer.NewSet(config.Tenancy{}))
	ctx := t.Context()

	tenant := testutils.CreateTenant(t, r, "acme")
	one := testutils.CreateWebsite(t, r, tenant, "one")
	two := testutils.CreateWebsite(t, r, tenant, "two")
	a := testutils.CreateHostname(t, r, one, "a.example.com", false)
	testutils.CreateHostname(t, r, two, "b.example.com", true)

	t.Run("Should keep the last hostname of an active website", func(t *testing.T) {
		_, err := r.Hostnames.Update(ctx, a, model.HostnameAttributes{WebsiteID: ptr.PointTo(two.ID)})
		assert.ErrorIs(t, err, repo.ErrLastHostname)

		stored, err := r.Hostnames.Find(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, one.ID, stored.WebsiteID)
	})

	t.Run("Should move a hostname that has siblings", func(t *testing.T) {
		testutils.CreateHostname(t, r, one, "www.one.example.com", false)

		moved, err := r.Hostnames.Update(ctx, a, model.HostnameAttributes{WebsiteID: ptr.PointTo(two.ID)})
		require.NoError(t, err)
		assert.Equal(t, two.ID, moved.WebsiteID)
	})

	t.Run("Should move the last hostname of an inactive website", func(t *testing.T) {
		three := testutils.CreateWebsite(t, r, tenant, "three")
		c := testutils.CreateHostname(t, r, three, "c.example.com", false)

		_, err := r.Websites.Update(ctx, three, model.WebsiteAttributes{Active: ptr.PointTo(false)})
		require.NoError(t, err)

		moved, err := r.Hostnames.Update(ctx, c, model.HostnameAttributes{WebsiteID: ptr.PointTo(two.ID)})
		require.NoError(t, err)
		assert.Equal(t, two.ID, moved.WebsiteID)
	})
}

func TestWebsiteObserverDeletingInactive(t *testing.T) {
	r, _ := mock.NewInMemoryRepositories(observer.NewSet(config.Tenancy{}))
	ctx := t.Context()

	website := testutils.CreateWebsite(t, r, testutils.CreateTenant(t, r, "acme"), "one")
	a := testutils.CreateHostname(t, r, website, "a.example.com", false)

	_, err := r.Websites.Update(ctx, website, model.WebsiteAttributes{Active: ptr.PointTo(false)})
	require.NoError(t, err)

	deleted, err := r.Hostnames.Delete(ctx, a)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestSetCommitted(t *testing.T) {
	calls := 0
	set := observer.NewSet(config.Tenancy{}, listenerFunc(func(context.Context) { calls++ }))
	r, _ := mock.NewInMemoryRepositories(set)

	testutils.CreateTenant(t, r, "acme")
	assert.Equal(t, 1, calls)

	_, err := r.Tenants.Create(t.Context(), model.TenantAttributes{Name: ptr.PointTo("x")})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var nilSet *observer.Set
	assert.NotPanics(t, func() { nilSet.Committed(t.Context()) })
}
