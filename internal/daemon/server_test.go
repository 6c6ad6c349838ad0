package daemon_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/connection"
	"github.com/openkcm/tenancy/internal/daemon"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/testutils"
)

type tenantBody struct {
	Tenant struct {
		Hostname *struct {
			Hostname string `json:"hostname"`
		} `json:"hostname"`
		Website *struct {
			Slug string `json:"slug"`
		} `json:"website"`
	} `json:"tenant"`
}

func newConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPServer{
			Address:         "localhost:0",
			ShutdownTimeout: time.Second,
		},
		Connections: config.Connections{ActivationTimeout: time.Second},
		Tenancy: config.Tenancy{
			Fallback:        config.FallbackDefault,
			AllowUnresolved: true,
		},
		Storage: config.Storage{BaseDir: "/srv/websites"},
		Cache:   config.Cache{Type: config.CacheMemory, TTL: time.Minute, Size: 100},
		Metrics: config.Metrics{Enabled: true, Path: "/metrics"},
	}
}

func newServer(t *testing.T, cfg *config.Config) *daemon.TenancyServer {
	t.Helper()

	open := func(context.Context, model.DatabaseConfig) (*gorm.DB, error) {
		return testutils.NewTestDB(t), nil
	}

	s, err := daemon.NewTenancyServer(t.Context(), cfg, testutils.NewTestDB(t),
		daemon.WithFs(afero.NewMemMapFs()),
		daemon.WithConnectionOptions(connection.WithOpenFunc(open)),
	)
	require.NoError(t, err)

	return s
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequestWithContext(t.Context(), http.MethodGet, url, nil))

	return rec
}

func TestServer(t *testing.T) {
	s := newServer(t, newConfig())

	t.Run("Should start and close", func(t *testing.T) {
		require.NoError(t, s.Start(t.Context()))
		require.NoError(t, s.Close(t.Context()))
	})
}

func TestTenantEndpoint(t *testing.T) {
	s := newServer(t, newConfig())
	r := s.Repositories()

	tenant := testutils.CreateTenant(t, r, "acme")
	website := testutils.CreateWebsite(t, r, tenant, "acme")

	t.Run("Should be tenant-less before any hostname exists", func(t *testing.T) {
		rec := get(t, s.Handler(), "http://www.example.com/tenant")
		require.Equal(t, http.StatusOK, rec.Code)

		var body tenantBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Nil(t, body.Tenant.Hostname)
		assert.Nil(t, body.Tenant.Website)
	})

	testutils.CreateHostname(t, r, website, "www.example.com", true)

	t.Run("Should resolve after the cache is purged by the write", func(t *testing.T) {
		rec := get(t, s.Handler(), "http://WWW.example.com:8080/tenant")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

		var body tenantBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotNil(t, body.Tenant.Hostname)
		require.NotNil(t, body.Tenant.Website)
		assert.Equal(t, "www.example.com", body.Tenant.Hostname.Hostname)
		assert.Equal(t, "acme", body.Tenant.Website.Slug)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("Should expose the website storage roots", func(t *testing.T) {
		rec := get(t, s.Handler(), "http://www.example.com/tenant/paths")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "/srv/websites/acme/media")
	})

	t.Run("Should fall back to the default hostname", func(t *testing.T) {
		rec := get(t, s.Handler(), "http://unknown.example.org/tenant")
		require.Equal(t, http.StatusOK, rec.Code)

		var body tenantBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotNil(t, body.Tenant.Website)
		assert.Equal(t, "acme", body.Tenant.Website.Slug)
	})
}

func TestUnresolvedRejected(t *testing.T) {
	cfg := newConfig()
	cfg.Tenancy.Fallback = config.FallbackNone
	cfg.Tenancy.AllowUnresolved = false

	s := newServer(t, cfg)

	rec := get(t, s.Handler(), "http://unknown.example.org/tenant")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "TENANT_NOT_FOUND")

	t.Run("Should serve system routes without a tenant", func(t *testing.T) {
		rec := get(t, s.Handler(), "http://unknown.example.org/healthz")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t, newConfig())

	get(t, s.Handler(), "http://www.example.com/tenant")

	rec := get(t, s.Handler(), "http://localhost/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "tenancy_resolver_resolutions_total")
	assert.Contains(t, string(body), "tenancy_http_requests_total")
}
