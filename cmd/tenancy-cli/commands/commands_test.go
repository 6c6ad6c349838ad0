package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"

	"github.com/openkcm/tenancy/cmd/tenancy-cli/commands"
	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/db"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/observer"
	"github.com/openkcm/tenancy/internal/repo"
	"github.com/openkcm/tenancy/internal/repo/sql"
	"github.com/openkcm/tenancy/internal/testutils"
)

type migrateCall struct {
	migration db.Migration
	version   int64
}

type fakeMigrator struct {
	websites []string
	calls    []migrateCall
	statuses []db.MigrationTarget
	runs     []string
	created  []string
	err      error
}

func (m *fakeMigrator) MigrateWebsiteToLatest(_ context.Context, website *model.Website) error {
	m.websites = append(m.websites, website.Slug)
	return m.err
}

func (m *fakeMigrator) MigrateToLatest(_ context.Context, migration db.Migration) error {
	m.calls = append(m.calls, migrateCall{migration: migration, version: -1})
	return m.err
}

func (m *fakeMigrator) MigrateTo(_ context.Context, migration db.Migration, version int64) error {
	m.calls = append(m.calls, migrateCall{migration: migration, version: version})
	return m.err
}

func (m *fakeMigrator) Status(_ context.Context, target db.MigrationTarget) error {
	m.statuses = append(m.statuses, target)
	return m.err
}

func (m *fakeMigrator) Reset(_ context.Context, target db.MigrationTarget) error {
	m.runs = append(m.runs, "reset "+string(target))
	return m.err
}

func (m *fakeMigrator) Refresh(_ context.Context, target db.MigrationTarget) error {
	m.runs = append(m.runs, "refresh "+string(target))
	return m.err
}

func (m *fakeMigrator) Redo(_ context.Context, target db.MigrationTarget) error {
	m.runs = append(m.runs, "redo "+string(target))
	return m.err
}

func (m *fakeMigrator) Create(_ context.Context, target db.MigrationTarget, name, kind string) (string, error) {
	m.created = append(m.created, string(target)+" "+name+"."+kind)
	return "migrations/" + string(target), m.err
}

type setupOutput struct {
	Tenant struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"tenant"`
	Website struct {
		ID     string `yaml:"id"`
		Slug   string `yaml:"slug"`
		Active bool   `yaml:"active"`
	} `yaml:"website"`
	Hostname struct {
		ID        string `yaml:"id"`
		Hostname  string `yaml:"hostname"`
		IsDefault bool   `yaml:"isDefault"`
	} `yaml:"hostname"`
}

type CLISuite struct {
	suite.Suite

	repos    repo.Repositories
	migrator *fakeMigrator
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.repos = sql.NewRepositories(testutils.NewTestDB(s.T()), observer.NewSet(config.Tenancy{}))
	s.migrator = &fakeMigrator{}
}

// execute runs args against a fresh command tree so flag values never leak
// between invocations.
func (s *CLISuite) execute(args ...string) (string, error) {
	factory := commands.NewCommandFactory(s.repos, s.migrator)
	rootCmd := factory.NewCommands(s.T().Context())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), err
}

func (s *CLISuite) setup(slug, host string) setupOutput {
	out, err := s.execute("setup",
		"--tenant-name", "Acme Corp",
		"--slug", slug,
		"--hostname", host,
		"--db-host", "db.internal",
		"--db-name", "acme",
		"--db-password", "s3cret",
	)
	s.Require().NoError(err)
	s.NotContains(out, "s3cret")

	var result setupOutput
	s.Require().NoError(yaml.Unmarshal([]byte(out), &result))

	return result
}

func (s *CLISuite) TestSetup() {
	result := s.setup("acme", "WWW.Acme.example")

	s.Equal("Acme Corp", result.Tenant.Name)
	s.Equal("acme", result.Website.Slug)
	s.True(result.Website.Active)
	s.Equal("www.acme.example", result.Hostname.Hostname)
	s.True(result.Hostname.IsDefault)
	s.Equal([]string{"acme"}, s.migrator.websites)

	website, err := s.repos.Websites.List(s.T().Context())
	s.Require().NoError(err)
	s.Require().Len(website, 1)
	s.Equal("acme", website[0].DatabaseConfig().Schema)
	s.Equal("s3cret", website[0].DatabaseConfig().Password)
}

func (s *CLISuite) TestSetupSkipMigrate() {
	_, err := s.execute("setup",
		"--tenant-name", "Acme Corp",
		"--slug", "acme",
		"--hostname", "www.acme.example",
		"--db-host", "db.internal",
		"--db-name", "acme",
		"--skip-migrate",
	)
	s.Require().NoError(err)
	s.Empty(s.migrator.websites)
}

func (s *CLISuite) TestSetupMigrationFailure() {
	s.migrator.err = errors.New("connection refused")

	_, err := s.execute("setup",
		"--tenant-name", "Acme Corp",
		"--slug", "acme",
		"--hostname", "www.acme.example",
		"--db-host", "db.internal",
		"--db-name", "acme",
	)
	s.Require().ErrorIs(err, commands.ErrMigrateWebsiteFail)
}

func (s *CLISuite) TestSetupRequiresFlags() {
	_, err := s.execute("setup", "--tenant-name", "Acme Corp")
	s.Require().Error(err)

	tenants, err := s.repos.Tenants.List(s.T().Context())
	s.Require().NoError(err)
	s.Empty(tenants)
}

func (s *CLISuite) TestTenants() {
	out, err := s.execute("tenant", "create", "--name", "Globex", "--email", "ops@globex.example")
	s.Require().NoError(err)
	s.Contains(out, "name: Globex")

	_, err = s.execute("tenant", "create", "--name", "Ab")
	s.Require().ErrorIs(err, errs.ErrInvalidTenantData)

	out, err = s.execute("tenant", "list")
	s.Require().NoError(err)

	var tenants []map[string]any
	s.Require().NoError(yaml.Unmarshal([]byte(out), &tenants))
	s.Len(tenants, 1)
	s.Equal("ops@globex.example", tenants[0]["email"])
}

func (s *CLISuite) TestTenantDeleteCascades() {
	result := s.setup("acme", "www.acme.example")

	_, err := s.execute("tenant", "delete", "--id", result.Tenant.ID)
	s.Require().NoError(err)

	websites, err := s.repos.Websites.List(s.T().Context())
	s.Require().NoError(err)
	s.Empty(websites)

	hostnames, err := s.repos.Hostnames.List(s.T().Context())
	s.Require().NoError(err)
	s.Empty(hostnames)

	_, err = s.execute("tenant", "delete", "--id", "not-a-uuid")
	s.Require().ErrorIs(err, commands.ErrInvalidID)
}

func (s *CLISuite) TestWebsites() {
	result := s.setup("acme", "www.acme.example")

	out, err := s.execute("website", "create",
		"--tenant-id", result.Tenant.ID,
		"--slug", "acme-shop",
		"--db-host", "db.internal",
		"--db-name", "shop",
		"--migrate",
	)
	s.Require().NoError(err)
	s.Contains(out, "slug: acme-shop")
	s.Equal([]string{"acme", "acme-shop"}, s.migrator.websites)

	out, err = s.execute("website", "list", "--tenant-id", result.Tenant.ID)
	s.Require().NoError(err)

	var websites []map[string]any
	s.Require().NoError(yaml.Unmarshal([]byte(out), &websites))
	s.Len(websites, 2)

	out, err = s.execute("website", "activate", "--id", result.Website.ID, "--active=false")
	s.Require().NoError(err)
	s.Contains(out, "active: false")
}

func (s *CLISuite) TestHostnames() {
	result := s.setup("acme", "www.acme.example")

	out, err := s.execute("hostname", "create",
		"--website-id", result.Website.ID,
		"--hostname", "shop.acme.example",
		"--redirect-to", result.Hostname.ID,
	)
	s.Require().NoError(err)

	var created map[string]any
	s.Require().NoError(yaml.Unmarshal([]byte(out), &created))
	s.Equal(result.Hostname.ID, created["redirectTo"])

	shopID, ok := created["id"].(string)
	s.Require().True(ok)

	_, err = s.execute("hostname", "update", "--id", shopID)
	s.Require().ErrorIs(err, commands.ErrNoFieldsToUpdate)

	_, err = s.execute("hostname", "update", "--id", shopID, "--clear-redirect", "--redirect-to", result.Hostname.ID)
	s.Require().ErrorIs(err, commands.ErrRedirectConflict)

	out, err = s.execute("hostname", "update", "--id", shopID, "--default", "--clear-redirect")
	s.Require().NoError(err)
	s.Contains(out, "isDefault: true")
	s.NotContains(out, "redirectTo")

	defaultHostname, err := s.repos.Hostnames.FindDefault(s.T().Context())
	s.Require().NoError(err)
	s.Equal("shop.acme.example", defaultHostname.Hostname)

	out, err = s.execute("hostname", "list", "--website-id", result.Website.ID)
	s.Require().NoError(err)

	var hostnames []map[string]any
	s.Require().NoError(yaml.Unmarshal([]byte(out), &hostnames))
	s.Len(hostnames, 2)

	_, err = s.execute("hostname", "delete", "--id", shopID)
	s.Require().NoError(err)

	_, err = s.execute("hostname", "delete", "--id", result.Hostname.ID)
	s.Require().ErrorIs(err, repo.ErrLastHostname)
}

func (s *CLISuite) TestMigrate() {
	_, err := s.execute("migrate", "up", "--target", "system")
	s.Require().NoError(err)

	_, err = s.execute("migrate", "down", "-t", "website", "--version", "3")
	s.Require().NoError(err)

	_, err = s.execute("migrate", "status")
	s.Require().NoError(err)

	s.Equal([]migrateCall{
		{migration: db.Migration{Target: db.SystemTarget}, version: -1},
		{migration: db.Migration{Downgrade: true, Target: db.WebsiteTarget}, version: 3},
	}, s.migrator.calls)
	s.Equal([]db.MigrationTarget{db.AllTarget}, s.migrator.statuses)

	_, err = s.execute("migrate", "up", "--target", "everything")
	s.Require().ErrorIs(err, commands.ErrInvalidTarget)
}

func (s *CLISuite) TestMigrateReset() {
	for _, args := range [][]string{
		{"migrate", "reset", "--target", "website"},
		{"migrate", "refresh"},
		{"migrate", "redo", "-t", "system"},
	} {
		out, err := s.execute(args...)
		s.Require().NoError(err)
		s.Contains(out, "Migrated "+args[1])
	}

	s.Equal([]string{"reset website", "refresh all", "redo system"}, s.migrator.runs)

	_, err := s.execute("migrate", "reset", "--target", "tenants")
	s.Require().ErrorIs(err, commands.ErrInvalidTarget)

	s.migrator.err = errors.New("relation goose_db_version does not exist")

	_, err = s.execute("migrate", "redo")
	s.Require().Error(err)
	s.Len(s.migrator.runs, 4)
}

func (s *CLISuite) TestMigrateCreate() {
	out, err := s.execute("migrate", "create", "add_theme", "--target", "website")
	s.Require().NoError(err)
	s.Contains(out, "Created migration add_theme in migrations/website")

	_, err = s.execute("migrate", "create", "seed_defaults", "-t", "system", "--type", "go")
	s.Require().NoError(err)

	s.Equal([]string{"website add_theme.sql", "system seed_defaults.go"}, s.migrator.created)

	_, err = s.execute("migrate", "create", "add_theme")
	s.Require().ErrorIs(err, commands.ErrSingleTarget)

	_, err = s.execute("migrate", "create", "--target", "system")
	s.Require().Error(err)
	s.Len(s.migrator.created, 2)
}
