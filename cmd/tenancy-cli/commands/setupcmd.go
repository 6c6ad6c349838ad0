package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/utils/ptr"
)

type setupResult struct {
	Tenant   tenantRecord   `yaml:"tenant"`
	Website  websiteRecord  `yaml:"website"`
	Hostname hostnameRecord `yaml:"hostname"`
}

// NewSetupCmd creates a Cobra command that provisions the first tenant, its
// website and the default hostname, then migrates the website database.
//
//nolint:funlen
func (f *CommandFactory) NewSetupCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Set up a tenant with a website and its default hostname",
		Long: "Set up a tenant with a website and its default hostname. Usage: tenancy setup --tenant-name [name] " +
			"--slug [website slug] --hostname [host] --db-host [host] --db-name [database]",
		Args: cobra.ExactArgs(0),

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			name, _ := cmd.Flags().GetString("tenant-name")
			email, _ := cmd.Flags().GetString("tenant-email")
			slug, _ := cmd.Flags().GetString("slug")
			host, _ := cmd.Flags().GetString("hostname")
			preferHTTPS, _ := cmd.Flags().GetBool("prefer-https")
			skipMigrate, _ := cmd.Flags().GetBool("skip-migrate")

			tenant, err := f.r.Tenants.Create(ctx, model.TenantAttributes{
				Name:  &name,
				Email: &email,
			})
			if err != nil {
				cmd.PrintErrf("Failed to create tenant: %v\n", err)
				return err
			}

			database := databaseFromFlags(cmd, slug)

			website, err := f.r.Websites.Create(ctx, model.WebsiteAttributes{
				TenantID: &tenant.ID,
				Slug:     &slug,
				Database: &database,
			})
			if err != nil {
				cmd.PrintErrf("Failed to create website: %v\n", err)
				return err
			}

			hostname, err := f.r.Hostnames.Create(ctx, model.HostnameAttributes{
				WebsiteID:   &website.ID,
				Hostname:    &host,
				IsDefault:   ptr.PointTo(true),
				PreferHTTPS: &preferHTTPS,
			})
			if err != nil {
				cmd.PrintErrf("Failed to create hostname: %v\n", err)
				return err
			}

			if !skipMigrate {
				err = f.migrator.MigrateWebsiteToLatest(ctx, website)
				if err != nil {
					cmd.PrintErrf("Failed to migrate website database: %v\n", err)
					return errs.Wrap(ErrMigrateWebsiteFail, err)
				}
			}

			return printYAML(cmd, setupResult{
				Tenant:   toTenantRecord(tenant),
				Website:  toWebsiteRecord(website),
				Hostname: toHostnameRecord(hostname),
			})
		},
	}

	cmd.Flags().String("tenant-name", "", "Tenant name")
	cmd.Flags().String("tenant-email", "", "Tenant contact email")
	cmd.Flags().String("slug", "", "Website slug, used as directory name")
	cmd.Flags().String("hostname", "", "Default hostname of the website")
	cmd.Flags().Bool("prefer-https", false, "Redirect plain requests to https")
	cmd.Flags().Bool("skip-migrate", false, "Do not migrate the website database")
	addDatabaseFlags(cmd)

	mustRequire(cmd, "tenant-name", "slug", "hostname", flagDBHost, flagDBName)

	cmd.SetContext(ctx)

	return cmd
}
