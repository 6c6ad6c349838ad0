package commands

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
)

// NewWebsiteCmd creates a Cobra command group that manages websites.
func (f *CommandFactory) NewWebsiteCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "website",
		Short: "Manage websites",
	}

	cmd.AddCommand(
		f.newCreateWebsiteCmd(ctx),
		f.newListWebsitesCmd(ctx),
		f.newActivateWebsiteCmd(ctx),
		f.newDeleteWebsiteCmd(ctx),
	)

	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) newCreateWebsiteCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use: "create",
		Short: "Create a new website. Usage: tenancy website create --tenant-id [tenant id] --slug [slug] " +
			"--db-host [host] --db-name [database]",
		Args: cobra.ExactArgs(0),

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rawTenant, _ := cmd.Flags().GetString("tenant-id")
			slug, _ := cmd.Flags().GetString("slug")
			migrate, _ := cmd.Flags().GetBool("migrate")

			tenantID, err := parseID(rawTenant)
			if err != nil {
				return err
			}

			database := databaseFromFlags(cmd, slug)

			website, err := f.r.Websites.Create(ctx, model.WebsiteAttributes{
				TenantID: &tenantID,
				Slug:     &slug,
				Database: &database,
			})
			if err != nil {
				cmd.PrintErrf("Failed to create website: %v\n", err)
				return err
			}

			if migrate {
				err = f.migrator.MigrateWebsiteToLatest(ctx, website)
				if err != nil {
					cmd.PrintErrf("Failed to migrate website database: %v\n", err)
					return errs.Wrap(ErrMigrateWebsiteFail, err)
				}
			}

			return printYAML(cmd, toWebsiteRecord(website))
		},
	}

	cmd.Flags().String("tenant-id", "", "Owning tenant id")
	cmd.Flags().String("slug", "", "Website slug, used as directory name")
	cmd.Flags().Bool("migrate", false, "Migrate the website database after creating the website")
	addDatabaseFlags(cmd)
	mustRequire(cmd, "tenant-id", "slug", flagDBHost, flagDBName)

	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) newListWebsitesCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List websites. Usage: tenancy website list [--tenant-id tenant id]",

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rawTenant, _ := cmd.Flags().GetString("tenant-id")

			var (
				websites []model.Website
				err      error
			)

			if rawTenant == "" {
				websites, err = f.r.Websites.List(ctx)
			} else {
				var tenantID uuid.UUID

				tenantID, err = parseID(rawTenant)
				if err != nil {
					return err
				}

				websites, err = f.r.Websites.ListByTenant(ctx, tenantID)
			}

			if err != nil {
				cmd.PrintErrf("failed to get websites")
				return err
			}

			records := make([]websiteRecord, 0, len(websites))
			for i := range websites {
				records = append(records, toWebsiteRecord(&websites[i]))
			}

			return printYAML(cmd, records)
		},
	}

	cmd.Flags().String("tenant-id", "", "Only list websites of this tenant")
	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) newActivateWebsiteCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Activate or deactivate a website. Usage: tenancy website activate --id [website id] --active=[true|false]",
		Args:  cobra.ExactArgs(0),

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, _ := cmd.Flags().GetString("id")
			active, _ := cmd.Flags().GetBool("active")

			id, err := parseID(raw)
			if err != nil {
				return err
			}

			website, err := f.r.Websites.Find(cmd.Context(), id)
			if err != nil {
				cmd.PrintErrf("Failed to find website %s: %v\n", raw, err)
				return err
			}

			website, err = f.r.Websites.Update(cmd.Context(), website, model.WebsiteAttributes{Active: &active})
			if err != nil {
				cmd.PrintErrf("Failed to update website: %v\n", err)
				return err
			}

			return printYAML(cmd, toWebsiteRecord(website))
		},
	}

	cmd.Flags().StringP("id", "i", "", "Website id")
	cmd.Flags().Bool("active", true, "Whether the website serves requests")
	mustRequire(cmd, "id")

	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) newDeleteWebsiteCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a website with its hostnames. Usage: tenancy website delete --id [website id]",
		Args:  cobra.ExactArgs(0),

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, _ := cmd.Flags().GetString("id")

			id, err := parseID(raw)
			if err != nil {
				return err
			}

			website, err := f.r.Websites.Find(cmd.Context(), id)
			if err != nil {
				cmd.PrintErrf("Failed to find website %s: %v\n", raw, err)
				return err
			}

			deleted, err := f.r.Websites.Delete(cmd.Context(), website)
			if err != nil {
				cmd.PrintErrf("Failed to delete website: %v\n", err)
				return err
			}

			if !deleted {
				return ErrNothingToDelete
			}

			cmd.Printf("Website deleted: %s\n", website.ID)

			return nil
		},
	}

	cmd.Flags().StringP("id", "i", "", "Website id")
	mustRequire(cmd, "id")

	cmd.SetContext(ctx)

	return cmd
}
