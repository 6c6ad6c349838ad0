package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openkcm/tenancy/internal/model"
)

// NewTenantCmd creates a Cobra command group that manages tenants.
func (f *CommandFactory) NewTenantCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}

	cmd.AddCommand(
		f.newCreateTenantCmd(ctx),
		f.newListTenantsCmd(ctx),
		f.newDeleteTenantCmd(ctx),
	)

	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) newCreateTenantCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new tenant. Usage: tenancy tenant create --name [name] --email [email]",
		Args:  cobra.ExactArgs(0),

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")

			tenant, err := f.r.Tenants.Create(cmd.Context(), model.TenantAttributes{
				Name:  &name,
				Email: &email,
			})
			if err != nil {
				cmd.PrintErrf("Failed to create tenant: %v\n", err)
				return err
			}

			return printYAML(cmd, toTenantRecord(tenant))
		},
	}

	cmd.Flags().StringP("name", "n", "", "Tenant name")
	cmd.Flags().StringP("email", "e", "", "Tenant contact email")
	mustRequire(cmd, "name")

	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) newListTenantsCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all tenants. Usage: tenancy tenant list",

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenants, err := f.r.Tenants.List(cmd.Context())
			if err != nil {
				cmd.PrintErrf("failed to get tenants")
				return err
			}

			records := make([]tenantRecord, 0, len(tenants))
			for i := range tenants {
				records = append(records, toTenantRecord(&tenants[i]))
			}

			return printYAML(cmd, records)
		},
	}

	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) newDeleteTenantCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a tenant with its websites and hostnames. Usage: tenancy tenant delete --id [tenant id]",
		Args:  cobra.ExactArgs(0),

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, _ := cmd.Flags().GetString("id")

			id, err := parseID(raw)
			if err != nil {
				return err
			}

			tenant, err := f.r.Tenants.Find(cmd.Context(), id)
			if err != nil {
				cmd.PrintErrf("Failed to find tenant %s: %v\n", raw, err)
				return err
			}

			deleted, err := f.r.Tenants.Delete(cmd.Context(), tenant)
			if err != nil {
				cmd.PrintErrf("Failed to delete tenant: %v\n", err)
				return err
			}

			if !deleted {
				return ErrNothingToDelete
			}

			cmd.Printf("Tenant deleted: %s\n", tenant.ID)

			return nil
		},
	}

	cmd.Flags().StringP("id", "i", "", "Tenant id")
	mustRequire(cmd, "id")

	cmd.SetContext(ctx)

	return cmd
}
