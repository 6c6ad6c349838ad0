package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openkcm/tenancy/internal/db"
)

const noVersion = -1

// NewMigrateCmd creates a Cobra command group that migrates the system and
// website databases.
func (f *CommandFactory) NewMigrateCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the system and website databases",
		Long: "Migrate the system and website databases. " +
			"Usage: tenancy migrate [up|down|reset|refresh|redo|status|create] --target [system|website|all]",
	}

	cmd.PersistentFlags().StringP("target", "t", string(db.AllTarget), "Databases to migrate: system, website or all")

	cmd.AddCommand(
		f.newMigrateDirectionCmd(ctx, "up", false),
		f.newMigrateDirectionCmd(ctx, "down", true),
		f.newMigrateStatusCmd(ctx),
		f.newMigrateTargetCmd(ctx, "reset", "Roll back every migration", f.migrator.Reset),
		f.newMigrateTargetCmd(ctx, "refresh", "Roll back every migration and migrate up again", f.migrator.Refresh),
		f.newMigrateTargetCmd(ctx, "redo", "Roll back the latest migration and apply it again", f.migrator.Redo),
		f.newMigrateCreateCmd(ctx),
	)

	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) newMigrateDirectionCmd(ctx context.Context, use string, downgrade bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: "Migrate " + use + ". Usage: tenancy migrate " + use + " --target [target] --version [version]",
		Args:  cobra.ExactArgs(0),

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := targetFromFlags(cmd)
			if err != nil {
				return err
			}

			version, _ := cmd.Flags().GetInt64("version")
			migration := db.Migration{Downgrade: downgrade, Target: target}

			if version == noVersion {
				err = f.migrator.MigrateToLatest(cmd.Context(), migration)
			} else {
				err = f.migrator.MigrateTo(cmd.Context(), migration, version)
			}

			if err != nil {
				cmd.PrintErrf("Failed to migrate %s: %v\n", use, err)
				return err
			}

			cmd.Printf("Migrated %s: %s\n", use, target)

			return nil
		},
	}

	cmd.Flags().Int64P("version", "v", noVersion, "Version to migrate to, by default up to the latest or down by one")
	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) newMigrateStatusCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Log the migration status. Usage: tenancy migrate status --target [target]",
		Args:  cobra.ExactArgs(0),

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := targetFromFlags(cmd)
			if err != nil {
				return err
			}

			return f.migrator.Status(cmd.Context(), target)
		},
	}

	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) newMigrateTargetCmd(
	ctx context.Context,
	use, short string,
	run func(ctx context.Context, target db.MigrationTarget) error,
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short + ". Usage: tenancy migrate " + use + " --target [target]",
		Args:  cobra.ExactArgs(0),

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := targetFromFlags(cmd)
			if err != nil {
				return err
			}

			err = run(cmd.Context(), target)
			if err != nil {
				cmd.PrintErrf("Failed to migrate %s: %v\n", use, err)
				return err
			}

			cmd.Printf("Migrated %s: %s\n", use, target)

			return nil
		},
	}

	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) newMigrateCreateCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new migration. Usage: tenancy migrate create [name] --target [system|website] --type [sql|go]",
		Args:  cobra.ExactArgs(1),

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := targetFromFlags(cmd)
			if err != nil {
				return err
			}

			if target == db.AllTarget {
				return ErrSingleTarget
			}

			kind, _ := cmd.Flags().GetString("type")

			dir, err := f.migrator.Create(cmd.Context(), target, args[0], kind)
			if err != nil {
				return err
			}

			cmd.Printf("Created migration %s in %s\n", args[0], dir)

			return nil
		},
	}

	cmd.Flags().String("type", db.SQLMigration, "Migration type: sql or go")
	cmd.SetContext(ctx)

	return cmd
}

func targetFromFlags(cmd *cobra.Command) (db.MigrationTarget, error) {
	raw, _ := cmd.Flags().GetString("target")

	target := db.MigrationTarget(raw)
	switch target {
	case db.SystemTarget, db.WebsiteTarget, db.AllTarget:
		return target, nil
	default:
		return "", ErrInvalidTarget
	}
}
