package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openkcm/tenancy/internal/db"
	"github.com/openkcm/tenancy/internal/repo"
)

type CommandFactory struct {
	r        repo.Repositories
	migrator db.Migrator
}

func NewCommandFactory(r repo.Repositories, migrator db.Migrator) *CommandFactory {
	return &CommandFactory{
		r:        r,
		migrator: migrator,
	}
}

// NewCommands builds the root command with every subcommand attached.
func (f *CommandFactory) NewCommands(ctx context.Context) *cobra.Command {
	rootCmd := f.NewRootCmd(ctx)

	rootCmd.AddCommand(
		f.NewSetupCmd(ctx),
		f.NewMigrateCmd(ctx),
		f.NewTenantCmd(ctx),
		f.NewWebsiteCmd(ctx),
		f.NewHostnameCmd(ctx),
	)

	return rootCmd
}
