package main

import (
	"context"
	"os"

	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/openkcm/tenancy/cmd/tenancy-cli/commands"
	"github.com/openkcm/tenancy/internal/cache"
	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/constants"
	"github.com/openkcm/tenancy/internal/db"
	"github.com/openkcm/tenancy/internal/observer"
	"github.com/openkcm/tenancy/internal/repo/sql"
	"github.com/openkcm/tenancy/utils/cmd"
)

func run(ctx context.Context, cfg *config.Config) error {
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to initialise the logger")
	}

	dbCon, err := db.StartDB(ctx, cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to initialise db connection")
	}

	// Writes purge the shared hostname cache so running servers see them.
	hostnameCache, err := cache.New(cfg.Cache)
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to initialise hostname cache")
	}

	repos := sql.NewRepositories(dbCon.DB, observer.NewSet(cfg.Tenancy, hostnameCache))

	migrator, err := db.NewMigrator(repos.Websites, cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to initialise migrator")
	}

	rootCmd := setupCommands(ctx, commands.NewCommandFactory(repos, migrator))

	err = rootCmd.ExecuteContext(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "error executing command")
	}

	return nil
}

// setupCommands creates and configures all CLI commands and flags
func setupCommands(ctx context.Context, factory *commands.CommandFactory) *cobra.Command {
	return factory.NewCommands(ctx)
}

func main() {
	exitCode := cmd.RunFuncWithSignalHandling(run, cmd.RunFlags{Env: constants.APIName})
	os.Exit(exitCode)
}
