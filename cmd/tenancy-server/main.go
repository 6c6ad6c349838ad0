package main

import (
	"context"
	"flag"
	"os"

	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/samber/oops"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/constants"
	"github.com/openkcm/tenancy/internal/daemon"
	"github.com/openkcm/tenancy/internal/db"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/utils/cmd"
)

var (
	gracefulShutdownSec     = flag.Int64("graceful-shutdown", 1, "graceful shutdown seconds")
	gracefulShutdownMessage = flag.String("graceful-shutdown-message", "Graceful shutdown in %d seconds",
		"graceful shutdown message")
)

// - Opens the system database
// - Starts the tenancy HTTP server
func run(ctx context.Context, cfg *config.Config) error {
	// LoggerConfig initialisation
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	dbCon, err := db.StartDB(ctx, cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "starting db")
	}

	s, err := daemon.NewTenancyServer(ctx, cfg, dbCon.DB)
	if err != nil {
		return oops.In("main").Wrapf(err, "creating tenancy server")
	}

	err = s.Start(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "starting tenancy server")
	}

	log.Info(ctx, "Tenancy server started")

	<-ctx.Done()

	err = s.Close(context.WithoutCancel(ctx))
	if err != nil {
		return oops.In("main").Wrapf(err, "closing server")
	}

	return nil
}

// main is the entry point for the application. It is intentionally kept small
// because it is hard to test, which would lower test coverage.
func main() {
	flag.Parse()

	exitCode := cmd.RunFuncWithSignalHandling(run, cmd.RunFlags{
		GracefulShutdownSec:     *gracefulShutdownSec,
		GracefulShutdownMessage: *gracefulShutdownMessage,
		Env:                     constants.APIName,
	})
	os.Exit(exitCode)
}
