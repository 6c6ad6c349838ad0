package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openkcm/tenancy/internal/log"
)

// NewRootCmdWithInfinitySleep creates a new root cobra command with infinite sleep option.
// The command will sleep until ctx is done or a termination signal arrives when the
// --sleep flag is provided, so the CLI can be invoked by exec commands in a running container.
// Every subcommand logs with its command path attached.
func NewRootCmdWithInfinitySleep(
	ctx context.Context,
	use string,
	shortDesc string,
	longDesc string,
) *cobra.Command {
	var sleep bool

	rootCmd := &cobra.Command{
		Use:          use,
		Short:        shortDesc,
		Long:         longDesc,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetContext(log.InjectCommand(cmd.Context(), cmd.CommandPath()))
			return nil
		},

		Run: func(cmd *cobra.Command, _ []string) {
			if sleep {
				infiniteRun(cmd)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&sleep, "sleep", false, "Enable sleep mode")
	rootCmd.SetContext(ctx)

	return rootCmd
}

func infiniteRun(cmd *cobra.Command) {
	cmd.Println("Pod running...")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	cmd.Println("Shutting down gracefully...")
}
