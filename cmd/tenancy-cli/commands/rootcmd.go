package commands

import (
	"context"

	"github.com/spf13/cobra"

	cliUtils "github.com/openkcm/tenancy/utils/cli"
)

func (f *CommandFactory) NewRootCmd(ctx context.Context) *cobra.Command {
	return cliUtils.NewRootCmdWithInfinitySleep(
		ctx,
		"tenancy",
		"Tenancy CLI Application",
		"Tenancy is a CLI tool to manage tenants, their websites and hostnames, supporting: "+
			"first time setup, "+
			"migrating the system database and every website database.",
	)
}
