package commands

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/tenancy/internal/model"
)

const (
	flagDBHost     = "db-host"
	flagDBPort     = "db-port"
	flagDBName     = "db-name"
	flagDBUser     = "db-user"
	flagDBPassword = "db-password"
	flagDBSchema   = "db-schema"
	flagDBSSLMode  = "db-sslmode"
)

func addDatabaseFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagDBHost, "", "Website database host")
	cmd.Flags().String(flagDBPort, "5432", "Website database port")
	cmd.Flags().String(flagDBName, "", "Website database name")
	cmd.Flags().String(flagDBUser, "", "Website database user")
	cmd.Flags().String(flagDBPassword, "", "Website database password")
	cmd.Flags().String(flagDBSchema, "", "Website database schema, defaults to the website slug")
	cmd.Flags().String(flagDBSSLMode, "", "Website database sslmode")
}

func databaseFromFlags(cmd *cobra.Command, slug string) model.DatabaseConfig {
	cfg := model.DatabaseConfig{}
	cfg.Host, _ = cmd.Flags().GetString(flagDBHost)
	cfg.Port, _ = cmd.Flags().GetString(flagDBPort)
	cfg.Name, _ = cmd.Flags().GetString(flagDBName)
	cfg.User, _ = cmd.Flags().GetString(flagDBUser)
	cfg.Password, _ = cmd.Flags().GetString(flagDBPassword)
	cfg.Schema, _ = cmd.Flags().GetString(flagDBSchema)
	cfg.SSLMode, _ = cmd.Flags().GetString(flagDBSSLMode)

	if cfg.Schema == "" {
		cfg.Schema = slug
	}

	return cfg
}
