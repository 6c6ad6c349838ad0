package commands

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openkcm/tenancy/internal/model"
)

// NewHostnameCmd creates a Cobra command group that manages hostnames.
func (f *CommandFactory) NewHostnameCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hostname",
		Short: "Manage hostnames",
	}

	cmd.AddCommand(
		f.newCreateHostnameCmd(ctx),
		f.newListHostnamesCmd(ctx),
		f.newUpdateHostnameCmd(ctx),
		f.newDeleteHostnameCmd(ctx),
	)

	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) newCreateHostnameCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use: "create",
		Short: "Create a new hostname. Usage: tenancy hostname create --website-id [website id] --hostname [host] " +
			"[--default] [--prefer-https] [--redirect-to hostname id]",
		Args: cobra.ExactArgs(0),

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, _ []string) error {
			rawWebsite, _ := cmd.Flags().GetString("website-id")
			host, _ := cmd.Flags().GetString("hostname")
			isDefault, _ := cmd.Flags().GetBool("default")
			preferHTTPS, _ := cmd.Flags().GetBool("prefer-https")

			websiteID, err := parseID(rawWebsite)
			if err != nil {
				return err
			}

			attrs := model.HostnameAttributes{
				WebsiteID:   &websiteID,
				Hostname:    &host,
				IsDefault:   &isDefault,
				PreferHTTPS: &preferHTTPS,
			}

			attrs.RedirectTo, err = redirectFromFlags(cmd)
			if err != nil {
				return err
			}

			hostname, err := f.r.Hostnames.Create(cmd.Context(), attrs)
			if err != nil {
				cmd.PrintErrf("Failed to create hostname: %v\n", err)
				return err
			}

			return printYAML(cmd, toHostnameRecord(hostname))
		},
	}

	cmd.Flags().String("website-id", "", "Website the hostname routes to")
	cmd.Flags().String("hostname", "", "Host name, without port")
	cmd.Flags().Bool("default", false, "Make this the default hostname")
	cmd.Flags().Bool("prefer-https", false, "Redirect plain requests to https")
	cmd.Flags().String("redirect-to", "", "Hostname id requests are redirected to")
	mustRequire(cmd, "website-id", "hostname")

	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) newListHostnamesCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hostnames. Usage: tenancy hostname list [--website-id website id]",

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rawWebsite, _ := cmd.Flags().GetString("website-id")

			var (
				hostnames []model.Hostname
				err       error
			)

			if rawWebsite == "" {
				hostnames, err = f.r.Hostnames.List(ctx)
			} else {
				var websiteID uuid.UUID

				websiteID, err = parseID(rawWebsite)
				if err != nil {
					return err
				}

				hostnames, err = f.r.Hostnames.ListByWebsite(ctx, websiteID)
			}

			if err != nil {
				cmd.PrintErrf("failed to get hostnames")
				return err
			}

			records := make([]hostnameRecord, 0, len(hostnames))
			for i := range hostnames {
				records = append(records, toHostnameRecord(&hostnames[i]))
			}

			return printYAML(cmd, records)
		},
	}

	cmd.Flags().String("website-id", "", "Only list hostnames of this website")
	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) newUpdateHostnameCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use: "update",
		Short: "Update a hostname. Usage: tenancy hostname update --id [hostname id] [--default] [--prefer-https] " +
			"[--redirect-to hostname id | --clear-redirect]",
		Args: cobra.ExactArgs(0),

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, _ := cmd.Flags().GetString("id")

			id, err := parseID(raw)
			if err != nil {
				return err
			}

			attrs, err := hostnameUpdateFromFlags(cmd)
			if err != nil {
				return err
			}

			hostname, err := f.r.Hostnames.Find(cmd.Context(), id)
			if err != nil {
				cmd.PrintErrf("Failed to find hostname %s: %v\n", raw, err)
				return err
			}

			hostname, err = f.r.Hostnames.Update(cmd.Context(), hostname, attrs)
			if err != nil {
				cmd.PrintErrf("Failed to update hostname: %v\n", err)
				return err
			}

			return printYAML(cmd, toHostnameRecord(hostname))
		},
	}

	cmd.Flags().StringP("id", "i", "", "Hostname id")
	cmd.Flags().Bool("default", false, "Make this the default hostname")
	cmd.Flags().Bool("prefer-https", false, "Redirect plain requests to https")
	cmd.Flags().String("redirect-to", "", "Hostname id requests are redirected to")
	cmd.Flags().Bool("clear-redirect", false, "Remove the redirect")
	mustRequire(cmd, "id")

	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) newDeleteHostnameCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a hostname. Usage: tenancy hostname delete --id [hostname id]",
		Args:  cobra.ExactArgs(0),

		//nolint:contextcheck
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, _ := cmd.Flags().GetString("id")

			id, err := parseID(raw)
			if err != nil {
				return err
			}

			hostname, err := f.r.Hostnames.Find(cmd.Context(), id)
			if err != nil {
				cmd.PrintErrf("Failed to find hostname %s: %v\n", raw, err)
				return err
			}

			deleted, err := f.r.Hostnames.Delete(cmd.Context(), hostname)
			if err != nil {
				cmd.PrintErrf("Failed to delete hostname: %v\n", err)
				return err
			}

			if !deleted {
				return ErrNothingToDelete
			}

			cmd.Printf("Hostname deleted: %s\n", hostname.Hostname)

			return nil
		},
	}

	cmd.Flags().StringP("id", "i", "", "Hostname id")
	mustRequire(cmd, "id")

	cmd.SetContext(ctx)

	return cmd
}

func redirectFromFlags(cmd *cobra.Command) (*uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("redirect-to")
	if raw == "" {
		return nil, nil //nolint:nilnil
	}

	id, err := parseID(raw)
	if err != nil {
		return nil, err
	}

	return &id, nil
}

// hostnameUpdateFromFlags only carries the flags given on the command line.
func hostnameUpdateFromFlags(cmd *cobra.Command) (model.HostnameAttributes, error) {
	var attrs model.HostnameAttributes

	changed := false

	if cmd.Flags().Changed("default") {
		v, _ := cmd.Flags().GetBool("default")
		attrs.IsDefault = &v
		changed = true
	}

	if cmd.Flags().Changed("prefer-https") {
		v, _ := cmd.Flags().GetBool("prefer-https")
		attrs.PreferHTTPS = &v
		changed = true
	}

	redirect, err := redirectFromFlags(cmd)
	if err != nil {
		return attrs, err
	}

	attrs.ClearRedirect, _ = cmd.Flags().GetBool("clear-redirect")

	if redirect != nil && attrs.ClearRedirect {
		return attrs, ErrRedirectConflict
	}

	attrs.RedirectTo = redirect
	changed = changed || redirect != nil || attrs.ClearRedirect

	if !changed {
		return attrs, ErrNoFieldsToUpdate
	}

	return attrs, nil
}
