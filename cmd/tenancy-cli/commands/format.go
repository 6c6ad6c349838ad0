package commands

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/utils/validator"
)

type tenantRecord struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Email     string    `yaml:"email,omitempty"`
	CreatedAt time.Time `yaml:"createdAt"`
}

// websiteRecord leaves out the database password.
type websiteRecord struct {
	ID       string `yaml:"id"`
	TenantID string `yaml:"tenantId"`
	Slug     string `yaml:"slug"`
	Active   bool   `yaml:"active"`
	Database string `yaml:"database"`
}

type hostnameRecord struct {
	ID          string `yaml:"id"`
	WebsiteID   string `yaml:"websiteId"`
	Hostname    string `yaml:"hostname"`
	IsDefault   bool   `yaml:"isDefault"`
	PreferHTTPS bool   `yaml:"preferHttps"`
	RedirectTo  string `yaml:"redirectTo,omitempty"`
}

func toTenantRecord(t *model.Tenant) tenantRecord {
	return tenantRecord{
		ID:        t.ID.String(),
		Name:      t.Name,
		Email:     t.Email,
		CreatedAt: t.CreatedAt,
	}
}

func toWebsiteRecord(w *model.Website) websiteRecord {
	return websiteRecord{
		ID:       w.ID.String(),
		TenantID: w.TenantID.String(),
		Slug:     w.Slug,
		Active:   w.Active,
		Database: w.DatabaseConfig().String(),
	}
}

func toHostnameRecord(h *model.Hostname) hostnameRecord {
	r := hostnameRecord{
		ID:          h.ID.String(),
		WebsiteID:   h.WebsiteID.String(),
		Hostname:    h.Hostname,
		IsDefault:   h.IsDefault,
		PreferHTTPS: h.PreferHTTPS,
	}

	if h.RedirectTo != nil {
		r.RedirectTo = h.RedirectTo.String()
	}

	return r
}

// printYAML writes v as a YAML document to the command output.
func printYAML(cmd *cobra.Command, v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}

	cmd.Print("---\n" + string(out))

	return nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := validator.ParseUUID(raw)
	if err != nil {
		return uuid.Nil, errs.Wrap(ErrInvalidID, err)
	}

	return id, nil
}

func mustRequire(cmd *cobra.Command, flags ...string) {
	for _, flag := range flags {
		err := cmd.MarkFlagRequired(flag)
		if err != nil {
			cmd.PrintErrf("failed to mark flag '%s' as required: %v\n", flag, err)
		}
	}
}
