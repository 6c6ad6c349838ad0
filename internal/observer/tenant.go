package observer

import (
	"context"
	"log/slog"

	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
)

type TenantObserver struct{}

// Deleting cascades to every website of the tenant and through them to their hostnames.
func (TenantObserver) Deleting(ctx context.Context, s Store, website WebsiteObserver, t *model.Tenant) error {
	websites, err := s.Websites().ListByTenant(ctx, t.ID)
	if err != nil {
		return err
	}

	for i := range websites {
		err = website.Deleting(ctx, s, &websites[i])
		if err != nil {
			return err
		}

		err = s.Websites().Remove(ctx, websites[i].ID)
		if err != nil {
			return err
		}
	}

	log.Info(ctx, "Removed tenant websites",
		slog.String("tenant", t.Name),
		slog.Int("count", len(websites)),
	)

	return nil
}
