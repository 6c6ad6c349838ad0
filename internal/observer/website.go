package observer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
)

type WebsiteObserver struct {
	autoHostname config.AutoHostname
}

// Created provisions "<slug>.<domain>" for a new website when auto hostnames are
// enabled. The hostname becomes the default when no default exists yet.
func (o WebsiteObserver) Created(ctx context.Context, s Store, w *model.Website) error {
	if !o.autoHostname.Enabled {
		return nil
	}

	err := s.Hostnames().LockDefaults(ctx)
	if err != nil {
		return err
	}

	defaults, err := s.Hostnames().ListDefaults(ctx)
	if err != nil {
		return err
	}

	h := &model.Hostname{
		ID:        uuid.New(),
		WebsiteID: w.ID,
		Hostname:  model.NormalizeHost(w.Slug + "." + o.autoHostname.Domain),
		IsDefault: len(defaults) == 0,
	}

	err = h.Validate()
	if err != nil {
		return err
	}

	log.Info(ctx, "Provisioning hostname for website",
		slog.String("hostname", h.Hostname),
		slog.Bool("default", h.IsDefault),
	)

	return s.Hostnames().Insert(ctx, h)
}

// Deleting cascades to every hostname of the website and clears redirects
// that pointed at them.
func (WebsiteObserver) Deleting(ctx context.Context, s Store, w *model.Website) error {
	hostnames, err := s.Hostnames().ListByWebsite(ctx, w.ID)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(hostnames))
	for _, h := range hostnames {
		ids = append(ids, h.ID)
	}

	if len(ids) > 0 {
		err = s.Hostnames().ClearRedirectsTo(ctx, ids...)
		if err != nil {
			return err
		}
	}

	removed, err := s.Hostnames().DeleteByWebsite(ctx, w.ID)
	if err != nil {
		return err
	}

	log.Debug(ctx, "Removed website hostnames",
		slog.String("website", w.Slug),
		slog.Int64("count", removed),
	)

	return nil
}
