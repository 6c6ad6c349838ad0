package observer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/repo"
)

type HostnameObserver struct{}

// Saving runs before a hostname is inserted or updated.
func (HostnameObserver) Saving(ctx context.Context, s Store, h *model.Hostname) error {
	_, err := s.Websites().Find(ctx, h.WebsiteID)
	if repo.IsNotFound(err) {
		return repo.ErrUnknownWebsite
	}

	if err != nil {
		return err
	}

	err = checkMove(ctx, s, h)
	if err != nil {
		return err
	}

	if h.RedirectTo != nil {
		err = checkRedirect(ctx, s, h)
		if err != nil {
			return err
		}
	}

	if h.IsDefault {
		return s.Hostnames().LockDefaults(ctx)
	}

	return nil
}

// checkMove keeps an update from taking the last hostname away from an active website.
func checkMove(ctx context.Context, s Store, h *model.Hostname) error {
	stored, err := s.Hostnames().Find(ctx, h.ID)
	if repo.IsNotFound(err) {
		return nil
	}

	if err != nil {
		return err
	}

	if stored.WebsiteID == h.WebsiteID {
		return nil
	}

	last, err := lastOfActiveWebsite(ctx, s, stored.WebsiteID)
	if err != nil {
		return err
	}

	if last {
		return repo.ErrLastHostname
	}

	return nil
}

// checkRedirect follows the redirect chain starting at h and rejects it when
// it leads back to h.
func checkRedirect(ctx context.Context, s Store, h *model.Hostname) error {
	visited := map[uuid.UUID]bool{h.ID: true}
	next := *h.RedirectTo

	for hop := 0; ; hop++ {
		if visited[next] {
			return errs.Wrapf(errs.ErrInvalidTenantData, fmt.Sprintf("redirect of %s leads back to itself", h.Hostname))
		}

		visited[next] = true

		target, err := s.Hostnames().Find(ctx, next)
		if repo.IsNotFound(err) && hop == 0 {
			return repo.ErrUnknownRedirect
		}

		if repo.IsNotFound(err) {
			return nil
		}

		if err != nil {
			return err
		}

		if target.RedirectTo == nil {
			return nil
		}

		next = *target.RedirectTo
	}
}

// Saved runs after a hostname is written and keeps at most one default hostname.
func (HostnameObserver) Saved(ctx context.Context, s Store, h *model.Hostname) error {
	if !h.IsDefault {
		return nil
	}

	defaults, err := s.Hostnames().ListDefaults(ctx)
	if err != nil {
		return err
	}

	for _, d := range defaults {
		if d.ID == h.ID {
			continue
		}

		log.Warn(ctx, "Demoting previous default hostname",
			log.ErrorAttr(errs.ErrDuplicateDefaultHostname),
			slog.String("demoted", d.Hostname),
			slog.String("default", h.Hostname),
		)

		err = s.Hostnames().SetDefault(ctx, d.ID, false)
		if err != nil {
			return err
		}
	}

	return nil
}

// Deleting runs before a single hostname is deleted. Cascades from websites
// do not pass through here.
func (HostnameObserver) Deleting(ctx context.Context, s Store, h *model.Hostname) error {
	last, err := lastOfActiveWebsite(ctx, s, h.WebsiteID)
	if err != nil {
		return err
	}

	if last {
		return repo.ErrLastHostname
	}

	if h.IsDefault {
		log.Warn(ctx, "Deleting the default hostname, unmatched hosts will stay unresolved",
			slog.String("hostname", h.Hostname),
		)
	}

	return s.Hostnames().ClearRedirectsTo(ctx, h.ID)
}

// lastOfActiveWebsite reports whether the website is active and keeps at most
// one hostname.
func lastOfActiveWebsite(ctx context.Context, s Store, websiteID uuid.UUID) (bool, error) {
	website, err := s.Websites().Find(ctx, websiteID)
	if repo.IsNotFound(err) {
		return false, nil
	}

	if err != nil || !website.Active {
		return false, err
	}

	siblings, err := s.Hostnames().ListByWebsite(ctx, websiteID)
	if err != nil {
		return false, err
	}

	return len(siblings) <= 1, nil
}
