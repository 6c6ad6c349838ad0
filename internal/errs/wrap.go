package errs

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the tenancy pipeline. Callers match them with errors.Is.
var (
	// ErrUnresolvedTenant means no hostname matched and no default applies.
	// It is recoverable: routes that permit it run in tenant-less mode.
	ErrUnresolvedTenant = errors.New("unresolved tenant")

	// ErrTenantDatabaseUnavailable aborts the current request before any
	// tenant scoped query runs.
	ErrTenantDatabaseUnavailable = errors.New("tenant database unavailable")

	// ErrInvalidTenantData is returned synchronously from create and update.
	ErrInvalidTenantData = errors.New("invalid tenant data")

	// ErrDuplicateDefaultHostname marks an integrity violation that the
	// hostname observer resolves by demoting older defaults.
	ErrDuplicateDefaultHostname = errors.New("duplicate default hostname")
)

func Wrap(base, ext error) error {
	if ext == nil {
		return base
	}

	return fmt.Errorf("%w: %w", base, ext)
}

func Wrapf(base error, str string) error {
	return fmt.Errorf("%w: %s", base, str)
}

// IsAny reports whether err matches any of targets.
func IsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
