package commands

import "errors"

var (
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidTarget      = errors.New("target must be one of system, website or all")
	ErrSingleTarget       = errors.New("target must be system or website")
	ErrNothingToDelete    = errors.New("nothing to delete")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
	ErrRedirectConflict   = errors.New("redirect-to and clear-redirect are mutually exclusive")
	ErrMigrateWebsiteFail = errors.New("website created but its database could not be migrated")
)
