package validator

import (
	"errors"

	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/errs"
)

var (
	ErrValidator = errors.New("validation error")
)

// ParseUUID parses id, rejecting the nil UUID.
func ParseUUID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, errs.Wrap(ErrValidator, err)
	}

	if parsed == uuid.Nil {
		return uuid.Nil, errs.Wrapf(ErrValidator, "nil uuid")
	}

	return parsed, nil
}
