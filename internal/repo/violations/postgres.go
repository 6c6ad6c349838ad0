package violations

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	PgUniqueErrCode     = "23505"
	PgForeignKeyErrCode = "23503"
	PgUnknownDatabase   = "3D000"

	pgConnectionClass    = "08"
	pgAuthorizationClass = "28"
)

// IsUniqueConstraint checks if the error is a PostgreSQL unique constraint violation
func IsUniqueConstraint(err error) bool {
	return hasCode(err, PgUniqueErrCode)
}

// IsForeignKey checks if the error is a PostgreSQL foreign key violation
func IsForeignKey(err error) bool {
	return hasCode(err, PgForeignKeyErrCode)
}

// IsUnreachable reports errors that mean the database cannot serve the
// connection at all: connection exceptions, rejected credentials or a missing database.
func IsUnreachable(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgError *pgconn.PgError
	if !errors.As(err, &pgError) {
		return false
	}

	return strings.HasPrefix(pgError.Code, pgConnectionClass) ||
		strings.HasPrefix(pgError.Code, pgAuthorizationClass) ||
		pgError.Code == PgUnknownDatabase
}

func hasCode(err error, code string) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == code
}
