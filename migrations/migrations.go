// Package migrations embeds the goose migrations of the system database and
// of every website database.
package migrations

import "embed"

//go:embed system/*.sql website/*.sql
var FS embed.FS
