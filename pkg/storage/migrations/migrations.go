// Package migrations embeds the schema migrations shipped with the
// bundled datastore adapters.
package migrations

import "embed"

const SQLiteMigrationDir = "sqlite"

//go:embed sqlite/*.sql
var Embed embed.FS
