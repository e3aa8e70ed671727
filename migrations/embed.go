package migrations

import "embed"

// FS holds the schema migrations, one directory per database backend.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

const (
	SQLiteDir   = "sqlite"
	PostgresDir = "postgres"
)
