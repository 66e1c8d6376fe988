package migrations

import "embed"

// FS contains embedded SQLite migrations for the artifact archive.
//
//go:embed *.sql
var FS embed.FS
