package migrations

import "embed"

// FS contains embedded SQLite migrations for valuation storage.
//
//go:embed *.sql
var FS embed.FS
