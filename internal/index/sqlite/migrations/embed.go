// Package migrations embeds SQL migration files for the index store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
