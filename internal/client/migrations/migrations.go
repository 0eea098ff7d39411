// Package migrations embeds the goose migrations of the local POS store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
