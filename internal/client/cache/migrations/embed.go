// Package migrations embeds the goose SQL migrations applied when the local
// cache database is opened.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
