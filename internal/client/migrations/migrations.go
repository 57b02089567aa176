// Package migrations embeds the goose migrations of the local client profile.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
