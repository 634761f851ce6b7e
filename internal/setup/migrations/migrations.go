// Package migrations embeds the backend schema applied by setup-database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
