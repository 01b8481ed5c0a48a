// Package migrations embeds the identity store schema.
package migrations

import "embed"

// FS holds the SQL migrations applied on Open.
//
//go:embed *.sql
var FS embed.FS
