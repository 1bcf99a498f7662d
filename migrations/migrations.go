// Package migrations embeds the SQL migration files so the binary can
// apply them at startup without shipping the directory alongside it.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
