// Package migrations embeds the schema. Statements stay within the subset
// shared by postgres and sqlite so repository tests run in memory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
