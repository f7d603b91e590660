// Package migrations holds the transcript schema as numbered SQL scripts.
// Files are named NNN_name.up.sql and NNN_name.down.sql; the store applies
// up scripts whose number is above the recorded schema version.
package migrations

import "embed"

// FS holds the migration scripts.
//
//go:embed *.sql
var FS embed.FS
