// Package migrations holds the versioned SQL schema for the waitlist store.
package migrations

import "embed"

// FS contains the embedded golang-migrate files. The SQL is portable across postgres and sqlite.
//
//go:embed *.sql
var FS embed.FS
