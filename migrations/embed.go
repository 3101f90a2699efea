// Package migrations holds the SQL schema, versioned as V<n>__<name>.sql.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
