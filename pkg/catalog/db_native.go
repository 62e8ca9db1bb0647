//go:build !cgo_sqlite

package catalog

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// OpenDB opens the catalog database using the pure Go SQLite driver.
func OpenDB(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite", dataSource)
}
