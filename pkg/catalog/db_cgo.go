//go:build cgo_sqlite

package catalog

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// OpenDB opens the catalog database using the cgo SQLite driver.
func OpenDB(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite3", dataSource)
}
