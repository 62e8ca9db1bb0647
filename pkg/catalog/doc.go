/*
Package catalog builds the problem catalog from source questions and persists
it, both as the JSON document the page generator reads and, optionally, as a
SQLite mirror that supports filtered queries and records page renders.

The SQLite driver is chosen at build time: the pure Go modernc.org/sqlite
driver by default, or github.com/mattn/go-sqlite3 with the cgo_sqlite tag.
*/
package catalog
