package casedb

// Dialect abstracts the backend-specific SQL for the case store. SQLite
// serves the single-analyst default; PostgreSQL serves a shared team
// history.
type Dialect interface {
	// DriverName returns the database/sql driver name.
	DriverName() string

	// DSN returns the data source name for opening a connection. For
	// SQLite this is the file path; for PostgreSQL a connection string.
	DSN(target string) string

	// Placeholder returns the parameter placeholder for the given
	// 1-based index: "?" for SQLite, "$1", "$2"... for PostgreSQL.
	Placeholder(index int) string

	// UseReturning reports whether inserts must use RETURNING to obtain
	// the generated id instead of LastInsertId.
	UseReturning() bool

	// SanitizeText prepares note/path text for storage. PostgreSQL
	// rejects NUL bytes that SQLite stores fine.
	SanitizeText(s string) string

	// Schema DDL
	CreateCasesTableSQL() string
	CreateNotesTableSQL() string
	CreateFlagsTableSQL() string
	CreateIndexSQL(indexName, tableName, column string) string

	// Statements
	InsertCaseSQL() string
	UpsertNoteSQL() string
}
