package casedb

import "fmt"

// SQLiteDialect implements Dialect for the local single-analyst store.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string          { return "sqlite" }
func (d *SQLiteDialect) DSN(target string) string    { return target }
func (d *SQLiteDialect) Placeholder(index int) string { return "?" }
func (d *SQLiteDialect) UseReturning() bool          { return false }
func (d *SQLiteDialect) SanitizeText(s string) string { return s }

func (d *SQLiteDialect) CreateCasesTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS cases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		device_name TEXT,
		device_id TEXT,
		node_count INT DEFAULT 0,
		opened_at TEXT,
		last_opened TEXT
	)`
}

func (d *SQLiteDialect) CreateNotesTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS node_notes (
		case_id INT NOT NULL,
		node_id TEXT NOT NULL,
		note TEXT,
		UNIQUE(case_id, node_id)
	)`
}

func (d *SQLiteDialect) CreateFlagsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS node_flags (
		case_id INT NOT NULL,
		node_id TEXT NOT NULL,
		flagged INT DEFAULT 0,
		UNIQUE(case_id, node_id)
	)`
}

func (d *SQLiteDialect) CreateIndexSQL(indexName, tableName, column string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", indexName, tableName, column)
}

func (d *SQLiteDialect) InsertCaseSQL() string {
	return `INSERT INTO cases (path, device_name, device_id, node_count, opened_at, last_opened)
		VALUES (?, ?, ?, ?, ?, ?)`
}

func (d *SQLiteDialect) UpsertNoteSQL() string {
	return `INSERT INTO node_notes (case_id, node_id, note) VALUES (?, ?, ?)
		ON CONFLICT(case_id, node_id) DO UPDATE SET note = excluded.note`
}
