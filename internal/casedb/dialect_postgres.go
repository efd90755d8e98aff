package casedb

import (
	"fmt"
	"strings"
)

// PostgresDialect implements Dialect for a shared team case store.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string       { return "pgx" }
func (d *PostgresDialect) DSN(target string) string { return target }
func (d *PostgresDialect) UseReturning() bool       { return true }

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// SanitizeText strips NUL bytes; PostgreSQL rejects them with "invalid
// byte sequence for encoding UTF8" while SQLite stores them fine.
func (d *PostgresDialect) SanitizeText(s string) string {
	if strings.ContainsRune(s, '\x00') {
		return strings.ReplaceAll(s, "\x00", "")
	}
	return s
}

func (d *PostgresDialect) CreateCasesTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS cases (
		id BIGSERIAL PRIMARY KEY,
		path TEXT NOT NULL,
		device_name TEXT,
		device_id TEXT,
		node_count INT DEFAULT 0,
		opened_at TEXT,
		last_opened TEXT
	)`
}

func (d *PostgresDialect) CreateNotesTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS node_notes (
		case_id BIGINT NOT NULL,
		node_id TEXT NOT NULL,
		note TEXT,
		UNIQUE(case_id, node_id)
	)`
}

func (d *PostgresDialect) CreateFlagsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS node_flags (
		case_id BIGINT NOT NULL,
		node_id TEXT NOT NULL,
		flagged INT DEFAULT 0,
		UNIQUE(case_id, node_id)
	)`
}

func (d *PostgresDialect) CreateIndexSQL(indexName, tableName, column string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", indexName, tableName, column)
}

func (d *PostgresDialect) InsertCaseSQL() string {
	return `INSERT INTO cases (path, device_name, device_id, node_count, opened_at, last_opened)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
}

func (d *PostgresDialect) UpsertNoteSQL() string {
	return `INSERT INTO node_notes (case_id, node_id, note) VALUES ($1, $2, $3)
		ON CONFLICT(case_id, node_id) DO UPDATE SET note = excluded.note`
}
