// Package casedb keeps a small history of loaded cases plus per-node
// examiner notes and flags, over SQLite for a single analyst or
// PostgreSQL for a shared store. Only supporting state lives here; the
// story document itself is never persisted.
package casedb

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DB implements Store over any Dialect.
type DB struct {
	target  string
	conn    *sql.DB
	dialect Dialect
}

// Open connects to the case store and ensures the schema exists.
// For SQLite, target is the .db file path; for PostgreSQL, a connection
// string.
func Open(driver, target string) (*DB, error) {
	var d Dialect
	switch driver {
	case "sqlite":
		d = &SQLiteDialect{}
	case "postgres":
		d = &PostgresDialect{}
	default:
		return nil, fmt.Errorf("unsupported case store driver: %s", driver)
	}

	conn, err := sql.Open(d.DriverName(), d.DSN(target))
	if err != nil {
		return nil, fmt.Errorf("opening case store: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to case store: %w", err)
	}

	db := &DB{target: target, conn: conn, dialect: d}
	if err := db.createSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating case store schema: %w", err)
	}
	return db, nil
}

func (db *DB) createSchema() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, ddl := range []string{
		db.dialect.CreateCasesTableSQL(),
		db.dialect.CreateNotesTableSQL(),
		db.dialect.CreateFlagsTableSQL(),
		db.dialect.CreateIndexSQL("cases_path_idx", "cases", "path"),
		db.dialect.CreateIndexSQL("node_notes_case_idx", "node_notes", "case_id"),
		db.dialect.CreateIndexSQL("node_flags_case_idx", "node_flags", "case_id"),
	} {
		if _, err := tx.Exec(ddl); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close closes the store connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Target returns the path or connection string the store was opened with.
func (db *DB) Target() string {
	return db.target
}

// RecordCase inserts a new history row, or touches the existing row for
// the same path, and returns the case id.
func (db *DB) RecordCase(c *Case) (int64, error) {
	now := time.Now().UTC().Format("2006-01-02 15:04:05")
	path := db.dialect.SanitizeText(c.Path)

	var existing int64
	err := db.conn.QueryRow(
		"SELECT id FROM cases WHERE path = "+db.dialect.Placeholder(1)+" ORDER BY id DESC LIMIT 1",
		path,
	).Scan(&existing)
	if err == nil {
		_, err = db.conn.Exec(
			"UPDATE cases SET last_opened = "+db.dialect.Placeholder(1)+
				", node_count = "+db.dialect.Placeholder(2)+
				" WHERE id = "+db.dialect.Placeholder(3),
			now, c.NodeCount, existing,
		)
		if err != nil {
			return 0, fmt.Errorf("touching case: %w", err)
		}
		c.ID = existing
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("looking up case: %w", err)
	}

	args := []interface{}{
		path,
		db.dialect.SanitizeText(c.DeviceName),
		db.dialect.SanitizeText(c.DeviceID),
		c.NodeCount, now, now,
	}
	if db.dialect.UseReturning() {
		var id int64
		if err := db.conn.QueryRow(db.dialect.InsertCaseSQL(), args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("recording case: %w", err)
		}
		c.ID = id
		return id, nil
	}
	res, err := db.conn.Exec(db.dialect.InsertCaseSQL(), args...)
	if err != nil {
		return 0, fmt.Errorf("recording case: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recording case: %w", err)
	}
	c.ID = id
	return id, nil
}

// RecentCases returns up to limit history rows, most recently opened
// first.
func (db *DB) RecentCases(limit int) ([]Case, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(fmt.Sprintf(
		"SELECT id, path, COALESCE(device_name, ''), COALESCE(device_id, ''), node_count, opened_at, last_opened "+
			"FROM cases ORDER BY last_opened DESC LIMIT %d", limit))
	if err != nil {
		return nil, fmt.Errorf("querying recent cases: %w", err)
	}
	defer rows.Close()

	var cases []Case
	for rows.Next() {
		var c Case
		if err := rows.Scan(&c.ID, &c.Path, &c.DeviceName, &c.DeviceID, &c.NodeCount, &c.OpenedAt, &c.LastOpened); err != nil {
			return nil, fmt.Errorf("scanning case row: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// SaveNote stores or replaces the examiner note for one node.
func (db *DB) SaveNote(caseID int64, nodeID, text string) error {
	_, err := db.conn.Exec(db.dialect.UpsertNoteSQL(), caseID, nodeID, db.dialect.SanitizeText(text))
	return err
}

// Notes returns the notes of a case.
func (db *DB) Notes(caseID int64) ([]Note, error) {
	rows, err := db.conn.Query(
		"SELECT node_id, COALESCE(note, '') FROM node_notes WHERE case_id = "+db.dialect.Placeholder(1),
		caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.NodeID, &n.Text); err != nil {
			return nil, fmt.Errorf("scanning note row: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// ToggleFlag flips the flag on one node and returns the new state.
func (db *DB) ToggleFlag(caseID int64, nodeID string) (bool, error) {
	p := db.dialect.Placeholder
	var flagged int64
	err := db.conn.QueryRow(
		"SELECT flagged FROM node_flags WHERE case_id = "+p(1)+" AND node_id = "+p(2),
		caseID, nodeID,
	).Scan(&flagged)
	switch {
	case err == sql.ErrNoRows:
		_, err = db.conn.Exec(
			"INSERT INTO node_flags (case_id, node_id, flagged) VALUES ("+p(1)+", "+p(2)+", 1)",
			caseID, nodeID,
		)
		if err != nil {
			return false, err
		}
		return true, nil
	case err != nil:
		return false, err
	}

	next := int64(1)
	if flagged == 1 {
		next = 0
	}
	_, err = db.conn.Exec(
		"UPDATE node_flags SET flagged = "+p(1)+" WHERE case_id = "+p(2)+" AND node_id = "+p(3),
		next, caseID, nodeID,
	)
	if err != nil {
		return false, err
	}
	return next == 1, nil
}

// Flags returns the ids of every flagged node of a case.
func (db *DB) Flags(caseID int64) ([]string, error) {
	rows, err := db.conn.Query(
		"SELECT node_id FROM node_flags WHERE case_id = "+db.dialect.Placeholder(1)+" AND flagged = 1",
		caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying flags: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning flag row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
