package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/0x6d61/scandash/internal/scan"
)

// SQLiteStore implements Store using SQLite via modernc.org/sqlite (pure Go).
// Records are kept as JSON; insertion order comes from an autoincrement
// sequence column.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens a SQLite-backed store. Open always passes ":memory:";
// other DSNs are accepted for tests.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("registry: open database: %w", err)
	}
	// Every connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("registry: ping database: %w", err)
	}

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS scans (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT NOT NULL UNIQUE,
			domain      TEXT NOT NULL DEFAULT '',
			score       INTEGER NOT NULL DEFAULT 0,
			risk        TEXT NOT NULL DEFAULT '',
			record_json TEXT NOT NULL,
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("registry: create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Insert stores s. A conflicting ID leaves the table untouched and returns
// ErrDuplicateID.
func (s *SQLiteStore) Insert(ctx context.Context, rec *scan.Scan) error {
	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("registry: marshal scan: %w", err)
	}

	query := `
		INSERT INTO scans (id, domain, score, risk, record_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.Domain,
		rec.SecurityScore,
		string(rec.Risk),
		string(recordJSON),
	)
	if err != nil {
		return fmt.Errorf("registry: insert scan: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("registry: rows affected: %w", err)
	}
	if n == 0 {
		return ErrDuplicateID
	}
	return nil
}

// List returns every record ordered by insertion sequence.
func (s *SQLiteStore) List(ctx context.Context) ([]*scan.Scan, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record_json FROM scans ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("registry: list scans: %w", err)
	}
	defer rows.Close()

	out := []*scan.Scan{}
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("registry: scan row: %w", err)
		}
		var rec scan.Scan
		if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
			return nil, fmt.Errorf("registry: unmarshal scan: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("registry: iterate rows: %w", err)
	}
	return out, nil
}

// Find returns the record with the given ID, or (nil, nil) if absent.
func (s *SQLiteStore) Find(ctx context.Context, id string) (*scan.Scan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT record_json FROM scans WHERE id = ?`, id)

	var recordJSON string
	if err := row.Scan(&recordJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("registry: scan row: %w", err)
	}

	var rec scan.Scan
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		return nil, fmt.Errorf("registry: unmarshal scan: %w", err)
	}
	return &rec, nil
}

// Remove deletes a record by ID.
func (s *SQLiteStore) Remove(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM scans WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("registry: delete scan: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("registry: rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scans`).Scan(&n); err != nil {
		return 0, fmt.Errorf("registry: count scans: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
