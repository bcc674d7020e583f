package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/c360studio/acf/scoring"
)

// SQLiteArchive keeps profiles in a single SQLite table, one row per
// scoring run with the profile JSON as payload.
type SQLiteArchive struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates the archive at path.
func OpenSQLite(path string) (*SQLiteArchive, error) {
	if path == "" {
		path = "acf.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		system_id TEXT NOT NULL,
		version TEXT NOT NULL,
		aggregate REAL NOT NULL,
		level TEXT NOT NULL,
		created_at TEXT NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create profiles table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS profiles_system ON profiles (system_id, created_at)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create profiles index: %w", err)
	}
	return &SQLiteArchive{db: db, now: time.Now}, nil
}

// Put archives a profile.
func (a *SQLiteArchive) Put(ctx context.Context, p *scoring.Profile) (Entry, error) {
	e := NewEntry(p, a.now())
	payload, err := json.Marshal(p)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal profile: %w", err)
	}
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO profiles (id, system_id, version, aggregate, level, created_at, payload) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SystemID, e.Version, e.AggregateScore, e.CertificationLevel, e.CreatedAt.Format(timeLayout), payload)
	if err != nil {
		return Entry{}, fmt.Errorf("insert profile: %w", err)
	}
	return e, nil
}

// timeLayout has fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const selectEntry = `SELECT id, system_id, version, aggregate, level, created_at, payload FROM profiles`

// Get returns one archived profile.
func (a *SQLiteArchive) Get(ctx context.Context, id string) (Entry, error) {
	row := a.db.QueryRowContext(ctx, selectEntry+` WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

// History lists a system's archived profiles, oldest first. An empty
// systemID lists every system.
func (a *SQLiteArchive) History(ctx context.Context, systemID string) ([]Entry, error) {
	query, args := selectEntry+` ORDER BY created_at, rowid`, []any(nil)
	if systemID != "" {
		query, args = selectEntry+` WHERE system_id = ? ORDER BY created_at, rowid`, []any{systemID}
	}
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return out, nil
}

// Close releases the database.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e       Entry
		created string
		payload []byte
	)
	if err := s.Scan(&e.ID, &e.SystemID, &e.Version, &e.AggregateScore, &e.CertificationLevel, &created, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan profile: %w", err)
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at: %w", err)
	}
	e.CreatedAt = t
	var p scoring.Profile
	if err := json.Unmarshal(payload, &p); err != nil {
		return Entry{}, fmt.Errorf("decode profile %s: %w", e.ID, err)
	}
	e.Profile = &p
	return e, nil
}
