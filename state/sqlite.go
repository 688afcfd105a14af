package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

const kSQLiteSchema = `CREATE TABLE IF NOT EXISTS track_state (
	icao TEXT PRIMARY KEY,
	doc  TEXT NOT NULL
)`

// SQLiteStore keeps one row per aircraft, each holding that aircraft's TrackState as JSON.
// A save replaces the whole table inside one transaction, so readers see either the old
// state or the new one.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(kSQLiteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema in %s: %w", path, err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) String() string { return "sqlite:" + s.path }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Load(ctx context.Context) (State, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT icao, doc FROM track_state`)
	if err != nil {
		return State{}, fmt.Errorf("query track_state: %w", err)
	}
	defer rows.Close()

	out := State{}
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return State{}, fmt.Errorf("scan track_state: %w", err)
		}
		ts := TrackState{}
		if err := json.Unmarshal([]byte(doc), &ts); err != nil {
			continue // a bad row just means we forget that aircraft
		}
		out[id] = &ts
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, st State) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM track_state`); err != nil {
		return fmt.Errorf("clear track_state: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO track_state (icao, doc) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for id, ts := range st {
		if ts == nil {
			continue
		}
		var doc []byte
		if doc, err = json.Marshal(ts); err != nil {
			return fmt.Errorf("encode %s: %w", id, err)
		}
		if _, err = stmt.ExecContext(ctx, id, string(doc)); err != nil {
			return fmt.Errorf("insert %s: %w", id, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
