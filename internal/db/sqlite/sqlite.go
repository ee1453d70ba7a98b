// Package sqlite implements db.Store on a single SQLite file for local
// single-admin setups.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/quizforge/packadmin/internal/db"
	"github.com/quizforge/packadmin/internal/pack"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS packs (
    id            TEXT PRIMARY KEY,
    category_id   TEXT NOT NULL,
    category_name TEXT NOT NULL,
    name          TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    time_minutes  INTEGER NOT NULL DEFAULT 0,
    difficulty    TEXT NOT NULL DEFAULT '',
    questions     TEXT NOT NULL DEFAULT '[]',
    version       INTEGER NOT NULL DEFAULT 1,
    created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
    updated_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
    FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS packs_category_id_idx ON packs (category_id);
`

// Store is a db.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

var _ db.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(ctx context.Context, path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps PRAGMA foreign_keys in effect for every statement.
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: conn}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *Store) Close() error                   { return s.db.Close() }

func (s *Store) ListCategories(ctx context.Context) ([]pack.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY created_at, rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []pack.Category{}
	for rows.Next() {
		var c pack.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id string) (pack.Category, error) {
	var c pack.Category
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM categories WHERE id = ?", id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return pack.Category{}, db.ErrNotFound
	}
	return c, err
}

func (s *Store) InsertCategory(ctx context.Context, c pack.Category) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO categories (id, name) VALUES (?, ?)", c.ID, c.Name)
	return err
}

func (s *Store) RenameCategory(ctx context.Context, id, name string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE categories SET name = ? WHERE id = ?", name, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return db.ErrNotFound
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE packs SET category_name = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now') WHERE category_id = ?",
			name, id)
		return err
	})
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM packs WHERE category_id = ?", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return db.ErrNotFound
		}
		return nil
	})
}

const packColumns = "id, name, description, time_minutes, difficulty, category_id, category_name, questions, version"

func (s *Store) ListPacks(ctx context.Context, categoryID string) ([]pack.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+packColumns+" FROM packs WHERE (? = '' OR category_id = ?) ORDER BY created_at, rowid",
		categoryID, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []pack.Record{}
	for rows.Next() {
		rec, err := scanPack(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) GetPack(ctx context.Context, id string) (pack.Record, error) {
	rec, err := scanPack(s.db.QueryRowContext(ctx, "SELECT "+packColumns+" FROM packs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return pack.Record{}, db.ErrNotFound
	}
	return rec, err
}

func (s *Store) InsertPack(ctx context.Context, rec pack.Record) error {
	questions, err := json.Marshal(rec.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := categoryExists(ctx, tx, rec.CategoryID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO packs ("+packColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			rec.ID, rec.Name, rec.Description, rec.Time, string(rec.Difficulty),
			rec.CategoryID, rec.CategoryName, string(questions), rec.Version)
		return err
	})
}

func (s *Store) UpdatePack(ctx context.Context, rec pack.Record, expectedVersion int64) error {
	questions, err := json.Marshal(rec.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var current int64
		err := tx.QueryRowContext(ctx, "SELECT version FROM packs WHERE id = ?", rec.ID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return db.ErrNotFound
		}
		if err != nil {
			return err
		}
		if current != expectedVersion {
			return db.ErrVersionConflict
		}
		if err := categoryExists(ctx, tx, rec.CategoryID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE packs SET
    name = ?, description = ?, time_minutes = ?, difficulty = ?,
    category_id = ?, category_name = ?, questions = ?, version = ?,
    updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
WHERE id = ?`,
			rec.Name, rec.Description, rec.Time, string(rec.Difficulty),
			rec.CategoryID, rec.CategoryName, string(questions), rec.Version, rec.ID)
		return err
	})
}

func (s *Store) DeletePack(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM packs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func categoryExists(ctx context.Context, tx *sql.Tx, id string) error {
	var found string
	err := tx.QueryRowContext(ctx, "SELECT id FROM categories WHERE id = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("category: %w", db.ErrNotFound)
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPack(row scanner) (pack.Record, error) {
	var (
		rec        pack.Record
		difficulty string
		questions  string
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Description, &rec.Time, &difficulty,
		&rec.CategoryID, &rec.CategoryName, &questions, &rec.Version); err != nil {
		return pack.Record{}, err
	}
	rec.Difficulty = pack.Difficulty(difficulty)
	if err := json.Unmarshal([]byte(questions), &rec.Questions); err != nil {
		return pack.Record{}, fmt.Errorf("decode questions for pack %s: %w", rec.ID, err)
	}
	return rec, nil
}
