// Package postgres implements db.Store on pgx. Packs are stored one row per
// pack with the ordered questions in a JSONB column.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizforge/packadmin/internal/db"
	"github.com/quizforge/packadmin/internal/pack"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const foreignKeyViolation = "23503"

// Queries runs the catalog SQL against a pool.
type Queries struct {
	db   DBTX
	pool *pgxpool.Pool
}

var _ db.Store = (*Queries)(nil)

// New wraps a DBTX. Close and Ping are no-ops unless it is a *pgxpool.Pool.
func New(conn DBTX) *Queries {
	q := &Queries{db: conn}
	if pool, ok := conn.(*pgxpool.Pool); ok {
		q.pool = pool
	}
	return q
}

// Connect opens a pool for the given connection string.
func Connect(ctx context.Context, connString string) (*Queries, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return New(pool), nil
}

func (q *Queries) Ping(ctx context.Context) error {
	if q.pool == nil {
		return nil
	}
	return q.pool.Ping(ctx)
}

func (q *Queries) Close() error {
	if q.pool != nil {
		q.pool.Close()
	}
	return nil
}

const listCategories = `SELECT id, name FROM categories ORDER BY created_at, id`

func (q *Queries) ListCategories(ctx context.Context) ([]pack.Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
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

const getCategory = `SELECT id, name FROM categories WHERE id = $1`

func (q *Queries) GetCategory(ctx context.Context, id string) (pack.Category, error) {
	var c pack.Category
	err := q.db.QueryRow(ctx, getCategory, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return pack.Category{}, db.ErrNotFound
	}
	return c, err
}

const insertCategory = `INSERT INTO categories (id, name) VALUES ($1, $2)`

func (q *Queries) InsertCategory(ctx context.Context, c pack.Category) error {
	_, err := q.db.Exec(ctx, insertCategory, c.ID, c.Name)
	return err
}

const (
	renameCategory     = `UPDATE categories SET name = $2 WHERE id = $1`
	renamePackCategory = `UPDATE packs SET category_name = $2, updated_at = now() WHERE category_id = $1`
)

func (q *Queries) RenameCategory(ctx context.Context, id, name string) error {
	return pgx.BeginFunc(ctx, q.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, renameCategory, id, name)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return db.ErrNotFound
		}
		_, err = tx.Exec(ctx, renamePackCategory, id, name)
		return err
	})
}

// Packs go with the category through ON DELETE CASCADE.
const deleteCategory = `DELETE FROM categories WHERE id = $1`

func (q *Queries) DeleteCategory(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, deleteCategory, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

const packColumns = `id, name, description, time_minutes, difficulty, category_id, category_name, questions, version`

const listPacks = `SELECT ` + packColumns + ` FROM packs
WHERE ($1::text = '' OR category_id = $1)
ORDER BY created_at, id`

func (q *Queries) ListPacks(ctx context.Context, categoryID string) ([]pack.Record, error) {
	rows, err := q.db.Query(ctx, listPacks, categoryID)
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

const getPack = `SELECT ` + packColumns + ` FROM packs WHERE id = $1`

func (q *Queries) GetPack(ctx context.Context, id string) (pack.Record, error) {
	rec, err := scanPack(q.db.QueryRow(ctx, getPack, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return pack.Record{}, db.ErrNotFound
	}
	return rec, err
}

const insertPack = `INSERT INTO packs (` + packColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (q *Queries) InsertPack(ctx context.Context, rec pack.Record) error {
	questions, err := json.Marshal(rec.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	_, err = q.db.Exec(ctx, insertPack,
		rec.ID, rec.Name, rec.Description, rec.Time, string(rec.Difficulty),
		rec.CategoryID, rec.CategoryName, questions, rec.Version)
	return mapConstraint(err)
}

const updatePack = `UPDATE packs SET
    name = $2, description = $3, time_minutes = $4, difficulty = $5,
    category_id = $6, category_name = $7, questions = $8, version = $9,
    updated_at = now()
WHERE id = $1 AND version = $10`

const packVersion = `SELECT version FROM packs WHERE id = $1`

func (q *Queries) UpdatePack(ctx context.Context, rec pack.Record, expectedVersion int64) error {
	questions, err := json.Marshal(rec.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	tag, err := q.db.Exec(ctx, updatePack,
		rec.ID, rec.Name, rec.Description, rec.Time, string(rec.Difficulty),
		rec.CategoryID, rec.CategoryName, questions, rec.Version, expectedVersion)
	if err != nil {
		return mapConstraint(err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current int64
	if err := q.db.QueryRow(ctx, packVersion, rec.ID).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return db.ErrNotFound
		}
		return err
	}
	return db.ErrVersionConflict
}

const deletePack = `DELETE FROM packs WHERE id = $1`

func (q *Queries) DeletePack(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, deletePack, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func scanPack(row pgx.Row) (pack.Record, error) {
	var (
		rec        pack.Record
		difficulty string
		questions  []byte
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Description, &rec.Time, &difficulty,
		&rec.CategoryID, &rec.CategoryName, &questions, &rec.Version); err != nil {
		return pack.Record{}, err
	}
	rec.Difficulty = pack.Difficulty(difficulty)
	if err := json.Unmarshal(questions, &rec.Questions); err != nil {
		return pack.Record{}, fmt.Errorf("decode questions for pack %s: %w", rec.ID, err)
	}
	return rec, nil
}

// mapConstraint turns a missing category reference into db.ErrNotFound.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return fmt.Errorf("category: %w", db.ErrNotFound)
	}
	return err
}
