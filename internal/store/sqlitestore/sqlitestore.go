// Package sqlitestore keeps every collection in a single documents
// table, one JSON document per row, and pushes equality filters into
// SQL with json_extract.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // cgo-free driver, registers as "sqlite"

	"github.com/weeklygoals/weekly-goals-be/internal/store"
)

// Store is a SQLite-backed store.Store.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database file and applies the schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id         TEXT NOT NULL,
		doc        TEXT NOT NULL,
		PRIMARY KEY (collection, id)
	);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

func (s *Store) Collection(name string) store.Collection {
	return &collection{db: s.db, name: name}
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

type collection struct {
	db   *sql.DB
	name string
}

func (c *collection) Get(ctx context.Context, id string) (map[string]any, error) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE collection = ? AND id = ?`,
		c.name, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}
	return parse(id, raw)
}

func (c *collection) Find(ctx context.Context, filter store.Filter) ([]map[string]any, error) {
	query := `SELECT id, doc FROM documents WHERE collection = ?`
	args := []any{c.name}
	for field, value := range filter {
		query += ` AND json_extract(doc, ?) = ?`
		args = append(args, "$."+field, bindValue(value))
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	defer rows.Close()

	var docs []map[string]any
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("querying collection: %w", err)
		}
		doc, err := parse(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (c *collection) Put(ctx context.Context, id string, doc map[string]any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", id, err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES (?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET doc = excluded.doc`,
		c.name, id, string(raw),
	)
	if err != nil {
		return fmt.Errorf("writing record %s: %w", id, err)
	}
	return nil
}

func (c *collection) Delete(ctx context.Context, id string) (bool, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		c.name, id,
	)
	if err != nil {
		return false, fmt.Errorf("deleting record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting record %s: %w", id, err)
	}
	return n > 0, nil
}

func parse(id, raw string) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", id, err)
	}
	return doc, nil
}

// bindValue maps filter values to how json_extract surfaces them:
// JSON booleans come back as integers 0/1.
func bindValue(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return v
}
