// Package filestore persists one JSON document per record at
// <root>/<collection>/<id>.json. Find scans the whole collection
// directory, so every call is O(n); fine for the traffic this app sees,
// and there is no cross-process locking beyond the atomic rename on
// write.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/weeklygoals/weekly-goals-be/internal/store"
)

// Store is a file-backed store.Store rooted at a data directory.
type Store struct {
	root string
}

// New creates the data directory if needed and returns the store.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Collection(name string) store.Collection {
	return &collection{dir: filepath.Join(s.root, name)}
}

func (s *Store) Close(ctx context.Context) error {
	return nil
}

type collection struct {
	dir string
}

func (c *collection) path(id string) (string, bool) {
	// Ids come from URL parameters too; anything that could escape the
	// collection directory is simply an unknown record.
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", false
	}
	return filepath.Join(c.dir, id+".json"), true
}

func (c *collection) Get(ctx context.Context, id string) (map[string]any, error) {
	path, ok := c.path(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", id, err)
	}
	return doc, nil
}

func (c *collection) Find(ctx context.Context, filter store.Filter) ([]map[string]any, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil // nothing written yet
	}
	if err != nil {
		return nil, fmt.Errorf("listing collection: %w", err)
	}

	var docs []map[string]any
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		doc, err := c.Get(ctx, strings.TrimSuffix(name, ".json"))
		if errors.Is(err, store.ErrNotFound) {
			continue // deleted between ReadDir and ReadFile
		}
		if err != nil {
			return nil, err
		}
		if filter.Matches(doc) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (c *collection) Put(ctx context.Context, id string, doc map[string]any) error {
	path, ok := c.path(id)
	if !ok {
		return fmt.Errorf("invalid record id %q", id)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating collection directory: %w", err)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", id, err)
	}

	// Write-then-rename so a concurrent Find never reads a torn file.
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("writing record %s: %w", id, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing record %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing record %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing record %s: %w", id, err)
	}
	return nil
}

func (c *collection) Delete(ctx context.Context, id string) (bool, error) {
	path, ok := c.path(id)
	if !ok {
		return false, nil
	}
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("deleting record %s: %w", id, err)
	}
	return true, nil
}
