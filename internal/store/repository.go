package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is the typed layer over a Collection. It assigns ids,
// stamps createdAt/updatedAt, and maps documents to and from T through
// T's JSON encoding, so the wire field names are also the stored and
// filterable ones.
type Repository[T any] struct {
	coll Collection
	now  func() time.Time
}

// NewRepository binds T to a named collection of s.
func NewRepository[T any](s Store, collection string) *Repository[T] {
	return &Repository[T]{coll: s.Collection(collection), now: time.Now}
}

// FindByID returns the record with the given id, or ErrNotFound.
func (r *Repository[T]) FindByID(ctx context.Context, id string) (T, error) {
	var zero T
	doc, err := r.coll.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	return decode[T](doc)
}

// Find returns all records matching the filter. The result is never
// nil and carries no ordering guarantee.
func (r *Repository[T]) Find(ctx context.Context, filter Filter) ([]T, error) {
	docs, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		rec, err := decode[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count reports how many records match the filter.
func (r *Repository[T]) Count(ctx context.Context, filter Filter) (int, error) {
	docs, err := r.coll.Find(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Create persists a new record, assigning an id when the caller did not
// set one and stamping both timestamps. The stored record is returned.
func (r *Repository[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	doc, err := encode(record)
	if err != nil {
		return zero, err
	}

	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.NewString()
		doc["id"] = id
	}

	stamp := r.now().UTC().Format(time.RFC3339Nano)
	if timestampMissing(doc["createdAt"]) {
		doc["createdAt"] = stamp
	}
	doc["updatedAt"] = stamp

	if err := r.coll.Put(ctx, id, doc); err != nil {
		return zero, err
	}
	return decode[T](doc)
}

// Update merges fields into the stored record, refreshes updatedAt, and
// returns the merged record. The id and createdAt fields are immutable
// and silently skipped. Fails with ErrNotFound for an unknown id.
func (r *Repository[T]) Update(ctx context.Context, id string, fields Fields) (T, error) {
	var zero T
	doc, err := r.coll.Get(ctx, id)
	if err != nil {
		return zero, err
	}

	for field, value := range fields {
		if field == "id" || field == "createdAt" {
			continue
		}
		doc[field] = value
	}
	doc["updatedAt"] = r.now().UTC().Format(time.RFC3339Nano)

	if err := r.coll.Put(ctx, id, doc); err != nil {
		return zero, err
	}
	return decode[T](doc)
}

// Delete removes the record, reporting false when the id is unknown.
func (r *Repository[T]) Delete(ctx context.Context, id string) (bool, error) {
	return r.coll.Delete(ctx, id)
}

func encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return doc, nil
}

func decode[T any](doc map[string]any) (T, error) {
	var v T
	raw, err := json.Marshal(doc)
	if err != nil {
		return v, fmt.Errorf("decoding record: %w", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decoding record: %w", err)
	}
	return v, nil
}

// timestampMissing treats an absent, empty, or zero-time value as not
// stamped yet. Encoded structs carry "0001-01-01T00:00:00Z" for a zero
// time.Time field, which is as good as absent.
func timestampMissing(v any) bool {
	s, ok := v.(string)
	if !ok || s == "" {
		return true
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	return err != nil || t.IsZero()
}
