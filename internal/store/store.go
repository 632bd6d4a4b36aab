// Package store defines the storage abstraction the rest of the
// application is written against: collections of JSON documents matched
// by field equality, with pluggable backends.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a record id is unknown to a collection.
var ErrNotFound = errors.New("record not found")

// Filter matches records where every listed field equals the given
// value. Logical AND, exact equality only; a field the record does not
// have never matches.
type Filter map[string]any

// Fields is a partial record used for merge updates.
type Fields map[string]any

// Collection is the untyped document store each backend implements.
// Documents are JSON objects keyed by an opaque string id.
type Collection interface {
	// Get returns the document with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (map[string]any, error)

	// Find returns every document matching the filter. No ordering is
	// guaranteed; callers sort.
	Find(ctx context.Context, filter Filter) ([]map[string]any, error)

	// Put inserts or fully replaces the document under id.
	Put(ctx context.Context, id string, doc map[string]any) error

	// Delete removes the document. It reports false, not an error, when
	// the id is unknown.
	Delete(ctx context.Context, id string) (bool, error)
}

// Store hands out named collections and owns the backend's lifecycle.
type Store interface {
	Collection(name string) Collection
	Close(ctx context.Context) error
}

// Matches reports whether doc satisfies the filter. Values are compared
// by their JSON encoding, so an int filter value matches the float64
// that encoding/json produces when a document is read back.
func (f Filter) Matches(doc map[string]any) bool {
	for field, want := range f {
		got, ok := doc[field]
		if !ok || !jsonEqual(got, want) {
			return false
		}
	}
	return true
}

func jsonEqual(a, b any) bool {
	ja, err := json.Marshal(a)
	if err != nil {
		return false
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}
