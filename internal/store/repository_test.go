package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is a minimal in-memory backend for exercising the typed
// repository layer without touching disk.
type memStore struct {
	colls map[string]*memCollection
}

func newMemStore() *memStore {
	return &memStore{colls: map[string]*memCollection{}}
}

func (s *memStore) Collection(name string) Collection {
	c, ok := s.colls[name]
	if !ok {
		c = &memCollection{docs: map[string]map[string]any{}}
		s.colls[name] = c
	}
	return c
}

func (s *memStore) Close(ctx context.Context) error { return nil }

type memCollection struct {
	docs map[string]map[string]any
}

func clone(doc map[string]any) map[string]any {
	out, err := encode(doc)
	if err != nil {
		panic(err)
	}
	return out
}

func (c *memCollection) Get(ctx context.Context, id string) (map[string]any, error) {
	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(doc), nil
}

func (c *memCollection) Find(ctx context.Context, filter Filter) ([]map[string]any, error) {
	var out []map[string]any
	for _, doc := range c.docs {
		if filter.Matches(doc) {
			out = append(out, clone(doc))
		}
	}
	return out, nil
}

func (c *memCollection) Put(ctx context.Context, id string, doc map[string]any) error {
	c.docs[id] = clone(doc)
	return nil
}

func (c *memCollection) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := c.docs[id]; !ok {
		return false, nil
	}
	delete(c.docs, id)
	return true, nil
}

type note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Week      int       `json:"weekNumber"`
	Done      bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newNoteRepo() *Repository[note] {
	return NewRepository[note](newMemStore(), "notes")
}

func TestRepository_CreateAssignsIDAndTimestamps(t *testing.T) {
	repo := newNoteRepo()

	created, err := repo.Create(context.Background(), note{Text: "hello", Week: 3})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Equal(t, "hello", created.Text)

	got, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestRepository_CreateKeepsCallerID(t *testing.T) {
	repo := newNoteRepo()

	created, err := repo.Create(context.Background(), note{ID: "fixed-id", Text: "x"})
	require.NoError(t, err)

	assert.Equal(t, "fixed-id", created.ID)
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	repo := newNoteRepo()

	_, err := repo.FindByID(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_FindAndCountByEquality(t *testing.T) {
	repo := newNoteRepo()
	ctx := context.Background()

	for _, n := range []note{
		{Text: "a", Week: 3},
		{Text: "b", Week: 3, Done: true},
		{Text: "c", Week: 4},
	} {
		_, err := repo.Create(ctx, n)
		require.NoError(t, err)
	}

	// Filter values are Go ints; stored documents carry JSON numbers.
	found, err := repo.Find(ctx, Filter{"weekNumber": 3})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.Find(ctx, Filter{"weekNumber": 3, "completed": true})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "b", found[0].Text)

	// Unknown fields never match anything.
	found, err = repo.Find(ctx, Filter{"noSuchField": "x"})
	require.NoError(t, err)
	assert.Empty(t, found)

	count, err := repo.Count(ctx, Filter{"weekNumber": 3})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.Count(ctx, Filter{"weekNumber": 9})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRepository_FindReturnsEmptyNotNil(t *testing.T) {
	repo := newNoteRepo()

	found, err := repo.Find(context.Background(), Filter{})

	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestRepository_UpdateMergesAndStamps(t *testing.T) {
	repo := newNoteRepo()
	ctx := context.Background()

	base := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	now := base
	repo.now = func() time.Time { return now }

	created, err := repo.Create(ctx, note{Text: "before", Week: 10})
	require.NoError(t, err)

	now = base.Add(time.Minute)
	updated, err := repo.Update(ctx, created.ID, Fields{"completed": true})
	require.NoError(t, err)

	assert.True(t, updated.Done)
	assert.Equal(t, "before", updated.Text) // untouched fields survive the merge
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.Equal(base.Add(time.Minute)))
}

func TestRepository_UpdateIgnoresImmutableFields(t *testing.T) {
	repo := newNoteRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, note{Text: "x"})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, Fields{
		"id":        "hijacked",
		"createdAt": "2000-01-01T00:00:00Z",
		"text":      "y",
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "y", updated.Text)
}

func TestRepository_UpdateNotFound(t *testing.T) {
	repo := newNoteRepo()

	_, err := repo.Update(context.Background(), "nope", Fields{"text": "y"})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_Delete(t *testing.T) {
	repo := newNoteRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, note{Text: "x"})
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFilter_Matches(t *testing.T) {
	doc := map[string]any{"owner": "u1", "weekNumber": float64(7), "completed": false}

	assert.True(t, Filter{}.Matches(doc))
	assert.True(t, Filter{"owner": "u1"}.Matches(doc))
	assert.True(t, Filter{"weekNumber": 7}.Matches(doc)) // int filter vs decoded float64
	assert.True(t, Filter{"owner": "u1", "completed": false}.Matches(doc))
	assert.False(t, Filter{"owner": "u2"}.Matches(doc))
	assert.False(t, Filter{"weekNumber": 8}.Matches(doc))
	assert.False(t, Filter{"missing": "x"}.Matches(doc))
}
