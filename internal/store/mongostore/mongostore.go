// Package mongostore backs the document store with a MongoDB
// deployment. It owns the single connection-lifecycle object for the
// process: EnsureConnected is idempotent and retried with backoff, and
// no other component ever touches the client.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/weeklygoals/weekly-goals-be/internal/store"
)

// Store is a MongoDB-backed store.Store.
type Store struct {
	uri      string
	database string

	mu     sync.Mutex
	client *mongo.Client
}

// New returns an unconnected store; EnsureConnected dials lazily.
func New(uri, database string) *Store {
	return &Store{uri: uri, database: database}
}

// EnsureConnected dials and pings the deployment unless a client is
// already live. Transient failures are retried with exponential
// backoff until ctx expires.
func (s *Store) EnsureConnected(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return nil
	}

	backoff := retry.WithMaxRetries(4, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		client, err := mongo.Connect(options.Client().ApplyURI(s.uri))
		if err != nil {
			return retry.RetryableError(fmt.Errorf("connecting to mongodb: %w", err))
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			return retry.RetryableError(fmt.Errorf("pinging mongodb: %w", err))
		}
		s.client = client
		return nil
	})
}

func (s *Store) Collection(name string) store.Collection {
	return &collection{store: s, name: name}
}

func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	return err
}

type collection struct {
	store *Store
	name  string
}

func (s *Store) liveClient() *mongo.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

func (c *collection) coll(ctx context.Context) (*mongo.Collection, error) {
	if err := c.store.EnsureConnected(ctx); err != nil {
		return nil, err
	}
	return c.store.liveClient().Database(c.store.database).Collection(c.name), nil
}

func (c *collection) Get(ctx context.Context, id string) (map[string]any, error) {
	coll, err := c.coll(ctx)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	err = coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}
	delete(doc, "_id")
	return doc, nil
}

func (c *collection) Find(ctx context.Context, filter store.Filter) ([]map[string]any, error) {
	coll, err := c.coll(ctx)
	if err != nil {
		return nil, err
	}

	query := bson.M{}
	for field, value := range filter {
		query[field] = value
	}

	cursor, err := coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	var docs []map[string]any
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	for _, doc := range docs {
		delete(doc, "_id")
	}
	return docs, nil
}

func (c *collection) Put(ctx context.Context, id string, doc map[string]any) error {
	coll, err := c.coll(ctx)
	if err != nil {
		return err
	}

	stored := make(map[string]any, len(doc)+1)
	for field, value := range doc {
		stored[field] = value
	}
	stored["_id"] = id

	_, err = coll.ReplaceOne(ctx, bson.M{"_id": id}, stored, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("writing record %s: %w", id, err)
	}
	return nil
}

func (c *collection) Delete(ctx context.Context, id string) (bool, error) {
	coll, err := c.coll(ctx)
	if err != nil {
		return false, err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("deleting record %s: %w", id, err)
	}
	return res.DeletedCount > 0, nil
}
