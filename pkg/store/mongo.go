package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/cheertower/pkg/cache"
	"github.com/matzehuels/cheertower/pkg/routine"
)

// Mongo defaults.
const (
	DefaultDatabase   = "cheertower"
	DefaultCollection = "routines"
)

// MongoConfig configures a MongoDB-backed store.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// MongoStore keeps routines in a MongoDB collection keyed by routine ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and pings the primary, retrying with
// backoff while the server comes up.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo store: uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo store: connect: %w", err)
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		return cache.Retryable(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo store: ping: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Save upserts r by ID.
func (s *MongoStore) Save(ctx context.Context, r *routine.Routine) error {
	if r == nil || r.ID == "" {
		return errors.New("store: routine id is required")
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": r.ID}, r, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo store: save %s: %w", r.ID, err)
	}
	return nil
}

// Get loads the routine with the given ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*routine.Routine, error) {
	var r routine.Routine
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo store: get %s: %w", id, err)
	}
	return &r, nil
}

// List returns the newest routines first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]*routine.Routine, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo store: list: %w", err)
	}
	defer cur.Close(ctx)

	var out []*routine.Routine
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo store: list: %w", err)
	}
	return out, nil
}

// Delete removes the routine with the given ID.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo store: delete %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
