package source

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/planboard/pkg/cache"
	"github.com/matzehuels/planboard/pkg/errors"
)

// MongoConfig locates the planner's item collection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// Defaults for MongoConfig.
const (
	DefaultMongoURI        = "mongodb://localhost:27017"
	DefaultMongoDatabase   = "planner"
	DefaultMongoCollection = "items"
)

// collection is the subset of *mongo.Collection MongoSource uses.
type collection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// MongoSource reads items stored as [Record] documents.
type MongoSource struct {
	client *mongo.Client
	coll   collection
	name   string
}

// NewMongoSource connects to MongoDB and verifies the connection.
// Connection failures are retried with backoff before giving up.
func NewMongoSource(ctx context.Context, cfg MongoConfig) (*MongoSource, error) {
	if cfg.URI == "" {
		cfg.URI = DefaultMongoURI
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "connect to mongodb")
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, nil); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "ping mongodb")
	}

	return &MongoSource{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		name:   fmt.Sprintf("mongo:%s.%s", cfg.Database, cfg.Collection),
	}, nil
}

// Name implements Source.
func (s *MongoSource) Name() string { return s.name }

// Load implements Source.
func (s *MongoSource) Load(ctx context.Context) (Snapshot, error) {
	return s.find(ctx, bson.M{})
}

// LoadRange implements RangeLoader.
func (s *MongoSource) LoadRange(ctx context.Context, from, to time.Time) (Snapshot, error) {
	return s.find(ctx, rangeFilter(from, to))
}

// Close disconnects from MongoDB.
func (s *MongoSource) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *MongoSource) find(ctx context.Context, filter bson.M) (Snapshot, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "start_date", Value: 1},
		{Key: "id", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "query %s", s.name)
	}
	var records []Record
	if err := cur.All(ctx, &records); err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "decode %s", s.name)
	}
	return snapshot(records)
}

// rangeFilter selects documents that may overlap [from, to]. Dates are
// ISO 8601 strings, which order lexicographically. Both the start and the
// end are tested against from so that items whose end precedes their start
// still match when the start lies in range.
func rangeFilter(from, to time.Time) bson.M {
	lower := from.Format(time.DateOnly)
	upper := to.AddDate(0, 0, 1).Format(time.DateOnly)
	return bson.M{
		"start_date": bson.M{"$lt": upper},
		"$or": bson.A{
			bson.M{"end_date": bson.M{"$gte": lower}},
			bson.M{"start_date": bson.M{"$gte": lower}},
		},
	}
}
