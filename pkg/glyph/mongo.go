package glyph

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/constellation/pkg/errors"
)

// Default names used by [MongoSource] when fields are left empty.
const (
	DefaultMongoDatabase   = "grove"
	DefaultMongoCollection = "glyphs"
)

// MongoSource reads a glyph registry from a MongoDB collection.
//
// Documents carry the same fields as the JSON registry plus an optional
// integer "order" field. Glyphs are returned sorted by order, then by _id,
// so the insertion order of the collection is the render order.
type MongoSource struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Load connects, reads every glyph document and disconnects.
func (s MongoSource) Load(ctx context.Context) ([]Glyph, error) {
	if s.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo registry: URI is required")
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackend, err, "connect to mongo")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	return s.load(ctx, client.Database(s.database()).Collection(s.collection()))
}

func (s MongoSource) load(ctx context.Context, coll *mongo.Collection) ([]Glyph, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackend, err, "query %s.%s", s.database(), s.collection())
	}
	defer cur.Close(ctx)

	var glyphs []Glyph
	if err := cur.All(ctx, &glyphs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackend, err, "decode glyph documents")
	}
	if err := ValidateRegistry(glyphs); err != nil {
		return nil, fmt.Errorf("mongo registry: %w", err)
	}
	return glyphs, nil
}

func (s MongoSource) database() string {
	if s.Database == "" {
		return DefaultMongoDatabase
	}
	return s.Database
}

func (s MongoSource) collection() string {
	if s.Collection == "" {
		return DefaultMongoCollection
	}
	return s.Collection
}
