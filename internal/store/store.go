// Package store provides the MongoDB-backed document store client. The
// client is constructed once at startup and injected into every handler
// that needs it; main owns its lifecycle and closes it on shutdown.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/aumanu2/chatdrop/internal/apperr"
)

// Store is the document-store surface the handlers consume: schema-flexible
// records addressed by collection name and query filter.
type Store interface {
	CreateDocument(ctx context.Context, collection string, doc any) (string, error)
	GetDocuments(ctx context.Context, collection string, filter bson.M, limit int64, sort bson.D) ([]bson.M, error)
	Ping(ctx context.Context) error
	Collections(ctx context.Context) ([]string, error)
}

// Mongo implements Store against a live MongoDB database.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	log    *slog.Logger
}

const connectTimeout = 10 * time.Second

// Connect builds the store client. It does not require the server to be
// reachable yet; call Ping to verify connectivity.
func Connect(ctx context.Context, uri, dbname string, log *slog.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("store: connect: %w", err))
	}
	return &Mongo{client: client, db: client.Database(dbname), log: log}, nil
}

// CreateDocument inserts doc into the named collection and returns the
// store-assigned identifier as a display string.
func (m *Mongo) CreateDocument(ctx context.Context, collection string, doc any) (string, error) {
	res, err := m.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", apperr.Storage(fmt.Errorf("store: insert into %q: %w", collection, err))
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		return id.Hex(), nil
	}
	return fmt.Sprintf("%v", res.InsertedID), nil
}

// GetDocuments runs a filtered find over the named collection, decoded as
// raw documents. A positive limit bounds the result; a non-nil sort is
// applied at the query so the limit selects from the sorted order.
func (m *Mongo) GetDocuments(ctx context.Context, collection string, filter bson.M, limit int64, sort bson.D) ([]bson.M, error) {
	if filter == nil {
		filter = bson.M{}
	}

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if sort != nil {
		opts.SetSort(sort)
	}

	cur, err := m.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("store: find in %q: %w", collection, err))
	}

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperr.Storage(fmt.Errorf("store: decode from %q: %w", collection, err))
	}
	return docs, nil
}

// Ping verifies the server is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return apperr.Storage(fmt.Errorf("store: ping: %w", err))
	}
	return nil
}

// Collections lists the collection names present in the database.
func (m *Mongo) Collections(ctx context.Context) ([]string, error) {
	names, err := m.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("store: list collections: %w", err))
	}
	return names, nil
}

// Close releases the underlying connections. Safe to call once, on shutdown.
func (m *Mongo) Close(ctx context.Context) error {
	m.log.Debug("closing document store")
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("store: disconnect: %w", err)
	}
	return nil
}
