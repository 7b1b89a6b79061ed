package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/keyxmakerx/contactbook/internal/config"
)

// Collection names shared by the MongoDB repositories.
const (
	UsersCollection    = "users"
	ContactsCollection = "contacts"
)

// NewMongo connects to MongoDB, waits until the primary answers a ping, and
// returns the database handle the repositories work against. cfg.Timeout
// bounds each ping. The caller owns the client and must Disconnect it.
func NewMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	policy := startupRetry
	if cfg.Timeout > 0 {
		policy.pingTimeout = cfg.Timeout
	}
	ping := func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
	if err := waitReady(ctx, "mongodb", ping, policy); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureMongoIndexes creates the indexes the repositories rely on: a unique
// email index (the store-level guard against duplicate signups) and an owner
// index for contact listing. Re-creating an existing index is a no-op.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating users.email index: %w", err)
	}

	_, err = db.Collection(ContactsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "favorite", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("creating contacts.owner index: %w", err)
	}
	return nil
}
