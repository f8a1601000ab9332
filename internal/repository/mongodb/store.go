// Package mongodb implements the persistence layer on MongoDB. The
// Store owns the client connection with an explicit lifecycle: it is
// constructed once at process start, injected into the repositories,
// and closed on shutdown.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collOrganizations = "organizations"
	collUsers         = "users"
	collCattle        = "cattle"
	collSeminations   = "semination_records"
	collPregnancies   = "pregnancy_records"
	collFeedings      = "feeding_records"
	collHealthRecords = "health_records"
	collNotifications = "notifications"
)

// Store wraps the MongoDB client and database handle shared by the
// repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, uri string, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

// WithTransaction runs fn inside a MongoDB multi-document transaction.
// Lifecycle operations use this so a reader can never observe a
// half-applied event (a calf created without its pregnancy record
// updated, or vice versa). Requires the server to run as a replica
// set.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongodb session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil {
		return err
	}
	return nil
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
