// Package mongo persists every collection behind the core store ports.
// Update documents mirror the aggregate's mutation rules: membership
// changes are $pull/$push on the room document, admin-gated mutations
// are single conditional updates matching id and admin together.
package mongo

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	collRooms     = "rooms"
	collUsers     = "users"
	collQuestions = "questions"
	collMessages  = "messages"
	collOtps      = "otps"

	opTimeout = 5 * time.Second
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials the deployment, pings the primary and creates the
// indexes the aggregate relies on: a unique index on roomName (name
// uniqueness must not depend on application-level checks) and a TTL
// index expiring stale login codes.
func Connect(ctx context.Context, uri, dbName string, otpTTL time.Duration) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}

	s := &Store{client: client, db: client.Database(dbName)}

	_, err = s.db.Collection(collRooms).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "roomName", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}

	_, err = s.db.Collection(collOtps).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phoneNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(otpTTL.Seconds())),
		},
	})
	if err != nil {
		return nil, err
	}

	_, err = s.db.Collection(collMessages).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "roomId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("module", "adapters.mongo").Str("db", dbName).Msg("connected")
	return s, nil
}

func (s *Store) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) coll(name string) *mongo.Collection {
	return s.db.Collection(name)
}
