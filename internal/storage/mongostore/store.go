// Package mongostore implémente storage.Store sur MongoDB avec le driver v2.
//
// Les noms de collections et les index sont gérés dans EnsureIndexes.
package mongostore

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Noms des collections
const (
	ColUsers        = "users"
	ColCars         = "cars"
	ColReviews      = "reviews"
	ColBookings     = "bookings"
	ColTransactions = "transactions"
)

type Store struct {
	db *mongo.Database
}

func NewStore(db *mongo.Database) *Store {
	s := &Store{db: db}

	ctx := context.Background()
	if err := s.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️ Création des index MongoDB échouée: %v", err)
	}

	return s
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndexes crée les index nécessaires (unicité email/username,
// recherches par références)
func (s *Store) EnsureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	indexes := []idx{
		{ColUsers, bson.D{{Key: "email", Value: 1}}, true},
		{ColUsers, bson.D{{Key: "username", Value: 1}}, true},
		{ColUsers, bson.D{{Key: "role", Value: 1}}, false},

		{ColReviews, bson.D{{Key: "car", Value: 1}}, false},

		{ColBookings, bson.D{{Key: "userId", Value: 1}}, false},
		{ColBookings, bson.D{{Key: "paymentIntentId", Value: 1}}, false},

		{ColTransactions, bson.D{{Key: "bookingId", Value: 1}}, false},
		{ColTransactions, bson.D{{Key: "paymentIntentId", Value: 1}}, false},
		{ColTransactions, bson.D{{Key: "createdAt", Value: -1}}, false},
	}

	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("index sur %s: %w", i.col, err)
		}
	}

	return nil
}
