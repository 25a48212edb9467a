package database

import (
	"context"
	"fmt"

	"github.com/chachabrian/carrental-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func carIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "providerEmail", Value: 1}}},
		{Keys: bson.D{{Key: "availabilityStatus", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "carName", Value: "text"}}},
	}
}

func bookingIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "renterEmail", Value: 1}}},
		{Keys: bson.D{{Key: "carId", Value: 1}}},
		{Keys: bson.D{{Key: "providerEmail", Value: 1}}},
		// One Active booking per car.
		{
			Keys: bson.D{{Key: "carId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().
				SetName("carId_active_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.BookingStatusActive}),
		},
	}
}

// RunMigrations creates the collections and indexes the stores rely on.
// Collections must exist before a transaction writes to them.
func RunMigrations(ctx context.Context, db *DB) error {
	existing, err := db.Database.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	for _, name := range []string{CarsCollection, BookingsCollection} {
		if have[name] {
			continue
		}
		if err := db.Database.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
	}

	if _, err := db.Cars().Indexes().CreateMany(ctx, carIndexes()); err != nil {
		return fmt.Errorf("create car indexes: %w", err)
	}
	if _, err := db.Bookings().Indexes().CreateMany(ctx, bookingIndexes()); err != nil {
		return fmt.Errorf("create booking indexes: %w", err)
	}
	return nil
}
