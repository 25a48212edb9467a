package database

import (
	"context"
	"fmt"

	"github.com/chachabrian/carrental-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingStore struct {
	coll *mongo.Collection
}

func NewBookingStore(db *DB) *BookingStore {
	return &BookingStore{coll: db.Bookings()}
}

// FindActiveByCar returns the Active booking holding carID, or ErrNotFound.
func (s *BookingStore) FindActiveByCar(ctx context.Context, carID string) (*models.Booking, error) {
	oid, err := parseID(carID)
	if err != nil {
		return nil, err
	}

	var b models.Booking
	err = s.coll.FindOne(ctx, bson.M{"carId": oid, "status": models.BookingStatusActive}).Decode(&b)
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *BookingStore) Insert(ctx context.Context, b *models.Booking) error {
	res, err := s.coll.InsertOne(ctx, b)
	if err != nil {
		return translate(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid
	}
	return nil
}

// ListByRenter returns every booking made by email, newest first.
func (s *BookingStore) ListByRenter(ctx context.Context, email string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{"renterEmail": models.NormalizeEmail(email)}, opts)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}

	bookings := []models.Booking{}
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, nil
}
