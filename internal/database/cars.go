package database

import (
	"context"
	"fmt"
	"time"

	"github.com/chachabrian/carrental-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CarStore struct {
	coll *mongo.Collection
}

func NewCarStore(db *DB) *CarStore {
	return &CarStore{coll: db.Cars()}
}

// carListQuery turns a CarQuery into a Mongo filter and find options.
func carListQuery(q models.CarQuery) (bson.M, *options.FindOptions) {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.ProviderEmail != "" {
		filter["providerEmail"] = models.NormalizeEmail(q.ProviderEmail)
	}
	if q.Search != "" {
		filter["$text"] = bson.M{"$search": q.Search}
	}

	opts := options.Find()
	switch q.Sort {
	case models.SortPriceAsc:
		opts.SetSort(bson.D{{Key: "rentPrice", Value: 1}, {Key: "_id", Value: 1}})
	case models.SortPriceDesc:
		opts.SetSort(bson.D{{Key: "rentPrice", Value: -1}, {Key: "_id", Value: 1}})
	default:
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return filter, opts
}

func (s *CarStore) Find(ctx context.Context, q models.CarQuery) ([]models.Car, error) {
	filter, opts := carListQuery(q)
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find cars: %w", err)
	}

	cars := []models.Car{}
	if err := cur.All(ctx, &cars); err != nil {
		return nil, fmt.Errorf("decode cars: %w", err)
	}
	return cars, nil
}

func (s *CarStore) FindByID(ctx context.Context, id string) (*models.Car, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var car models.Car
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&car); err != nil {
		return nil, translate(err)
	}
	return &car, nil
}

func (s *CarStore) Insert(ctx context.Context, car *models.Car) error {
	res, err := s.coll.InsertOne(ctx, car)
	if err != nil {
		return fmt.Errorf("insert car: %w", translate(err))
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		car.ID = oid
	}
	return nil
}

// InsertMany is used by the seeder.
func (s *CarStore) InsertMany(ctx context.Context, cars []*models.Car) error {
	docs := make([]interface{}, len(cars))
	for i, c := range cars {
		docs[i] = c
	}
	res, err := s.coll.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("insert cars: %w", err)
	}
	for i, id := range res.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok {
			cars[i].ID = oid
		}
	}
	return nil
}

func (s *CarStore) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{})
}

// Update writes the listing fields a provider may change.
func (s *CarStore) Update(ctx context.Context, car *models.Car) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": car.ID}, bson.M{"$set": bson.M{
		"carName":     car.CarName,
		"description": car.Description,
		"category":    car.Category,
		"rentPrice":   car.RentPrice,
		"location":    car.Location,
		"imageUrl":    car.ImageURL,
		"updatedAt":   car.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update car: %w", translate(err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CarStore) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkBooked flips an Available car to Booked. It returns ErrConflict if
// the car is no longer Available.
func (s *CarStore) MarkBooked(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "availabilityStatus": models.AvailabilityAvailable},
		bson.M{"$set": bson.M{"availabilityStatus": models.AvailabilityBooked, "updatedAt": at}},
	)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}
