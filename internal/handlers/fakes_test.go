package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chachabrian/carrental-backend/internal/database"
	"github.com/chachabrian/carrental-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// store is an in-memory pair of collections shared by the fake stores.
type store struct {
	mu       sync.Mutex
	cars     map[primitive.ObjectID]models.Car
	bookings []models.Booking
	txMu     sync.Mutex
}

func newStore() *store {
	return &store{cars: make(map[primitive.ObjectID]models.Car)}
}

func (s *store) seed(name, providerEmail string) models.Car {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	car := models.Car{
		ID:                 primitive.NewObjectID(),
		CarName:            name,
		Description:        "Comfortable car for city and highway trips",
		Category:           models.CategorySUV,
		RentPrice:          7500,
		Location:           "Dhaka",
		ImageURL:           "https://img.example.com/car.jpg",
		ProviderName:       "Pat Provider",
		ProviderEmail:      providerEmail,
		AvailabilityStatus: models.AvailabilityAvailable,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.cars[car.ID] = car
	return car
}

func (s *store) car(id primitive.ObjectID) (models.Car, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, found := s.cars[id]
	return c, found
}

// RunInTx serialises transactions and restores the collections if fn fails.
func (s *store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	cars := make(map[primitive.ObjectID]models.Car, len(s.cars))
	for k, v := range s.cars {
		cars[k] = v
	}
	bookings := append([]models.Booking(nil), s.bookings...)
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.cars, s.bookings = cars, bookings
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *store) Ping(context.Context) error { return nil }

type carStore struct{ *store }

func (s carStore) Find(_ context.Context, q models.CarQuery) ([]models.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Car
	for _, c := range s.cars {
		if q.Category != "" && string(c.Category) != q.Category {
			continue
		}
		if q.ProviderEmail != "" && c.ProviderEmail != models.NormalizeEmail(q.ProviderEmail) {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(c.CarName), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		switch q.Sort {
		case models.SortPriceAsc:
			return out[i].RentPrice < out[j].RentPrice
		case models.SortPriceDesc:
			return out[i].RentPrice > out[j].RentPrice
		default:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
	})
	if q.Limit > 0 && int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s carStore) FindByID(_ context.Context, id string) (*models.Car, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, database.ErrInvalidID
	}
	c, found := s.car(oid)
	if !found {
		return nil, database.ErrNotFound
	}
	return &c, nil
}

func (s carStore) Insert(_ context.Context, car *models.Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	car.ID = primitive.NewObjectID()
	s.cars[car.ID] = *car
	return nil
}

func (s carStore) Update(_ context.Context, car *models.Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.cars[car.ID]; !found {
		return database.ErrNotFound
	}
	s.cars[car.ID] = *car
	return nil
}

func (s carStore) Delete(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return database.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.cars[oid]; !found {
		return database.ErrNotFound
	}
	delete(s.cars, oid)
	return nil
}

func (s carStore) MarkBooked(_ context.Context, id primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, found := s.cars[id]
	if !found || c.AvailabilityStatus != models.AvailabilityAvailable {
		return database.ErrConflict
	}
	c.AvailabilityStatus = models.AvailabilityBooked
	c.UpdatedAt = at
	s.cars[id] = c
	return nil
}

type bookingStore struct{ *store }

func (s bookingStore) FindActiveByCar(_ context.Context, carID string) (*models.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(carID)
	if err != nil {
		return nil, database.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.CarID == oid && b.Status == models.BookingStatusActive {
			return &b, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s bookingStore) Insert(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.bookings {
		if existing.CarID == b.CarID && existing.Status == models.BookingStatusActive {
			return database.ErrConflict
		}
	}
	b.ID = primitive.NewObjectID()
	s.bookings = append(s.bookings, *b)
	return nil
}

func (s bookingStore) ListByRenter(_ context.Context, email string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for i := len(s.bookings) - 1; i >= 0; i-- {
		if s.bookings[i].RenterEmail == models.NormalizeEmail(email) {
			out = append(out, s.bookings[i])
		}
	}
	return out, nil
}
