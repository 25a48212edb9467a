package services

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

// memStore is an in-memory stand-in for the cars and bookings collections.
type memStore struct {
	mu       sync.Mutex
	cars     map[primitive.ObjectID]models.Car
	bookings []models.Booking

	findErr       error
	markBookedErr error
}

func newMemStore() *memStore {
	return &memStore{cars: make(map[primitive.ObjectID]models.Car)}
}

func (s *memStore) snapshot() (map[primitive.ObjectID]models.Car, []models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cars := make(map[primitive.ObjectID]models.Car, len(s.cars))
	for k, v := range s.cars {
		cars[k] = v
	}
	return cars, append([]models.Booking(nil), s.bookings...)
}

func (s *memStore) restore(cars map[primitive.ObjectID]models.Car, bookings []models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cars = cars
	s.bookings = bookings
}

func (s *memStore) seedCar(name, providerEmail string, price float64, created time.Time) models.Car {
	s.mu.Lock()
	defer s.mu.Unlock()
	car := models.Car{
		ID:                 primitive.NewObjectID(),
		CarName:            name,
		Description:        "A well kept car that is ready for the road",
		Category:           models.CategorySedan,
		RentPrice:          price,
		Location:           "Dhaka",
		ImageURL:           "https://img.example.com/" + name + ".jpg",
		ProviderName:       "Provider",
		ProviderEmail:      providerEmail,
		AvailabilityStatus: models.AvailabilityAvailable,
		CreatedAt:          created,
		UpdatedAt:          created,
	}
	s.cars[car.ID] = car
	return car
}

func (s *memStore) car(id primitive.ObjectID) models.Car {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cars[id]
}

func (s *memStore) activeBookings(carID primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bookings {
		if b.CarID == carID && b.Status == models.BookingStatusActive {
			n++
		}
	}
	return n
}

type fakeCars struct{ s *memStore }

func (f fakeCars) Find(_ context.Context, q models.CarQuery) ([]models.Car, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.findErr != nil {
		return nil, f.s.findErr
	}

	out := []models.Car{}
	for _, c := range f.s.cars {
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

func (f fakeCars) FindByID(_ context.Context, id string) (*models.Car, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, database.ErrInvalidID
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.cars[oid]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &c, nil
}

func (f fakeCars) Insert(_ context.Context, car *models.Car) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	car.ID = primitive.NewObjectID()
	f.s.cars[car.ID] = *car
	return nil
}

func (f fakeCars) Update(_ context.Context, car *models.Car) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.cars[car.ID]; !ok {
		return database.ErrNotFound
	}
	f.s.cars[car.ID] = *car
	return nil
}

func (f fakeCars) Delete(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return database.ErrInvalidID
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.cars[oid]; !ok {
		return database.ErrNotFound
	}
	delete(f.s.cars, oid)
	return nil
}

func (f fakeCars) MarkBooked(_ context.Context, id primitive.ObjectID, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.markBookedErr != nil {
		return f.s.markBookedErr
	}
	c, ok := f.s.cars[id]
	if !ok || c.AvailabilityStatus != models.AvailabilityAvailable {
		return database.ErrConflict
	}
	c.AvailabilityStatus = models.AvailabilityBooked
	c.UpdatedAt = at
	f.s.cars[id] = c
	return nil
}

type fakeBookings struct{ s *memStore }

func (f fakeBookings) FindActiveByCar(_ context.Context, carID string) (*models.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(carID)
	if err != nil {
		return nil, database.ErrInvalidID
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, b := range f.s.bookings {
		if b.CarID == oid && b.Status == models.BookingStatusActive {
			return &b, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f fakeBookings) Insert(_ context.Context, b *models.Booking) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.bookings {
		if existing.CarID == b.CarID && existing.Status == models.BookingStatusActive {
			return database.ErrConflict
		}
	}
	b.ID = primitive.NewObjectID()
	f.s.bookings = append(f.s.bookings, *b)
	return nil
}

func (f fakeBookings) ListByRenter(_ context.Context, email string) ([]models.Booking, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []models.Booking{}
	for _, b := range f.s.bookings {
		if b.RenterEmail == models.NormalizeEmail(email) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// fakeTx serialises transactions and rolls the store back when fn fails,
// which is the observable behaviour of a snapshot transaction that loses
// or aborts.
type fakeTx struct {
	s  *memStore
	mu sync.Mutex

	commitErr   error
	afterCommit func()
	commits     int
	aborts      int
}

func (f *fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cars, bookings := f.s.snapshot()
	if err := fn(ctx); err != nil {
		f.s.restore(cars, bookings)
		f.aborts++
		return err
	}
	if f.commitErr != nil {
		f.s.restore(cars, bookings)
		f.aborts++
		return f.commitErr
	}
	f.commits++
	if f.afterCommit != nil {
		f.afterCommit()
	}
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	cars        []models.Car
	hit         bool
	gets        int
	invalidated int
	ctxErrs     []error
}

func (c *fakeCache) GetFeatured(context.Context) ([]models.Car, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.cars, c.hit
}

func (c *fakeCache) SetFeatured(_ context.Context, cars []models.Car) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cars, c.hit = cars, true
}

func (c *fakeCache) InvalidateFeatured(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cars, c.hit = nil, false
	c.invalidated++
	c.ctxErrs = append(c.ctxErrs, ctx.Err())
}

type recordingNotifier struct {
	mu       sync.Mutex
	bookings []*models.Booking
	ctxErrs  []error
}

func (n *recordingNotifier) BookingCreated(ctx context.Context, b *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bookings = append(n.bookings, b)
	n.ctxErrs = append(n.ctxErrs, ctx.Err())
}
