package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ptr[T any](v T) *T { return &v }

func validCarInput() models.CarInput {
	return models.CarInput{
		CarName:     "Tesla Model 3",
		Description: "Electric sedan with autopilot and long range battery",
		Category:    "Electric",
		RentPrice:   ptr(8500.0),
		Location:    "Dhaka, Bangladesh",
		ImageURL:    "https://img.example.com/tesla.jpg",
	}
}

func newCatalog() (*memStore, *fakeCache, *CarCatalog) {
	store := newMemStore()
	cache := &fakeCache{}
	return store, cache, NewCarCatalog(fakeCars{store}, cache)
}

func TestCatalogCreateAndGet(t *testing.T) {
	_, cache, c := newCatalog()
	ctx := context.Background()

	created, err := c.Create(ctx, models.Identity{Email: " P@X.com ", Name: "Pat Provider"}, validCarInput())
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, models.AvailabilityAvailable, created.AvailabilityStatus)
	assert.Equal(t, "p@x.com", created.ProviderEmail)
	assert.Equal(t, "Pat Provider", created.ProviderName)
	assert.Equal(t, 1, cache.invalidated)

	got, err := c.Get(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created.CarName, got.CarName)
	assert.Equal(t, models.CategoryElectric, got.Category)
	assert.Equal(t, 8500.0, got.RentPrice)
}

func TestCatalogCreateReportsEveryViolation(t *testing.T) {
	store, _, c := newCatalog()

	in := validCarInput()
	in.CarName = "a"
	in.RentPrice = ptr(-5.0)
	_, err := c.Create(context.Background(), provider, in)
	requireKind(t, err, KindValidation, "Validation failed")

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.ElementsMatch(t, []string{
		"Car name must be at least 3 characters long",
		"Rent price must be a positive number",
	}, se.Fields)
	assert.Empty(t, store.cars)
}

func TestCatalogGetUnknownOrMalformed(t *testing.T) {
	_, _, c := newCatalog()

	_, err := c.Get(context.Background(), primitive.NewObjectID().Hex())
	requireKind(t, err, KindNotFound, "Car not found")

	_, err = c.Get(context.Background(), "xyz")
	requireKind(t, err, KindNotFound, "Car not found")
}

func TestCatalogUpdate(t *testing.T) {
	store, cache, c := newCatalog()
	car := store.seedCar("Honda Civic", provider.Email, 5000, time.Now())

	updated, err := c.Update(context.Background(), provider, car.ID.Hex(), models.CarPatch{
		RentPrice: ptr(5500.0),
		Location:  ptr("Chittagong"),
	})
	require.NoError(t, err)
	assert.Equal(t, 5500.0, updated.RentPrice)
	assert.Equal(t, "Chittagong", store.car(car.ID).Location)
	assert.Equal(t, "Honda Civic", store.car(car.ID).CarName)
	assert.Equal(t, 1, cache.invalidated)

	_, err = c.Update(context.Background(), provider, car.ID.Hex(), models.CarPatch{Category: ptr("Truck")})
	requireKind(t, err, KindValidation, "Validation failed")
	assert.Equal(t, models.CategorySedan, store.car(car.ID).Category)
}

func TestCatalogNonOwnerIsForbiddenBeforeValidation(t *testing.T) {
	store, _, c := newCatalog()
	car := store.seedCar("Honda Civic", provider.Email, 5000, time.Now())

	_, err := c.Update(context.Background(), renter, car.ID.Hex(), models.CarPatch{CarName: ptr("x")})
	requireKind(t, err, KindForbidden, "You can only update your own listings")

	err = c.Delete(context.Background(), renter, car.ID.Hex())
	requireKind(t, err, KindForbidden, "You can only delete your own listings")
	assert.Equal(t, "Honda Civic", store.car(car.ID).CarName)
}

func TestCatalogDeleteKeepsBookings(t *testing.T) {
	f := newEngineFixture()
	c := NewCarCatalog(fakeCars{f.store}, f.cache)
	car := f.store.seedCar("BMW X5", provider.Email, 12000, time.Now())

	_, err := f.engine.Create(context.Background(), car.ID.Hex(), renter)
	require.NoError(t, err)

	require.NoError(t, c.Delete(context.Background(), provider, car.ID.Hex()))
	_, err = c.Get(context.Background(), car.ID.Hex())
	requireKind(t, err, KindNotFound, "Car not found")

	bookings, err := f.engine.UserBookings(context.Background(), renter, renter.Email)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "BMW X5", bookings[0].CarName)

	err = c.Delete(context.Background(), provider, car.ID.Hex())
	requireKind(t, err, KindNotFound, "Car not found")
}

func TestCatalogListByProvider(t *testing.T) {
	store, _, c := newCatalog()
	now := time.Now()
	store.seedCar("Old Listing", provider.Email, 1000, now.Add(-time.Hour))
	store.seedCar("New Listing", provider.Email, 2000, now)
	store.seedCar("Someone Else", "other@x.com", 3000, now)

	cars, err := c.ListByProvider(context.Background(), provider, "P@x.com")
	require.NoError(t, err)
	require.Len(t, cars, 2)
	assert.Equal(t, "New Listing", cars[0].CarName)

	_, err = c.ListByProvider(context.Background(), renter, provider.Email)
	requireKind(t, err, KindForbidden, "You can only view your own listings")
}

func TestCatalogList(t *testing.T) {
	store, _, c := newCatalog()
	now := time.Now()
	store.seedCar("Toyota Corolla", provider.Email, 3000, now.Add(-3*time.Hour))
	store.seedCar("Toyota RAV4", provider.Email, 7000, now.Add(-2*time.Hour))
	store.seedCar("Mazda 3", "other@x.com", 5000, now.Add(-time.Hour))

	all, err := c.List(context.Background(), models.CarQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Mazda 3", all[0].CarName)

	cheap, err := c.List(context.Background(), models.CarQuery{Sort: models.SortPriceAsc, Limit: 2})
	require.NoError(t, err)
	require.Len(t, cheap, 2)
	assert.Equal(t, 3000.0, cheap[0].RentPrice)
	assert.Equal(t, 5000.0, cheap[1].RentPrice)

	toyotas, err := c.List(context.Background(), models.CarQuery{Search: "toyota", Sort: models.SortPriceDesc})
	require.NoError(t, err)
	require.Len(t, toyotas, 2)
	assert.Equal(t, "Toyota RAV4", toyotas[0].CarName)

	// Public listing ignores any provider filter.
	scoped, err := c.List(context.Background(), models.CarQuery{ProviderEmail: "other@x.com"})
	require.NoError(t, err)
	assert.Len(t, scoped, 3)

	none, err := c.List(context.Background(), models.CarQuery{Category: "Luxury"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCatalogListStoreFailure(t *testing.T) {
	store, _, c := newCatalog()
	store.findErr = errors.New("server selection timeout")

	_, err := c.List(context.Background(), models.CarQuery{})
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestCatalogFeaturedUsesCache(t *testing.T) {
	store, cache, c := newCatalog()
	now := time.Now()
	for i := 0; i < 8; i++ {
		store.seedCar("Car", provider.Email, float64(1000+i), now.Add(time.Duration(i)*time.Minute))
	}

	cars, err := c.Featured(context.Background())
	require.NoError(t, err)
	require.Len(t, cars, 6)
	assert.Equal(t, 1007.0, cars[0].RentPrice)
	assert.True(t, cache.hit)

	// Served from cache even if the store goes away.
	store.findErr = errors.New("down")
	cars, err = c.Featured(context.Background())
	require.NoError(t, err)
	assert.Len(t, cars, 6)

	_, err = c.Create(context.Background(), provider, validCarInput())
	require.NoError(t, err)
	assert.False(t, cache.hit)
}

func TestCatalogWithoutCache(t *testing.T) {
	store := newMemStore()
	c := NewCarCatalog(fakeCars{store}, nil)
	store.seedCar("Solo", provider.Email, 1000, time.Now())

	cars, err := c.Featured(context.Background())
	require.NoError(t, err)
	assert.Len(t, cars, 1)

	_, err = c.Create(context.Background(), provider, validCarInput())
	require.NoError(t, err)
}
