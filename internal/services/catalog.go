package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chachabrian/carrental-backend/internal/database"
	"github.com/chachabrian/carrental-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const featuredLimit = 6

type CarStore interface {
	Find(ctx context.Context, q models.CarQuery) ([]models.Car, error)
	FindByID(ctx context.Context, id string) (*models.Car, error)
	Insert(ctx context.Context, car *models.Car) error
	Update(ctx context.Context, car *models.Car) error
	Delete(ctx context.Context, id string) error
	MarkBooked(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// FeaturedCache holds the featured listing between writes.
type FeaturedCache interface {
	GetFeatured(ctx context.Context) ([]models.Car, bool)
	SetFeatured(ctx context.Context, cars []models.Car)
	InvalidateFeatured(ctx context.Context)
}

// CarCatalog manages car listings.
type CarCatalog struct {
	cars  CarStore
	cache FeaturedCache
	now   func() time.Time
}

// NewCarCatalog wires the catalog. cache may be nil.
func NewCarCatalog(cars CarStore, cache FeaturedCache) *CarCatalog {
	return &CarCatalog{
		cars:  cars,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (c *CarCatalog) List(ctx context.Context, q models.CarQuery) ([]models.Car, error) {
	q.ProviderEmail = ""
	cars, err := c.cars.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	return cars, nil
}

// Featured returns the newest listings.
func (c *CarCatalog) Featured(ctx context.Context) ([]models.Car, error) {
	if c.cache != nil {
		if cars, ok := c.cache.GetFeatured(ctx); ok {
			return cars, nil
		}
	}

	cars, err := c.cars.Find(ctx, models.CarQuery{Sort: models.SortNewest, Limit: featuredLimit})
	if err != nil {
		return nil, fmt.Errorf("featured cars: %w", err)
	}
	// A write landing between the read and this set is overwritten with
	// stale data until the TTL expires.
	if c.cache != nil {
		c.cache.SetFeatured(ctx, cars)
	}
	return cars, nil
}

func (c *CarCatalog) Get(ctx context.Context, id string) (*models.Car, error) {
	car, err := c.cars.FindByID(ctx, id)
	if err != nil {
		return nil, carLookupErr(err)
	}
	return car, nil
}

func (c *CarCatalog) ListByProvider(ctx context.Context, caller models.Identity, email string) ([]models.Car, error) {
	if !models.CanAccess(caller, email) {
		return nil, newErr(KindForbidden, "You can only view your own listings")
	}
	cars, err := c.cars.Find(ctx, models.CarQuery{ProviderEmail: email, Sort: models.SortNewest})
	if err != nil {
		return nil, fmt.Errorf("list provider cars: %w", err)
	}
	return cars, nil
}

// Create lists a new Available car with caller as provider.
func (c *CarCatalog) Create(ctx context.Context, caller models.Identity, in models.CarInput) (*models.Car, error) {
	if err := in.Validate(); err != nil {
		return nil, validationErr(err)
	}

	car := models.NewCar(in, caller, c.now())
	if err := c.cars.Insert(ctx, car); err != nil {
		return nil, fmt.Errorf("create car: %w", err)
	}
	c.invalidate(ctx)
	return car, nil
}

// Update applies the supplied fields. Only the provider may update.
func (c *CarCatalog) Update(ctx context.Context, caller models.Identity, id string, patch models.CarPatch) (*models.Car, error) {
	car, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanAccess(caller, car.ProviderEmail) {
		return nil, newErr(KindForbidden, "You can only update your own listings")
	}
	if err := patch.ApplyTo(car, c.now()); err != nil {
		return nil, validationErr(err)
	}

	if err := c.cars.Update(ctx, car); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, errCarNotFound
		}
		return nil, fmt.Errorf("update car: %w", err)
	}
	c.invalidate(ctx)
	return car, nil
}

// Delete removes a listing. Bookings that reference it are left in place.
func (c *CarCatalog) Delete(ctx context.Context, caller models.Identity, id string) error {
	car, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	if !models.CanAccess(caller, car.ProviderEmail) {
		return newErr(KindForbidden, "You can only delete your own listings")
	}
	if err := c.cars.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return errCarNotFound
		}
		return fmt.Errorf("delete car: %w", err)
	}
	c.invalidate(ctx)
	return nil
}

func (c *CarCatalog) invalidate(ctx context.Context) {
	if c.cache != nil {
		c.cache.InvalidateFeatured(context.WithoutCancel(ctx))
	}
}
