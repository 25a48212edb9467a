package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chachabrian/carrental-backend/internal/database"
	"github.com/chachabrian/carrental-backend/internal/models"
)

// TxRunner runs fn inside one store transaction; fn's context carries the
// transaction session.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type BookingStore interface {
	FindActiveByCar(ctx context.Context, carID string) (*models.Booking, error)
	Insert(ctx context.Context, b *models.Booking) error
	ListByRenter(ctx context.Context, email string) ([]models.Booking, error)
}

// BookingNotifier is told about committed bookings. Implementations must
// not block for long and their failures never fail the booking.
type BookingNotifier interface {
	BookingCreated(ctx context.Context, b *models.Booking)
}

// CarBookingStatus answers "is this car held right now".
type CarBookingStatus struct {
	IsBooked bool
	Booking  *models.Booking
}

// BookingEngine reserves cars. Reservation correctness relies entirely on
// the store transaction: there is no in-process locking.
type BookingEngine struct {
	tx       TxRunner
	cars     CarStore
	bookings BookingStore
	notifier BookingNotifier
	cache    FeaturedCache
	now      func() time.Time
}

// NewBookingEngine wires the engine. notifier and cache may be nil.
func NewBookingEngine(tx TxRunner, cars CarStore, bookings BookingStore, notifier BookingNotifier, cache FeaturedCache) *BookingEngine {
	return &BookingEngine{
		tx:       tx,
		cars:     cars,
		bookings: bookings,
		notifier: notifier,
		cache:    cache,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create books carID for renter. Every precondition is checked and both
// writes happen in one transaction, so two concurrent attempts on the
// same car cannot both succeed.
func (e *BookingEngine) Create(ctx context.Context, carID string, renter models.Identity) (*models.Booking, error) {
	in := models.BookingInput{CarID: carID}
	if err := in.Validate(); err != nil {
		return nil, validationErr(err)
	}

	var booking *models.Booking
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		car, err := e.cars.FindByID(ctx, in.CarID)
		if err != nil {
			return carLookupErr(err)
		}
		if car.AvailabilityStatus != models.AvailabilityAvailable {
			return errCarUnavailable
		}

		// Redundant with the status check unless the two have drifted apart.
		_, err = e.bookings.FindActiveByCar(ctx, in.CarID)
		switch {
		case err == nil:
			return errCarAlreadyBooked
		case !errors.Is(err, database.ErrNotFound):
			return fmt.Errorf("find active booking: %w", err)
		}

		if models.CanAccess(renter, car.ProviderEmail) {
			return errOwnCar
		}

		now := e.now()
		b := models.NewBooking(car, renter, now)
		if err := e.bookings.Insert(ctx, b); err != nil {
			return conflictOr(err, errCarAlreadyBooked, "insert booking")
		}
		if err := e.cars.MarkBooked(ctx, car.ID, now); err != nil {
			return conflictOr(err, errCarUnavailable, "mark car booked")
		}
		booking = b
		return nil
	})
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, errCarUnavailable
		}
		return nil, err
	}

	slog.InfoContext(ctx, "booking created",
		"booking_id", booking.ID.Hex(),
		"car_id", booking.CarID.Hex(),
		"renter", booking.RenterEmail,
	)

	// The booking is committed; a dropped request must not skip the
	// follow-up work.
	after := context.WithoutCancel(ctx)
	if e.cache != nil {
		e.cache.InvalidateFeatured(after)
	}
	if e.notifier != nil {
		e.notifier.BookingCreated(after, booking)
	}
	return booking, nil
}

// CarStatus reports the Active booking for carID, if any.
func (e *BookingEngine) CarStatus(ctx context.Context, carID string) (*CarBookingStatus, error) {
	b, err := e.bookings.FindActiveByCar(ctx, carID)
	switch {
	case err == nil:
		return &CarBookingStatus{IsBooked: true, Booking: b}, nil
	case errors.Is(err, database.ErrNotFound), errors.Is(err, database.ErrInvalidID):
		return &CarBookingStatus{}, nil
	default:
		return nil, fmt.Errorf("car booking status: %w", err)
	}
}

// UserBookings lists the bookings made by email, newest first. Callers
// may only list their own.
func (e *BookingEngine) UserBookings(ctx context.Context, caller models.Identity, email string) ([]models.Booking, error) {
	if !models.CanAccess(caller, email) {
		return nil, newErr(KindForbidden, "You can only view your own bookings")
	}
	bookings, err := e.bookings.ListByRenter(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func carLookupErr(err error) error {
	if errors.Is(err, database.ErrNotFound) || errors.Is(err, database.ErrInvalidID) {
		return errCarNotFound
	}
	return fmt.Errorf("find car: %w", err)
}

func conflictOr(err error, conflict error, op string) error {
	if errors.Is(err, database.ErrConflict) {
		return conflict
	}
	return fmt.Errorf("%s: %w", op, err)
}
