package services

import (
	"context"

	"github.com/chachabrian/carrental-backend/internal/models"
)

// Notifiers fans a booking out to several notifiers in order.
type Notifiers []BookingNotifier

func (n Notifiers) BookingCreated(ctx context.Context, b *models.Booking) {
	for _, notifier := range n {
		notifier.BookingCreated(ctx, b)
	}
}
