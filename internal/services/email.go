package services

import (
	"context"
	"log/slog"

	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/chachabrian/carrental-backend/pkg/utils"
)

// BookingMailer is the part of utils.Mailer the notifier needs.
type BookingMailer interface {
	SendCarBookedEmail(providerEmail, carName, renterName string) error
	SendBookingConfirmationEmail(renterEmail, renterName, carName string, rentPrice float64) error
}

var _ BookingMailer = (*utils.Mailer)(nil)

// EmailNotifier emails the provider and the renter about a new booking.
// Mail goes out in the background so SMTP latency never holds up the
// request.
type EmailNotifier struct {
	mailer   BookingMailer
	dispatch func(func())
}

func NewEmailNotifier(mailer BookingMailer) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, dispatch: func(f func()) { go f() }}
}

func (n *EmailNotifier) BookingCreated(_ context.Context, b *models.Booking) {
	logger := slog.Default().With("booking_id", b.ID.Hex())
	n.dispatch(func() {
		if err := n.mailer.SendCarBookedEmail(b.ProviderEmail, b.CarName, b.RenterName); err != nil {
			logger.Warn("provider booking email failed", "error", err)
		}
		if err := n.mailer.SendBookingConfirmationEmail(b.RenterEmail, b.RenterName, b.CarName, b.RentPrice); err != nil {
			logger.Warn("renter booking email failed", "error", err)
		}
	})
}
