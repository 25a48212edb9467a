package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingStatusActive BookingStatus = "Active"
	// BookingStatusCancelled is reserved; no operation sets it yet.
	BookingStatusCancelled BookingStatus = "Cancelled"
)

// Booking is a renter's hold on a car. Car fields are a snapshot taken
// when the booking was made.
type Booking struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	CarID         primitive.ObjectID `json:"carId" bson:"carId"`
	CarName       string             `json:"carName" bson:"carName"`
	CarImage      string             `json:"carImage" bson:"carImage"`
	RentPrice     float64            `json:"rentPrice" bson:"rentPrice"`
	RenterEmail   string             `json:"renterEmail" bson:"renterEmail"`
	RenterName    string             `json:"renterName" bson:"renterName"`
	ProviderEmail string             `json:"providerEmail" bson:"providerEmail"`
	BookingDate   time.Time          `json:"bookingDate" bson:"bookingDate"`
	Status        BookingStatus      `json:"status" bson:"status"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// NewBooking snapshots car for renter as an Active booking.
func NewBooking(car *Car, renter Identity, now time.Time) *Booking {
	return &Booking{
		CarID:         car.ID,
		CarName:       car.CarName,
		CarImage:      car.ImageURL,
		RentPrice:     car.RentPrice,
		RenterEmail:   NormalizeEmail(renter.Email),
		RenterName:    strings.TrimSpace(renter.Name),
		ProviderEmail: NormalizeEmail(car.ProviderEmail),
		BookingDate:   now,
		Status:        BookingStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
