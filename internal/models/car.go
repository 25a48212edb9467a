package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategorySedan     Category = "Sedan"
	CategorySUV       Category = "SUV"
	CategoryHatchback Category = "Hatchback"
	CategoryLuxury    Category = "Luxury"
	CategoryElectric  Category = "Electric"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategorySedan,
	CategorySUV,
	CategoryHatchback,
	CategoryLuxury,
	CategoryElectric,
}

// ParseCategory returns the Category matching s exactly.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%q is not a valid category", s)
}

type AvailabilityStatus string

const (
	AvailabilityAvailable AvailabilityStatus = "Available"
	AvailabilityBooked    AvailabilityStatus = "Booked"
)

// Car is a rental listing owned by the provider that created it.
type Car struct {
	ID                 primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	CarName            string             `json:"carName" bson:"carName"`
	Description        string             `json:"description" bson:"description"`
	Category           Category           `json:"category" bson:"category"`
	RentPrice          float64            `json:"rentPrice" bson:"rentPrice"`
	Location           string             `json:"location" bson:"location"`
	ImageURL           string             `json:"imageUrl" bson:"imageUrl"`
	ProviderName       string             `json:"providerName" bson:"providerName"`
	ProviderEmail      string             `json:"providerEmail" bson:"providerEmail"`
	AvailabilityStatus AvailabilityStatus `json:"availabilityStatus" bson:"availabilityStatus"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Sort orders accepted by car listings.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

// CarQuery narrows a car listing. Zero values mean "no filter".
type CarQuery struct {
	Category      string
	Search        string
	ProviderEmail string
	Sort          string
	Limit         int64
}

// CarInput is the payload for creating a listing.
type CarInput struct {
	CarName     string   `json:"carName" validate:"required,min=3"`
	Description string   `json:"description" validate:"required,min=20"`
	Category    string   `json:"category" validate:"required,category"`
	RentPrice   *float64 `json:"rentPrice" validate:"required,gte=0"`
	Location    string   `json:"location" validate:"required"`
	ImageURL    string   `json:"imageUrl" validate:"required"`
}

// UnmarshalJSON accepts rentPrice as a number or a numeric string.
func (in *CarInput) UnmarshalJSON(data []byte) error {
	type plain CarInput
	aux := struct {
		*plain
		RentPrice json.RawMessage `json:"rentPrice"`
	}{plain: (*plain)(in)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	price, err := decodePrice(aux.RentPrice)
	if err != nil {
		return err
	}
	in.RentPrice = price
	return nil
}

// decodePrice reads a JSON number or numeric string. A string that is not
// a number decodes to NaN so validation reports it against rentPrice.
func decodePrice(raw json.RawMessage) (*float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			v = math.NaN()
		}
		return &v, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("rentPrice: %w", err)
	}
	return &v, nil
}

func (in *CarInput) normalize() {
	in.CarName = strings.TrimSpace(in.CarName)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
}

// Validate trims the input and reports every violated field.
func (in *CarInput) Validate() error {
	in.normalize()
	return validateStruct(in)
}

// NewCar builds an Available listing owned by provider. The input must
// already be valid.
func NewCar(in CarInput, provider Identity, now time.Time) *Car {
	return &Car{
		CarName:            in.CarName,
		Description:        in.Description,
		Category:           Category(in.Category),
		RentPrice:          *in.RentPrice,
		Location:           in.Location,
		ImageURL:           in.ImageURL,
		ProviderName:       strings.TrimSpace(provider.Name),
		ProviderEmail:      NormalizeEmail(provider.Email),
		AvailabilityStatus: AvailabilityAvailable,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// CarPatch carries a partial listing update; nil fields are left alone.
type CarPatch struct {
	CarName     *string  `json:"carName"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	RentPrice   *float64 `json:"rentPrice"`
	Location    *string  `json:"location"`
	ImageURL    *string  `json:"imageUrl"`
}

// UnmarshalJSON accepts rentPrice as a number or a numeric string.
func (p *CarPatch) UnmarshalJSON(data []byte) error {
	type plain CarPatch
	aux := struct {
		*plain
		RentPrice json.RawMessage `json:"rentPrice"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	price, err := decodePrice(aux.RentPrice)
	if err != nil {
		return err
	}
	p.RentPrice = price
	return nil
}

// ApplyTo validates the patched listing and, when valid, writes the
// supplied fields onto car.
func (p CarPatch) ApplyTo(car *Car, now time.Time) error {
	price := car.RentPrice
	merged := CarInput{
		CarName:     car.CarName,
		Description: car.Description,
		Category:    string(car.Category),
		RentPrice:   &price,
		Location:    car.Location,
		ImageURL:    car.ImageURL,
	}
	if p.CarName != nil {
		merged.CarName = *p.CarName
	}
	if p.Description != nil {
		merged.Description = *p.Description
	}
	if p.Category != nil {
		merged.Category = *p.Category
	}
	if p.RentPrice != nil {
		merged.RentPrice = p.RentPrice
	}
	if p.Location != nil {
		merged.Location = *p.Location
	}
	if p.ImageURL != nil {
		merged.ImageURL = *p.ImageURL
	}

	if err := merged.Validate(); err != nil {
		return err
	}

	car.CarName = merged.CarName
	car.Description = merged.Description
	car.Category = Category(merged.Category)
	car.RentPrice = *merged.RentPrice
	car.Location = merged.Location
	car.ImageURL = merged.ImageURL
	car.UpdatedAt = now
	return nil
}
