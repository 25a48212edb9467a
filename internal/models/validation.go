package models

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors holds one message per violated field, in field order.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return "validation failed: " + strings.Join(v, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			_, err := ParseCategory(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// fieldMessages maps json field -> failing tag -> message. The "" entry
// is used for any other tag on that field.
var fieldMessages = map[string]map[string]string{
	"carName": {
		"required": "Car name is required",
		"":         "Car name must be at least 3 characters long",
	},
	"description": {
		"required": "Description is required",
		"":         "Description must be at least 20 characters long",
	},
	"category": {
		"required": "Category is required",
		"":         "Category must be one of: Sedan, SUV, Hatchback, Luxury, Electric",
	},
	"rentPrice": {
		"required": "Rent price is required",
		"":         "Rent price must be a positive number",
	},
	"location": {"": "Location is required"},
	"imageUrl": {"": "Image URL is required"},
	"carId":    {"": "Car ID is required"},
}

func validateStruct(s any) error {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, messageFor(fe.Field(), fe.Tag()))
	}
	return out
}

func messageFor(field, tag string) string {
	msgs, ok := fieldMessages[field]
	if !ok {
		return field + " is invalid"
	}
	if msg, ok := msgs[tag]; ok {
		return msg
	}
	return msgs[""]
}

// BookingInput is the payload for reserving a car.
type BookingInput struct {
	CarID string `json:"carId" validate:"required"`
}

func (in *BookingInput) Validate() error {
	in.CarID = strings.TrimSpace(in.CarID)
	return validateStruct(in)
}
