package services

import (
	"context"
	"errors"

	"github.com/chachabrian/carrental-backend/internal/models"
)

var (
	// ErrTokenExpired is returned for well-formed tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers every other verification failure.
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenVerifier turns a bearer credential into a verified identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
}
