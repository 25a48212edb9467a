package models

import "strings"

// Identity is a caller verified by the identity provider.
type Identity struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// NormalizeEmail trims and lower-cases an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CanAccess reports whether id may act on a resource owned by ownerEmail.
func CanAccess(id Identity, ownerEmail string) bool {
	email := NormalizeEmail(id.Email)
	return email != "" && email == NormalizeEmail(ownerEmail)
}
