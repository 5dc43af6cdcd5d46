// Package idgen centralizes UUID generation for connection and request
// identifiers, so every stable identifier in the server comes from one
// place.
package idgen

import "github.com/google/uuid"

// New returns a fresh random (v4) UUID string.
func New() string {
	return uuid.NewString()
}
