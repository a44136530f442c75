package domain

import "github.com/google/uuid"

// NewID generates a new aggregate identifier.
func NewID() string {
	return uuid.NewString()
}
