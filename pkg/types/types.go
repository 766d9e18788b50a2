package types

import (
	"github.com/google/uuid"
)

// NewID generates a unique identifier for server-assigned records.
func NewID() string {
	return uuid.NewString()
}

// Common response types

type ErrorResponse struct {
	Error string `json:"error"`
}
