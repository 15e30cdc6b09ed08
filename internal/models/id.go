package models

import "github.com/google/uuid"

// NewID returns an opaque, ULID-like identifier for templates, instances,
// and plans.
func NewID() string {
	return uuid.NewString()
}
