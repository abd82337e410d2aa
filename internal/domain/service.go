package domain

import (
	"time"

	"github.com/google/uuid"
)

// Service is a priced, fixed-duration offering owned by one provider.
type Service struct {
	ID              uuid.UUID `json:"id"`
	ProviderID      uuid.UUID `json:"providerId"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"durationMinutes"`
	Price           float64   `json:"price"`
	Active          bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Validate checks the service invariants.
func (s Service) Validate() error {
	if s.Name == "" {
		return Validation("service name is required")
	}
	if s.DurationMinutes <= 0 {
		return Validation("service duration must be a positive number of minutes")
	}
	if s.Price < 0 {
		return Validation("service price cannot be negative")
	}
	return nil
}
