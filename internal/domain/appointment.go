package domain

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus enumerates the appointment lifecycle.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
	StatusNoShow    AppointmentStatus = "no_show"
)

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Appointment links a provider, a client and a time range.
type Appointment struct {
	ID         uuid.UUID         `json:"id"`
	ProviderID uuid.UUID         `json:"providerId"`
	ClientID   uuid.UUID         `json:"clientId"`
	ServiceID  *uuid.UUID        `json:"serviceId,omitempty"`
	Title      string            `json:"title"`
	Start      time.Time         `json:"startTime"`
	End        time.Time         `json:"endTime"`
	Status     AppointmentStatus `json:"status"`
	Revenue    *float64          `json:"revenue,omitempty"`
	Notes      string            `json:"notes,omitempty"`
	Color      string            `json:"color,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// Validate checks the time-range invariant.
func (a Appointment) Validate() error {
	if !a.End.After(a.Start) {
		return Validation("appointment end time must be after start time")
	}
	return nil
}

// Overlaps reports whether the appointment intersects [start, end).
func (a Appointment) Overlaps(start, end time.Time) bool {
	return a.Start.Before(end) && a.End.After(start)
}

// DisplayColor resolves the calendar color, falling back to the provider's.
func (a Appointment) DisplayColor(provider *Provider) string {
	if a.Color != "" {
		return a.Color
	}
	if provider != nil && provider.Color != "" {
		return provider.Color
	}
	return "#1a73e8"
}
