// Package analytics aggregates scheduling activity into dashboard figures.
package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yarimal/ai-crm/internal/store"
)

// Overview is the headline dashboard summary for a window.
type Overview struct {
	From            string         `json:"from"`
	To              string         `json:"to"`
	Appointments    int            `json:"appointments"`
	ActiveClients   int            `json:"activeClients"`
	ActiveProviders int            `json:"activeProviders"`
	StatusBreakdown map[string]int `json:"statusBreakdown"`
}

// DayCount is one day's appointment tally.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// ProviderRevenue is one provider's booked revenue in a window.
type ProviderRevenue struct {
	ProviderID   uuid.UUID `json:"providerId"`
	ProviderName string    `json:"providerName"`
	Appointments int       `json:"appointments"`
	Revenue      float64   `json:"revenue"`
}

// Service computes analytics over the scheduling store.
type Service struct {
	store *store.Store
}

// NewService creates the analytics service.
func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// Overview summarizes activity within [from, to), optionally scoped to one
// provider.
func (s *Service) Overview(ctx context.Context, from, to time.Time, providerID uuid.UUID) (*Overview, error) {
	q := s.store.Queries()

	appointments, err := q.CountAppointments(ctx, from, to, providerID)
	if err != nil {
		return nil, err
	}
	clients, err := q.CountActiveClients(ctx)
	if err != nil {
		return nil, err
	}
	providers, err := q.CountActiveProviders(ctx)
	if err != nil {
		return nil, err
	}
	breakdown, err := q.AppointmentStatusBreakdown(ctx, from, to, providerID)
	if err != nil {
		return nil, err
	}

	return &Overview{
		From:            from.Format("2006-01-02"),
		To:              to.Format("2006-01-02"),
		Appointments:    appointments,
		ActiveClients:   clients,
		ActiveProviders: providers,
		StatusBreakdown: breakdown,
	}, nil
}

// AppointmentsPerDay returns per-day appointment counts within [from, to).
func (s *Service) AppointmentsPerDay(ctx context.Context, from, to time.Time, providerID uuid.UUID) ([]DayCount, error) {
	rows, err := s.store.Queries().AppointmentsPerDay(ctx, from, to, providerID)
	if err != nil {
		return nil, err
	}
	out := make([]DayCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, DayCount{Date: r.Date.Format("2006-01-02"), Count: r.Count})
	}
	return out, nil
}

// RevenueByProvider returns per-provider revenue within [from, to).
func (s *Service) RevenueByProvider(ctx context.Context, from, to time.Time) ([]ProviderRevenue, error) {
	rows, err := s.store.Queries().RevenueByProvider(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]ProviderRevenue, 0, len(rows))
	for _, r := range rows {
		out = append(out, ProviderRevenue{
			ProviderID:   r.ProviderID,
			ProviderName: r.ProviderName,
			Appointments: r.Appointments,
			Revenue:      r.Revenue,
		})
	}
	return out, nil
}
