package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CountAppointments counts appointments starting within [from, to),
// optionally filtered by provider.
func (q *Queries) CountAppointments(ctx context.Context, from, to time.Time, providerID uuid.UUID) (int, error) {
	sql := `SELECT COUNT(*) FROM appointments WHERE start_time >= $1 AND start_time < $2`
	args := []any{from, to}
	if providerID != uuid.Nil {
		sql += ` AND provider_id = $3`
		args = append(args, providerID)
	}
	var n int
	if err := q.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count appointments: %w", err)
	}
	return n, nil
}

// CountActiveClients counts active clients.
func (q *Queries) CountActiveClients(ctx context.Context) (int, error) {
	var n int
	if err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE is_active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count clients: %w", err)
	}
	return n, nil
}

// CountActiveProviders counts active providers.
func (q *Queries) CountActiveProviders(ctx context.Context) (int, error) {
	var n int
	if err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM providers WHERE is_active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count providers: %w", err)
	}
	return n, nil
}

// AppointmentStatusBreakdown counts appointments per status within [from, to).
func (q *Queries) AppointmentStatusBreakdown(ctx context.Context, from, to time.Time, providerID uuid.UUID) (map[string]int, error) {
	sql := `SELECT status, COUNT(*) FROM appointments WHERE start_time >= $1 AND start_time < $2`
	args := []any{from, to}
	if providerID != uuid.Nil {
		sql += ` AND provider_id = $3`
		args = append(args, providerID)
	}
	sql += ` GROUP BY status`

	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("store: status breakdown: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("store: status breakdown: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

// DayCount is one day's appointment tally.
type DayCount struct {
	Date  time.Time
	Count int
}

// AppointmentsPerDay groups appointment counts by calendar day within
// [from, to).
func (q *Queries) AppointmentsPerDay(ctx context.Context, from, to time.Time, providerID uuid.UUID) ([]DayCount, error) {
	sql := `SELECT date_trunc('day', start_time) AS day, COUNT(*)
		FROM appointments WHERE start_time >= $1 AND start_time < $2`
	args := []any{from, to}
	if providerID != uuid.Nil {
		sql += ` AND provider_id = $3`
		args = append(args, providerID)
	}
	sql += ` GROUP BY day ORDER BY day`

	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("store: appointments per day: %w", err)
	}
	defer rows.Close()

	var out []DayCount
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("store: appointments per day: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// ProviderRevenue is one provider's booked revenue and appointment count.
type ProviderRevenue struct {
	ProviderID   uuid.UUID
	ProviderName string
	Appointments int
	Revenue      float64
}

// RevenueByProvider sums non-cancelled appointment revenue per provider
// within [from, to).
func (q *Queries) RevenueByProvider(ctx context.Context, from, to time.Time) ([]ProviderRevenue, error) {
	rows, err := q.db.Query(ctx, `
		SELECT p.id, p.name, COUNT(a.id), COALESCE(SUM(a.revenue), 0)
		FROM providers p
		JOIN appointments a ON a.provider_id = p.id
		WHERE a.start_time >= $1 AND a.start_time < $2 AND a.status <> 'cancelled'
		GROUP BY p.id, p.name
		ORDER BY SUM(a.revenue) DESC NULLS LAST`, from, to)
	if err != nil {
		return nil, fmt.Errorf("store: revenue by provider: %w", err)
	}
	defer rows.Close()

	var out []ProviderRevenue
	for rows.Next() {
		var pr ProviderRevenue
		if err := rows.Scan(&pr.ProviderID, &pr.ProviderName, &pr.Appointments, &pr.Revenue); err != nil {
			return nil, fmt.Errorf("store: revenue by provider: %w", err)
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}
