package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yarimal/ai-crm/internal/domain"
)

const appointmentColumns = `id, provider_id, client_id, service_id, title, start_time, end_time, status, revenue, notes, color, created_at, updated_at`

func scanAppointment(row pgx.Row) (domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(&a.ID, &a.ProviderID, &a.ClientID, &a.ServiceID, &a.Title,
		&a.Start, &a.End, &a.Status, &a.Revenue, &a.Notes, &a.Color,
		&a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// AppointmentFilter narrows ListAppointments. Zero values mean "no filter".
type AppointmentFilter struct {
	ProviderID       uuid.UUID
	ClientID         uuid.UUID
	From             time.Time
	To               time.Time
	ExcludeCancelled bool
	Limit            int
}

// ListAppointments returns appointments matching the filter ordered by
// start time.
func (q *Queries) ListAppointments(ctx context.Context, f AppointmentFilter) ([]domain.Appointment, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.ExcludeCancelled {
		where = append(where, "status <> "+arg(string(domain.StatusCancelled)))
	}
	if f.ProviderID != uuid.Nil {
		where = append(where, "provider_id = "+arg(f.ProviderID))
	}
	if f.ClientID != uuid.Nil {
		where = append(where, "client_id = "+arg(f.ClientID))
	}
	if !f.From.IsZero() {
		where = append(where, "start_time >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "start_time < "+arg(f.To))
	}

	sql := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	sql += ` ORDER BY start_time`
	if f.Limit > 0 {
		sql += ` LIMIT ` + arg(f.Limit)
	}

	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list appointments: %w", err)
	}
	defer rows.Close()

	var out []domain.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan appointment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAppointment loads one appointment by id.
func (q *Queries) GetAppointment(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	a, err := scanAppointment(q.db.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Appointment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("store: get appointment: %w", err)
	}
	return &a, nil
}

// FindAppointmentConflict returns the first non-cancelled appointment of
// the provider overlapping [start, end), or nil.
func (q *Queries) FindAppointmentConflict(ctx context.Context, providerID uuid.UUID, start, end time.Time) (*domain.Appointment, error) {
	a, err := scanAppointment(q.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE provider_id = $1 AND status <> $2 AND start_time < $3 AND end_time > $4
		ORDER BY start_time LIMIT 1`,
		providerID, string(domain.StatusCancelled), end, start))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: find appointment conflict: %w", err)
	}
	return &a, nil
}

// CreateAppointment inserts an appointment row.
func (q *Queries) CreateAppointment(ctx context.Context, a *domain.Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = domain.StatusScheduled
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	_, err := q.db.Exec(ctx, `
		INSERT INTO appointments (id, provider_id, client_id, service_id, title, start_time, end_time, status, revenue, notes, color, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)`,
		a.ID, a.ProviderID, a.ClientID, a.ServiceID, a.Title, a.Start, a.End,
		string(a.Status), a.Revenue, a.Notes, a.Color, now)
	if err != nil {
		return domain.Internal("failed to create appointment", err)
	}
	return nil
}

// UpdateAppointment persists mutable appointment fields.
func (q *Queries) UpdateAppointment(ctx context.Context, a *domain.Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.UpdatedAt = time.Now().UTC()
	tag, err := q.db.Exec(ctx, `
		UPDATE appointments SET provider_id=$2, client_id=$3, service_id=$4, title=$5,
			start_time=$6, end_time=$7, status=$8, revenue=$9, notes=$10, color=$11, updated_at=$12
		WHERE id=$1`,
		a.ID, a.ProviderID, a.ClientID, a.ServiceID, a.Title, a.Start, a.End,
		string(a.Status), a.Revenue, a.Notes, a.Color, a.UpdatedAt)
	if err != nil {
		return domain.Internal("failed to update appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Appointment not found")
	}
	return nil
}

// UpdateAppointmentStatus transitions an appointment's status. Setting an
// already-set status is a no-op at this layer, which keeps cancellation
// idempotent.
func (q *Queries) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) error {
	if !domain.ValidStatus(status) {
		return domain.Validation("unknown appointment status %q", status)
	}
	tag, err := q.db.Exec(ctx,
		`UPDATE appointments SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return domain.Internal("failed to update appointment status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Appointment not found")
	}
	return nil
}
