package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yarimal/ai-crm/internal/domain"
)

const serviceColumns = `id, provider_id, name, description, duration_minutes, price, is_active, created_at, updated_at`

func scanService(row pgx.Row) (domain.Service, error) {
	var s domain.Service
	err := row.Scan(&s.ID, &s.ProviderID, &s.Name, &s.Description,
		&s.DurationMinutes, &s.Price, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetService loads one service by id.
func (q *Queries) GetService(ctx context.Context, id uuid.UUID) (*domain.Service, error) {
	s, err := scanService(q.db.QueryRow(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Service not found")
	}
	if err != nil {
		return nil, fmt.Errorf("store: get service: %w", err)
	}
	return &s, nil
}

// ListActiveServices returns active services ordered by name.
func (q *Queries) ListActiveServices(ctx context.Context) ([]domain.Service, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list services: %w", err)
	}
	defer rows.Close()
	return collectServices(rows)
}

// ListServicesByProvider returns a provider's active services.
func (q *Queries) ListServicesByProvider(ctx context.Context, providerID uuid.UUID) ([]domain.Service, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE provider_id = $1 AND is_active ORDER BY name`,
		providerID)
	if err != nil {
		return nil, fmt.Errorf("store: list services by provider: %w", err)
	}
	defer rows.Close()
	return collectServices(rows)
}

// ServicesByID batch-loads services for the given id set.
func (q *Queries) ServicesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Service, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]domain.Service{}, nil
	}
	rows, err := q.db.Query(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("store: services by id: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]domain.Service, len(ids))
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("store: services by id: %w", err)
		}
		out[s.ID] = s
	}
	return out, rows.Err()
}

// CreateService inserts a service row.
func (q *Queries) CreateService(ctx context.Context, s *domain.Service) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	s.Active = true
	_, err := q.db.Exec(ctx, `
		INSERT INTO services (id, provider_id, name, description, duration_minutes, price, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)`,
		s.ID, s.ProviderID, s.Name, s.Description, s.DurationMinutes, s.Price, s.Active, now)
	if err != nil {
		return domain.Internal("failed to create service", err)
	}
	return nil
}

// UpdateService persists mutable service fields.
func (q *Queries) UpdateService(ctx context.Context, s *domain.Service) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.UpdatedAt = time.Now().UTC()
	tag, err := q.db.Exec(ctx, `
		UPDATE services SET name=$2, description=$3, duration_minutes=$4,
			price=$5, is_active=$6, updated_at=$7
		WHERE id=$1`,
		s.ID, s.Name, s.Description, s.DurationMinutes, s.Price, s.Active, s.UpdatedAt)
	if err != nil {
		return domain.Internal("failed to update service", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Service not found")
	}
	return nil
}

// DeactivateService soft-deletes a service.
func (q *Queries) DeactivateService(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE services SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return domain.Internal("failed to deactivate service", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Service not found")
	}
	return nil
}

func collectServices(rows pgx.Rows) ([]domain.Service, error) {
	var out []domain.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan service: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
