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

const providerColumns = `id, name, title, specialty, email, phone, color, working_hours, notes, is_active, created_at, updated_at`

func scanProvider(row pgx.Row) (domain.Provider, error) {
	var p domain.Provider
	err := row.Scan(&p.ID, &p.Name, &p.Title, &p.Specialty, &p.Email, &p.Phone,
		&p.Color, &p.WorkingHours, &p.Notes, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetProvider loads one provider by id.
func (q *Queries) GetProvider(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	p, err := scanProvider(q.db.QueryRow(ctx,
		`SELECT `+providerColumns+` FROM providers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Provider not found")
	}
	if err != nil {
		return nil, fmt.Errorf("store: get provider: %w", err)
	}
	return &p, nil
}

// ListActiveProviders returns active providers ordered by name.
func (q *Queries) ListActiveProviders(ctx context.Context) ([]domain.Provider, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+providerColumns+` FROM providers WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list providers: %w", err)
	}
	defer rows.Close()
	return collectProviders(rows)
}

// ProvidersByID batch-loads providers for the given id set.
func (q *Queries) ProvidersByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Provider, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]domain.Provider{}, nil
	}
	rows, err := q.db.Query(ctx,
		`SELECT `+providerColumns+` FROM providers WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("store: providers by id: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]domain.Provider, len(ids))
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("store: providers by id: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// FindActiveProviderByName returns the active provider with the exact name,
// or nil when none exists.
func (q *Queries) FindActiveProviderByName(ctx context.Context, name string) (*domain.Provider, error) {
	p, err := scanProvider(q.db.QueryRow(ctx,
		`SELECT `+providerColumns+` FROM providers WHERE name = $1 AND is_active`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: find provider by name: %w", err)
	}
	return &p, nil
}

// CreateProvider inserts a provider row.
func (q *Queries) CreateProvider(ctx context.Context, p *domain.Provider) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Active = true
	_, err := q.db.Exec(ctx, `
		INSERT INTO providers (id, name, title, specialty, email, phone, color, working_hours, notes, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)`,
		p.ID, p.Name, p.Title, p.Specialty, p.Email, p.Phone, p.Color, p.WorkingHours, p.Notes, p.Active, now)
	if err != nil {
		return domain.Internal("failed to create provider", err)
	}
	return nil
}

// UpdateProvider persists mutable provider fields.
func (q *Queries) UpdateProvider(ctx context.Context, p *domain.Provider) error {
	p.UpdatedAt = time.Now().UTC()
	tag, err := q.db.Exec(ctx, `
		UPDATE providers SET name=$2, title=$3, specialty=$4, email=$5, phone=$6,
			color=$7, working_hours=$8, notes=$9, is_active=$10, updated_at=$11
		WHERE id=$1`,
		p.ID, p.Name, p.Title, p.Specialty, p.Email, p.Phone,
		p.Color, p.WorkingHours, p.Notes, p.Active, p.UpdatedAt)
	if err != nil {
		return domain.Internal("failed to update provider", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Provider not found")
	}
	return nil
}

// DeactivateProvider soft-deletes a provider.
func (q *Queries) DeactivateProvider(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE providers SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return domain.Internal("failed to deactivate provider", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Provider not found")
	}
	return nil
}

func collectProviders(rows pgx.Rows) ([]domain.Provider, error) {
	var out []domain.Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan provider: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
