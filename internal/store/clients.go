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

const clientColumns = `id, name, email, phone, date_of_birth, address, notes, is_active, created_at, updated_at`

func scanClient(row pgx.Row) (domain.Client, error) {
	var c domain.Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.DateOfBirth,
		&c.Address, &c.Notes, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetClient loads one client by id.
func (q *Queries) GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	c, err := scanClient(q.db.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Client not found")
	}
	if err != nil {
		return nil, fmt.Errorf("store: get client: %w", err)
	}
	return &c, nil
}

// ListActiveClients returns up to limit active clients ordered by name.
func (q *Queries) ListActiveClients(ctx context.Context, limit int) ([]domain.Client, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE is_active ORDER BY name LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list clients: %w", err)
	}
	defer rows.Close()
	return collectClients(rows)
}

// ClientsByID batch-loads clients for the given id set.
func (q *Queries) ClientsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Client, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]domain.Client{}, nil
	}
	rows, err := q.db.Query(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("store: clients by id: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]domain.Client, len(ids))
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("store: clients by id: %w", err)
		}
		out[c.ID] = c
	}
	return out, rows.Err()
}

// FindActiveClientByName returns the active client with the exact name, or
// nil when none exists. Uniqueness is only enforced among active clients.
func (q *Queries) FindActiveClientByName(ctx context.Context, name string) (*domain.Client, error) {
	c, err := scanClient(q.db.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE name = $1 AND is_active`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: find client by name: %w", err)
	}
	return &c, nil
}

// SearchClients performs a case-insensitive substring match on name.
func (q *Queries) SearchClients(ctx context.Context, query string, limit int) ([]domain.Client, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+clientColumns+` FROM clients
		 WHERE is_active AND name ILIKE '%' || $1 || '%'
		 ORDER BY name LIMIT $2`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search clients: %w", err)
	}
	defer rows.Close()
	return collectClients(rows)
}

// CreateClient inserts a client row.
func (q *Queries) CreateClient(ctx context.Context, c *domain.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	c.Active = true
	_, err := q.db.Exec(ctx, `
		INSERT INTO clients (id, name, email, phone, date_of_birth, address, notes, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)`,
		c.ID, c.Name, c.Email, c.Phone, c.DateOfBirth, c.Address, c.Notes, c.Active, now)
	if err != nil {
		return domain.Internal("failed to create client", err)
	}
	return nil
}

// UpdateClient persists mutable client fields.
func (q *Queries) UpdateClient(ctx context.Context, c *domain.Client) error {
	c.UpdatedAt = time.Now().UTC()
	tag, err := q.db.Exec(ctx, `
		UPDATE clients SET name=$2, email=$3, phone=$4, date_of_birth=$5,
			address=$6, notes=$7, is_active=$8, updated_at=$9
		WHERE id=$1`,
		c.ID, c.Name, c.Email, c.Phone, c.DateOfBirth, c.Address, c.Notes, c.Active, c.UpdatedAt)
	if err != nil {
		return domain.Internal("failed to update client", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Client not found")
	}
	return nil
}

// DeactivateClient soft-deletes a client.
func (q *Queries) DeactivateClient(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE clients SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return domain.Internal("failed to deactivate client", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Client not found")
	}
	return nil
}

func collectClients(rows pgx.Rows) ([]domain.Client, error) {
	var out []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
