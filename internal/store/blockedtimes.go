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

const blockedColumns = `id, provider_id, start_time, end_time, block_type, reason, is_recurring, recurrence_pattern, recurrence_end_date, is_active, created_at, updated_at`

func scanBlockedTime(row pgx.Row) (domain.BlockedTime, error) {
	var (
		b       domain.BlockedTime
		pattern string
	)
	err := row.Scan(&b.ID, &b.ProviderID, &b.Start, &b.End, &b.BlockType,
		&b.Reason, &b.Recurring, &pattern, &b.RecurrenceEnd, &b.Active,
		&b.CreatedAt, &b.UpdatedAt)
	b.Pattern = domain.RecurrencePattern(pattern)
	return b, err
}

// BlockedTimeFilter narrows ListBlockedTimes. Recurring templates whose
// series begins before From are still returned so callers can expand them.
type BlockedTimeFilter struct {
	ProviderID uuid.UUID
	From       time.Time
	To         time.Time
}

// ListBlockedTimes returns active blocked times matching the filter. A row
// matches when its own interval intersects [From, To) or when it recurs and
// its series started before To.
func (q *Queries) ListBlockedTimes(ctx context.Context, f BlockedTimeFilter) ([]domain.BlockedTime, error) {
	var (
		where = []string{"is_active"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.ProviderID != uuid.Nil {
		where = append(where, "provider_id = "+arg(f.ProviderID))
	}
	if !f.To.IsZero() {
		where = append(where, "start_time < "+arg(f.To))
	}
	if !f.From.IsZero() {
		where = append(where, "(end_time > "+arg(f.From)+" OR is_recurring)")
	}

	sql := `SELECT ` + blockedColumns + ` FROM blocked_times WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY start_time`

	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list blocked times: %w", err)
	}
	defer rows.Close()

	var out []domain.BlockedTime
	for rows.Next() {
		b, err := scanBlockedTime(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan blocked time: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetBlockedTime loads one blocked time by id.
func (q *Queries) GetBlockedTime(ctx context.Context, id uuid.UUID) (*domain.BlockedTime, error) {
	b, err := scanBlockedTime(q.db.QueryRow(ctx,
		`SELECT `+blockedColumns+` FROM blocked_times WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Blocked time not found")
	}
	if err != nil {
		return nil, fmt.Errorf("store: get blocked time: %w", err)
	}
	return &b, nil
}

// CreateBlockedTime inserts a blocked time row.
func (q *Queries) CreateBlockedTime(ctx context.Context, b *domain.BlockedTime) error {
	if !b.End.After(b.Start) {
		return domain.Validation("blocked time end must be after start")
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.BlockType == "" {
		b.BlockType = domain.BlockOther
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	b.Active = true
	_, err := q.db.Exec(ctx, `
		INSERT INTO blocked_times (id, provider_id, start_time, end_time, block_type, reason, is_recurring, recurrence_pattern, recurrence_end_date, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)`,
		b.ID, b.ProviderID, b.Start, b.End, string(b.BlockType), b.Reason,
		b.Recurring, string(b.Pattern), b.RecurrenceEnd, b.Active, now)
	if err != nil {
		return domain.Internal("failed to create blocked time", err)
	}
	return nil
}

// UpdateBlockedTime persists mutable blocked time fields.
func (q *Queries) UpdateBlockedTime(ctx context.Context, b *domain.BlockedTime) error {
	if !b.End.After(b.Start) {
		return domain.Validation("blocked time end must be after start")
	}
	b.UpdatedAt = time.Now().UTC()
	tag, err := q.db.Exec(ctx, `
		UPDATE blocked_times SET start_time=$2, end_time=$3, block_type=$4, reason=$5,
			is_recurring=$6, recurrence_pattern=$7, recurrence_end_date=$8, is_active=$9, updated_at=$10
		WHERE id=$1`,
		b.ID, b.Start, b.End, string(b.BlockType), b.Reason,
		b.Recurring, string(b.Pattern), b.RecurrenceEnd, b.Active, b.UpdatedAt)
	if err != nil {
		return domain.Internal("failed to update blocked time", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Blocked time not found")
	}
	return nil
}

// DeactivateBlockedTime soft-deletes a blocked time.
func (q *Queries) DeactivateBlockedTime(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE blocked_times SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return domain.Internal("failed to deactivate blocked time", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Blocked time not found")
	}
	return nil
}
