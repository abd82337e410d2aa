package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yarimal/ai-crm/internal/domain"
)

// DBTX is the subset of pgx capabilities shared by pools, transactions and
// mocks. All queries run through it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Beginner is a DBTX that can also open transactions (a pool or a mock).
type Beginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store provides transactional access to the scheduling schema.
type Store struct {
	db Beginner
}

// New creates a store backed by a pgx pool.
func New(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("store: pgx pool required")
	}
	return &Store{db: pool}
}

// NewWithDB allows injecting pgxmock in tests.
func NewWithDB(db Beginner) *Store {
	return &Store{db: db}
}

// Queries returns an auto-commit query handle for plain reads.
func (s *Store) Queries() *Queries {
	return &Queries{db: s.db}
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise; every row change made by fn is
// all-or-nothing.
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Internal("failed to open transaction", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&Queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Internal("failed to commit transaction", err)
	}
	return nil
}

// Queries bundles all row-level operations over one DBTX.
type Queries struct {
	db DBTX
}

// NewQueries wraps a raw DBTX, used by tests.
func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

// AcquireProviderLock takes a transaction-scoped advisory lock serializing
// writers on one provider's calendar. Only meaningful inside WithTx.
func (q *Queries) AcquireProviderLock(ctx context.Context, providerID uuid.UUID) error {
	if _, err := q.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, providerID.String()); err != nil {
		return fmt.Errorf("store: acquire provider lock: %w", err)
	}
	return nil
}
