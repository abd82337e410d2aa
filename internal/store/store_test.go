package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yarimal/ai-crm/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestGetProviderNotFound(t *testing.T) {
	mock := newMock(t)
	q := NewQueries(mock)

	id := uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM providers WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := q.GetProvider(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestGetProvider(t *testing.T) {
	mock := newMock(t)
	q := NewQueries(mock)

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM providers WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "title", "specialty", "email", "phone", "color",
			"working_hours", "notes", "is_active", "created_at", "updated_at",
		}).AddRow(id, "Dr. Cohen", "", "Cardiology", "", "", "#abcdef",
			"09:00-17:00", "", true, now, now))

	p, err := q.GetProvider(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Cohen", p.Name)
	assert.Equal(t, "Dr. Cohen", p.DisplayName())
}

func TestFindActiveClientByNameMiss(t *testing.T) {
	mock := newMock(t)
	q := NewQueries(mock)

	mock.ExpectQuery(`SELECT .+ FROM clients WHERE name = \$1 AND is_active`).
		WithArgs("John Smith").
		WillReturnError(pgx.ErrNoRows)

	c, err := q.FindActiveClientByName(context.Background(), "John Smith")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestUpdateAppointmentStatusNotFound(t *testing.T) {
	mock := newMock(t)
	q := NewQueries(mock)

	id := uuid.New()
	mock.ExpectExec(`UPDATE appointments SET status = \$2`).
		WithArgs(id, "cancelled").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := q.UpdateAppointmentStatus(context.Background(), id, domain.StatusCancelled)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestUpdateAppointmentStatusRejectsUnknown(t *testing.T) {
	mock := newMock(t)
	q := NewQueries(mock)

	err := q.UpdateAppointmentStatus(context.Background(), uuid.New(), "pending")
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	mock := newMock(t)
	s := NewWithDB(mock)

	chatID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE chats SET updated_at = NOW\(\)`).
		WithArgs(chatID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectRollback() // deferred rollback after commit is a no-op

	err := s.WithTx(context.Background(), func(q *Queries) error {
		return q.TouchChat(context.Background(), chatID)
	})
	require.NoError(t, err)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	mock := newMock(t)
	s := NewWithDB(mock)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := s.WithTx(context.Background(), func(q *Queries) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestListAppointmentsBuildsFilter(t *testing.T) {
	mock := newMock(t)
	q := NewQueries(mock)

	providerID := uuid.New()
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	mock.ExpectQuery(`SELECT .+ FROM appointments WHERE status <> \$1 AND provider_id = \$2 AND start_time >= \$3 AND start_time < \$4 ORDER BY start_time LIMIT \$5`).
		WithArgs("cancelled", providerID, from, to, 20).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "provider_id", "client_id", "service_id", "title", "start_time",
			"end_time", "status", "revenue", "notes", "color", "created_at", "updated_at",
		}))

	_, err := q.ListAppointments(context.Background(), AppointmentFilter{
		ProviderID:       providerID,
		From:             from,
		To:               to,
		ExcludeCancelled: true,
		Limit:            20,
	})
	require.NoError(t, err)
}

func TestAcquireProviderLock(t *testing.T) {
	mock := newMock(t)
	q := NewQueries(mock)

	providerID := uuid.New()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs(providerID.String()).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, q.AcquireProviderLock(context.Background(), providerID))
}
