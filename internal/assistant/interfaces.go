package assistant

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/internal/store"
)

// Queries is the slice of persistence the assistant core needs. It is
// satisfied by *store.Queries and by the in-memory fakes used in tests.
type Queries interface {
	GetProvider(ctx context.Context, id uuid.UUID) (*domain.Provider, error)
	ListActiveProviders(ctx context.Context) ([]domain.Provider, error)
	ProvidersByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Provider, error)
	FindActiveProviderByName(ctx context.Context, name string) (*domain.Provider, error)
	CreateProvider(ctx context.Context, p *domain.Provider) error

	GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	ListActiveClients(ctx context.Context, limit int) ([]domain.Client, error)
	ClientsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Client, error)
	FindActiveClientByName(ctx context.Context, name string) (*domain.Client, error)
	SearchClients(ctx context.Context, query string, limit int) ([]domain.Client, error)
	CreateClient(ctx context.Context, c *domain.Client) error

	GetService(ctx context.Context, id uuid.UUID) (*domain.Service, error)
	ListActiveServices(ctx context.Context) ([]domain.Service, error)

	GetAppointment(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	ListAppointments(ctx context.Context, f store.AppointmentFilter) ([]domain.Appointment, error)
	FindAppointmentConflict(ctx context.Context, providerID uuid.UUID, start, end time.Time) (*domain.Appointment, error)
	CreateAppointment(ctx context.Context, a *domain.Appointment) error
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) error

	ListBlockedTimes(ctx context.Context, f store.BlockedTimeFilter) ([]domain.BlockedTime, error)

	GetChat(ctx context.Context, id uuid.UUID) (*domain.Chat, error)
	CreateChat(ctx context.Context, c *domain.Chat) error
	TouchChat(ctx context.Context, id uuid.UUID) error
	SetChatCacheName(ctx context.Context, id uuid.UUID, cacheName string) error
	CreateMessage(ctx context.Context, m *domain.Message) error
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error)

	AcquireProviderLock(ctx context.Context, providerID uuid.UUID) error
}

// Store hands out query handles and transaction scopes.
type Store interface {
	Queries() Queries
	WithTx(ctx context.Context, fn func(q Queries) error) error
}

// NewStore adapts the pgx-backed store to the assistant's interfaces.
func NewStore(s *store.Store) Store {
	return storeAdapter{s: s}
}

type storeAdapter struct {
	s *store.Store
}

func (a storeAdapter) Queries() Queries {
	return a.s.Queries()
}

func (a storeAdapter) WithTx(ctx context.Context, fn func(q Queries) error) error {
	return a.s.WithTx(ctx, func(q *store.Queries) error {
		return fn(q)
	})
}
