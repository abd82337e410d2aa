package assistant

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/internal/store"
)

// memStore is an in-memory Store/Queries used across the package tests.
type memStore struct {
	providers    map[uuid.UUID]domain.Provider
	clients      map[uuid.UUID]domain.Client
	services     map[uuid.UUID]domain.Service
	appointments map[uuid.UUID]domain.Appointment
	blocked      map[uuid.UUID]domain.BlockedTime
	chats        map[uuid.UUID]domain.Chat
	messages     []domain.Message

	lockCalls int
}

func newMemStore() *memStore {
	return &memStore{
		providers:    map[uuid.UUID]domain.Provider{},
		clients:      map[uuid.UUID]domain.Client{},
		services:     map[uuid.UUID]domain.Service{},
		appointments: map[uuid.UUID]domain.Appointment{},
		blocked:      map[uuid.UUID]domain.BlockedTime{},
		chats:        map[uuid.UUID]domain.Chat{},
	}
}

func (m *memStore) Queries() Queries { return m }

func (m *memStore) WithTx(ctx context.Context, fn func(q Queries) error) error {
	return fn(m)
}

func (m *memStore) addProvider(name, title, hours string) domain.Provider {
	p := domain.Provider{
		ID:           uuid.New(),
		Name:         name,
		Title:        title,
		WorkingHours: hours,
		Color:        domain.ColorForName(name),
		Active:       true,
	}
	m.providers[p.ID] = p
	return p
}

func (m *memStore) addClient(name string) domain.Client {
	c := domain.Client{ID: uuid.New(), Name: name, Active: true}
	m.clients[c.ID] = c
	return c
}

func (m *memStore) addAppointment(providerID, clientID uuid.UUID, start, end time.Time) domain.Appointment {
	a := domain.Appointment{
		ID:         uuid.New(),
		ProviderID: providerID,
		ClientID:   clientID,
		Start:      start,
		End:        end,
		Status:     domain.StatusScheduled,
	}
	m.appointments[a.ID] = a
	return a
}

func (m *memStore) GetProvider(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	p, ok := m.providers[id]
	if !ok {
		return nil, domain.NotFound("Provider not found")
	}
	return &p, nil
}

func (m *memStore) ListActiveProviders(ctx context.Context) ([]domain.Provider, error) {
	var out []domain.Provider
	for _, p := range m.providers {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) ProvidersByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Provider, error) {
	out := map[uuid.UUID]domain.Provider{}
	for _, id := range ids {
		if p, ok := m.providers[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *memStore) FindActiveProviderByName(ctx context.Context, name string) (*domain.Provider, error) {
	for _, p := range m.providers {
		if p.Active && p.Name == name {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateProvider(ctx context.Context, p *domain.Provider) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Active = true
	m.providers[p.ID] = *p
	return nil
}

func (m *memStore) GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, domain.NotFound("Client not found")
	}
	return &c, nil
}

func (m *memStore) ListActiveClients(ctx context.Context, limit int) ([]domain.Client, error) {
	var out []domain.Client
	for _, c := range m.clients {
		if c.Active {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ClientsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Client, error) {
	out := map[uuid.UUID]domain.Client{}
	for _, id := range ids {
		if c, ok := m.clients[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *memStore) FindActiveClientByName(ctx context.Context, name string) (*domain.Client, error) {
	for _, c := range m.clients {
		if c.Active && c.Name == name {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memStore) SearchClients(ctx context.Context, query string, limit int) ([]domain.Client, error) {
	var out []domain.Client
	for _, c := range m.clients {
		if c.Active && strings.Contains(strings.ToLower(c.Name), strings.ToLower(query)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) CreateClient(ctx context.Context, c *domain.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Active = true
	m.clients[c.ID] = *c
	return nil
}

func (m *memStore) GetService(ctx context.Context, id uuid.UUID) (*domain.Service, error) {
	s, ok := m.services[id]
	if !ok {
		return nil, domain.NotFound("Service not found")
	}
	return &s, nil
}

func (m *memStore) ListActiveServices(ctx context.Context) ([]domain.Service, error) {
	var out []domain.Service
	for _, s := range m.services {
		if s.Active {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) GetAppointment(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, domain.NotFound("Appointment not found")
	}
	return &a, nil
}

func (m *memStore) ListAppointments(ctx context.Context, f store.AppointmentFilter) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, a := range m.appointments {
		if f.ExcludeCancelled && a.Status == domain.StatusCancelled {
			continue
		}
		if f.ProviderID != uuid.Nil && a.ProviderID != f.ProviderID {
			continue
		}
		if f.ClientID != uuid.Nil && a.ClientID != f.ClientID {
			continue
		}
		if !f.From.IsZero() && a.Start.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !a.Start.Before(f.To) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memStore) FindAppointmentConflict(ctx context.Context, providerID uuid.UUID, start, end time.Time) (*domain.Appointment, error) {
	for _, a := range m.appointments {
		if a.ProviderID != providerID || a.Status == domain.StatusCancelled {
			continue
		}
		if a.Overlaps(start, end) {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateAppointment(ctx context.Context, a *domain.Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = domain.StatusScheduled
	}
	m.appointments[a.ID] = *a
	return nil
}

func (m *memStore) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) error {
	a, ok := m.appointments[id]
	if !ok {
		return domain.NotFound("Appointment not found")
	}
	a.Status = status
	m.appointments[id] = a
	return nil
}

func (m *memStore) ListBlockedTimes(ctx context.Context, f store.BlockedTimeFilter) ([]domain.BlockedTime, error) {
	var out []domain.BlockedTime
	for _, b := range m.blocked {
		if !b.Active {
			continue
		}
		if f.ProviderID != uuid.Nil && b.ProviderID != f.ProviderID {
			continue
		}
		if !b.Recurring {
			if !f.To.IsZero() && !b.Start.Before(f.To) {
				continue
			}
			if !f.From.IsZero() && !b.End.After(f.From) {
				continue
			}
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *memStore) GetChat(ctx context.Context, id uuid.UUID) (*domain.Chat, error) {
	c, ok := m.chats[id]
	if !ok {
		return nil, domain.NotFound("Chat not found")
	}
	return &c, nil
}

func (m *memStore) CreateChat(ctx context.Context, c *domain.Chat) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	m.chats[c.ID] = *c
	return nil
}

func (m *memStore) TouchChat(ctx context.Context, id uuid.UUID) error {
	c, ok := m.chats[id]
	if !ok {
		return domain.NotFound("Chat not found")
	}
	c.UpdatedAt = time.Now().UTC()
	m.chats[id] = c
	return nil
}

func (m *memStore) SetChatCacheName(ctx context.Context, id uuid.UUID, cacheName string) error {
	c, ok := m.chats[id]
	if !ok {
		return domain.NotFound("Chat not found")
	}
	c.CacheName = cacheName
	m.chats[id] = c
	return nil
}

func (m *memStore) CreateMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	msg.CreatedAt = time.Now().UTC()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memStore) ListMessages(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	var out []domain.Message
	for _, msg := range m.messages {
		if msg.ChatID == chatID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memStore) AcquireProviderLock(ctx context.Context, providerID uuid.UUID) error {
	m.lockCalls++
	return nil
}

// fakeModel is a scripted ModelClient.
type fakeModel struct {
	resp        *Response
	err         error
	lastRequest Request

	cacheName  string
	createErr  error
	validNames map[string]bool
}

func (f *fakeModel) GenerateResponse(ctx context.Context, req Request) (*Response, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &Response{Text: "ok", Model: "fake"}, nil
}

func (f *fakeModel) CreateCache(ctx context.Context, staticInstructions string, ttl time.Duration) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.cacheName, nil
}

func (f *fakeModel) ValidateCache(ctx context.Context, name string) bool {
	return f.validNames[name]
}
