package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/pkg/logging"
)

func newTestRegistry(m *memStore) *Registry {
	return NewRegistry(m, logging.Default())
}

func TestCreateAppointmentBooksAndFormats(t *testing.T) {
	m := newMemStore()
	provider := m.addProvider("Dr. Cohen", "", "09:00-17:00")
	client := m.addClient("John Smith")
	reg := newTestRegistry(m)

	result := reg.Execute(context.Background(), ActionCall{
		Name: ActionCreateAppointment,
		Args: Args{
			"provider_id": provider.ID.String(),
			"client_id":   client.ID.String(),
			"date":        "2025-03-10",
			"start_time":  "10:00",
			"end_time":    "10:30",
		},
	})

	if !result.Success {
		t.Fatalf("expected success, got error: %s", result.Error)
	}
	if !strings.Contains(result.Message, "Monday, March 10") {
		t.Errorf("confirmation missing day and date: %q", result.Message)
	}
	if !strings.Contains(result.Message, "10:00 AM") {
		t.Errorf("confirmation missing 12-hour time: %q", result.Message)
	}
	if !strings.Contains(result.Message, "John Smith with Dr. Cohen") {
		t.Errorf("confirmation missing names: %q", result.Message)
	}
	if m.lockCalls != 1 {
		t.Errorf("expected one provider lock acquisition, got %d", m.lockCalls)
	}
	if len(m.appointments) != 1 {
		t.Fatalf("expected one stored appointment, got %d", len(m.appointments))
	}
}

func TestCreateAppointmentRejectsOverlap(t *testing.T) {
	m := newMemStore()
	provider := m.addProvider("Dr. Cohen", "", "09:00-17:00")
	client := m.addClient("John Smith")
	reg := newTestRegistry(m)

	book := func(start, end string) Result {
		return reg.Execute(context.Background(), ActionCall{
			Name: ActionCreateAppointment,
			Args: Args{
				"provider_id": provider.ID.String(),
				"client_id":   client.ID.String(),
				"date":        "2025-03-10",
				"start_time":  start,
				"end_time":    end,
			},
		})
	}

	if first := book("10:00", "10:30"); !first.Success {
		t.Fatalf("first booking failed: %s", first.Error)
	}
	second := book("10:15", "10:45")
	if second.Success {
		t.Fatal("expected overlapping booking to fail")
	}
	if !strings.Contains(second.Error, "Dr. Cohen already has an appointment at this time") {
		t.Errorf("unexpected conflict error: %q", second.Error)
	}
	if len(m.appointments) != 1 {
		t.Errorf("overlapping booking must not be stored, have %d", len(m.appointments))
	}
}

func TestCreateAppointmentRejectsBlockedTime(t *testing.T) {
	m := newMemStore()
	provider := m.addProvider("Dr. Cohen", "", "09:00-17:00")
	client := m.addClient("John Smith")
	m.blocked[uuid.New()] = domain.BlockedTime{
		ID:         uuid.New(),
		ProviderID: provider.ID,
		Start:      time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		End:        time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC),
		BlockType:  domain.BlockLunch,
		Active:     true,
	}
	reg := newTestRegistry(m)

	result := reg.Execute(context.Background(), ActionCall{
		Name: ActionCreateAppointment,
		Args: Args{
			"provider_id": provider.ID.String(),
			"client_id":   client.ID.String(),
			"date":        "2025-03-10",
			"start_time":  "12:15",
			"end_time":    "12:45",
		},
	})

	if result.Success {
		t.Fatal("expected booking into blocked time to fail")
	}
	if !strings.Contains(result.Error, "Dr. Cohen is unavailable at this time (lunch)") {
		t.Errorf("conflict error must name the block reason: %q", result.Error)
	}
}

func TestCreateAppointmentUsesServicePriceAsRevenue(t *testing.T) {
	m := newMemStore()
	provider := m.addProvider("Dr. Cohen", "", "09:00-17:00")
	client := m.addClient("John Smith")
	svc := domain.Service{
		ID:              uuid.New(),
		ProviderID:      provider.ID,
		Name:            "Consultation",
		DurationMinutes: 30,
		Price:           120,
		Active:          true,
	}
	m.services[svc.ID] = svc
	reg := newTestRegistry(m)

	result := reg.Execute(context.Background(), ActionCall{
		Name: ActionCreateAppointment,
		Args: Args{
			"provider_id": provider.ID.String(),
			"client_id":   client.ID.String(),
			"service_id":  svc.ID.String(),
			"date":        "2025-03-10",
			"start_time":  "10:00",
			"end_time":    "10:30",
		},
	})
	if !result.Success {
		t.Fatalf("booking failed: %s", result.Error)
	}
	if !strings.Contains(result.Message, " - Consultation") {
		t.Errorf("confirmation missing service name: %q", result.Message)
	}
	for _, a := range m.appointments {
		if a.Revenue == nil || *a.Revenue != 120 {
			t.Errorf("expected revenue snapshot 120, got %v", a.Revenue)
		}
	}
}

func TestCreateAppointmentUnknownProvider(t *testing.T) {
	m := newMemStore()
	client := m.addClient("John Smith")
	reg := newTestRegistry(m)

	result := reg.Execute(context.Background(), ActionCall{
		Name: ActionCreateAppointment,
		Args: Args{
			"provider_id": uuid.NewString(),
			"client_id":   client.ID.String(),
			"date":        "2025-03-10",
			"start_time":  "10:00",
			"end_time":    "10:30",
		},
	})
	if result.Success {
		t.Fatal("expected missing provider to fail")
	}
	if result.Error != "Provider not found" {
		t.Errorf("unexpected error: %q", result.Error)
	}
}

func TestCheckAvailabilityReportsFreeHours(t *testing.T) {
	m := newMemStore()
	provider := m.addProvider("Dr. Cohen", "", "09:00-17:00")
	client := m.addClient("John Smith")
	m.addAppointment(provider.ID, client.ID,
		time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	reg := newTestRegistry(m)

	result := reg.Execute(context.Background(), ActionCall{
		Name: ActionCheckAvailability,
		Args: Args{"provider_id": provider.ID.String(), "date": "2025-03-10"},
	})
	if !result.Success {
		t.Fatalf("availability check failed: %s", result.Error)
	}
	if !strings.Contains(result.Message, "Monday, Mar 10: 7.0h free (out of 8h)") {
		t.Errorf("expected 7.0h free on the booked day, got: %q", result.Message)
	}
	if !strings.Contains(result.Message, "Tuesday, Mar 11: 8.0h free (fully available)") {
		t.Errorf("expected empty day to be fully available, got: %q", result.Message)
	}
}

func TestCheckAvailabilityFullyBooked(t *testing.T) {
	m := newMemStore()
	provider := m.addProvider("Dr. Cohen", "", "09:00-17:00")
	client := m.addClient("John Smith")
	m.addAppointment(provider.ID, client.ID,
		time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC))
	reg := newTestRegistry(m)

	result := reg.Execute(context.Background(), ActionCall{
		Name: ActionCheckAvailability,
		Args: Args{"provider_id": provider.ID.String(), "date": "2025-03-10"},
	})
	if !result.Success {
		t.Fatalf("availability check failed: %s", result.Error)
	}
	if !strings.Contains(result.Message, "Monday, Mar 10: Fully booked") {
		t.Errorf("expected fully booked day, got: %q", result.Message)
	}
}

func TestCancelAppointmentIsIdempotent(t *testing.T) {
	m := newMemStore()
	provider := m.addProvider("Dr. Cohen", "", "09:00-17:00")
	client := m.addClient("John Smith")
	appt := m.addAppointment(provider.ID, client.ID,
		time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC))
	reg := newTestRegistry(m)

	call := ActionCall{Name: ActionCancelAppointment, Args: Args{"appointment_id": appt.ID.String()}}

	for i := 0; i < 2; i++ {
		result := reg.Execute(context.Background(), call)
		if !result.Success {
			t.Fatalf("cancel attempt %d failed: %s", i+1, result.Error)
		}
		if got := m.appointments[appt.ID].Status; got != domain.StatusCancelled {
			t.Fatalf("cancel attempt %d left status %s", i+1, got)
		}
	}
}

func TestGetAppointmentsFormatsDayListing(t *testing.T) {
	m := newMemStore()
	provider := m.addProvider("Dr. Cohen", "", "09:00-17:00")
	client := m.addClient("John Smith")
	m.addAppointment(provider.ID, client.ID,
		time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC))
	reg := newTestRegistry(m)

	result := reg.Execute(context.Background(), ActionCall{
		Name: ActionGetAppointments,
		Args: Args{"date": "2025-03-10"},
	})
	if !result.Success {
		t.Fatalf("listing failed: %s", result.Error)
	}
	if !strings.Contains(result.Message, "10:00-10:30 - John Smith with Dr. Cohen") {
		t.Errorf("unexpected listing: %q", result.Message)
	}

	empty := reg.Execute(context.Background(), ActionCall{
		Name: ActionGetAppointments,
		Args: Args{"date": "2025-03-11"},
	})
	if !empty.Success || !strings.Contains(empty.Message, "No appointments on Tuesday, March 11") {
		t.Errorf("unexpected empty-day message: %q", empty.Message)
	}
}

func TestGetProviderScheduleListsBlocksAndAppointments(t *testing.T) {
	m := newMemStore()
	provider := m.addProvider("Dr. Cohen", "", "09:00-17:00")
	client := m.addClient("John Smith")
	m.addAppointment(provider.ID, client.ID,
		time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC))
	m.blocked[uuid.New()] = domain.BlockedTime{
		ID:         uuid.New(),
		ProviderID: provider.ID,
		Start:      time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		End:        time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC),
		Reason:     "staff meeting",
		Active:     true,
	}
	reg := newTestRegistry(m)

	result := reg.Execute(context.Background(), ActionCall{
		Name: ActionGetProviderSchedule,
		Args: Args{"provider_id": provider.ID.String(), "date": "2025-03-10"},
	})
	if !result.Success {
		t.Fatalf("schedule failed: %s", result.Error)
	}
	if !strings.Contains(result.Message, "10:00-10:30 - John Smith") {
		t.Errorf("schedule missing appointment: %q", result.Message)
	}
	if !strings.Contains(result.Message, "12:00-13:00 - staff meeting") {
		t.Errorf("schedule missing blocked time: %q", result.Message)
	}
}

func TestCreateProviderTitleNormalization(t *testing.T) {
	m := newMemStore()
	reg := newTestRegistry(m)

	result := reg.Execute(context.Background(), ActionCall{
		Name: ActionCreateProvider,
		Args: Args{"name": "Dr. Cohen"},
	})
	if !result.Success {
		t.Fatalf("create provider failed: %s", result.Error)
	}
	if !strings.Contains(result.Message, "Dr. Cohen (Doctor)") {
		t.Errorf("unexpected confirmation: %q", result.Message)
	}

	var created domain.Provider
	for _, p := range m.providers {
		created = p
	}
	if created.DisplayName() != "Dr. Cohen" {
		t.Errorf("display name must not duplicate the title, got %q", created.DisplayName())
	}
	if created.Color == "" {
		t.Error("provider should get a derived color")
	}
	if created.WorkingHours != domain.DefaultWorkingHours {
		t.Errorf("expected default working hours, got %q", created.WorkingHours)
	}

	dup := reg.Execute(context.Background(), ActionCall{
		Name: ActionCreateProvider,
		Args: Args{"name": "Dr. Cohen"},
	})
	if dup.Success || !strings.Contains(dup.Error, "Provider 'Dr. Cohen' already exists") {
		t.Errorf("expected duplicate rejection, got %+v", dup)
	}
}

func TestCreateClientRejectsDuplicate(t *testing.T) {
	m := newMemStore()
	m.addClient("John Smith")
	reg := newTestRegistry(m)

	result := reg.Execute(context.Background(), ActionCall{
		Name: ActionCreateClient,
		Args: Args{"name": "John Smith"},
	})
	if result.Success {
		t.Fatal("expected duplicate client to be rejected")
	}
	if result.Error != "Client 'John Smith' already exists" {
		t.Errorf("unexpected error: %q", result.Error)
	}
}

func TestSearchClientsMatchesSubstring(t *testing.T) {
	m := newMemStore()
	m.addClient("John Smith")
	m.addClient("Johanna Doe")
	m.addClient("Alice Brown")
	reg := newTestRegistry(m)

	result := reg.Execute(context.Background(), ActionCall{
		Name: ActionSearchClients,
		Args: Args{"query": "joh"},
	})
	if !result.Success {
		t.Fatalf("search failed: %s", result.Error)
	}
	if !strings.Contains(result.Message, "Found 2 client(s)") {
		t.Errorf("unexpected search result: %q", result.Message)
	}
	if strings.Contains(result.Message, "Alice Brown") {
		t.Errorf("search matched unrelated client: %q", result.Message)
	}

	miss := reg.Execute(context.Background(), ActionCall{
		Name: ActionSearchClients,
		Args: Args{"query": "zzz"},
	})
	if !miss.Success || miss.Message != "No clients found matching 'zzz'" {
		t.Errorf("unexpected miss result: %+v", miss)
	}
}

func TestRegistryRejectsUnknownAction(t *testing.T) {
	reg := newTestRegistry(newMemStore())

	result := reg.Execute(context.Background(), ActionCall{Name: "reticulate_splines"})
	if result.Success {
		t.Fatal("unknown action must fail")
	}
	if result.Error != "Unknown function: reticulate_splines" {
		t.Errorf("unexpected error: %q", result.Error)
	}
}

func TestRegistryValidatesArguments(t *testing.T) {
	reg := newTestRegistry(newMemStore())

	result := reg.Execute(context.Background(), ActionCall{
		Name: ActionCreateAppointment,
		Args: Args{"provider_id": "not-a-uuid"},
	})
	if result.Success {
		t.Fatal("malformed arguments must fail")
	}
	if !strings.Contains(result.Error, "provider_id") {
		t.Errorf("error should name the bad argument: %q", result.Error)
	}
}
