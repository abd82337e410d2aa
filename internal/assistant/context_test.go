package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yarimal/ai-crm/internal/domain"
)

func TestContextBuilderEmptySectionsAreExplicit(t *testing.T) {
	m := newMemStore()
	cb := NewContextBuilder(50)

	snapshot, err := cb.Build(context.Background(), m, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	for _, want := range []string{
		"PROVIDERS (Staff/Doctors):",
		"- No providers registered yet",
		"CLIENTS:",
		"- No clients registered yet",
		"SERVICES:",
		"- No services registered yet",
		"UPCOMING APPOINTMENTS (Next 2 weeks):",
		"- No upcoming appointments",
		"BLOCKED TIMES (Provider unavailable):",
		"- No blocked times",
	} {
		if !strings.Contains(snapshot, want) {
			t.Errorf("snapshot missing %q:\n%s", want, snapshot)
		}
	}
}

func TestContextBuilderResolvesNames(t *testing.T) {
	m := newMemStore()
	provider := m.addProvider("Dr. Cohen", "", "09:00-17:00")
	client := m.addClient("John Smith")
	client.Phone = "555-0101"
	m.clients[client.ID] = client
	m.addAppointment(provider.ID, client.ID,
		time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 12, 10, 30, 0, 0, time.UTC))

	cb := NewContextBuilder(50)
	snapshot, err := cb.Build(context.Background(), m, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if !strings.Contains(snapshot, "Dr. Cohen [ID: "+provider.ID.String()+"]") {
		t.Errorf("provider line missing:\n%s", snapshot)
	}
	if !strings.Contains(snapshot, "John Smith [ID: "+client.ID.String()+"] - Phone: 555-0101") {
		t.Errorf("client line missing:\n%s", snapshot)
	}
	if !strings.Contains(snapshot, "2025-03-12 10:00-10:30 | Provider: Dr. Cohen | Client: John Smith") {
		t.Errorf("appointment line missing:\n%s", snapshot)
	}
}

func TestContextBuilderExpandsRecurringBlocks(t *testing.T) {
	m := newMemStore()
	provider := m.addProvider("Dr. Cohen", "", "09:00-17:00")
	m.blocked[uuid.New()] = domain.BlockedTime{
		ID:         uuid.New(),
		ProviderID: provider.ID,
		Start:      time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		End:        time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC),
		Reason:     "lunch",
		Recurring:  true,
		Pattern:    domain.RecurWeekly,
		Active:     true,
	}

	cb := NewContextBuilder(50)
	snapshot, err := cb.Build(context.Background(), m, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	// A weekly block over a 14-day window yields exactly two occurrences.
	if got := strings.Count(snapshot, "Reason: lunch (Recurring: weekly)"); got != 2 {
		t.Errorf("expected 2 weekly occurrences, found %d:\n%s", got, snapshot)
	}
	if !strings.Contains(snapshot, "2025-03-10 12:00-13:00") || !strings.Contains(snapshot, "2025-03-17 12:00-13:00") {
		t.Errorf("occurrences at wrong offsets:\n%s", snapshot)
	}
}

func TestContextBuilderBoundsClientList(t *testing.T) {
	m := newMemStore()
	for i := 0; i < 5; i++ {
		m.addClient(string(rune('A'+i)) + " Client")
	}

	cb := NewContextBuilder(3)
	snapshot, err := cb.Build(context.Background(), m, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if got := strings.Count(snapshot, " Client [ID: "); got != 3 {
		t.Errorf("expected 3 client lines, got %d:\n%s", got, snapshot)
	}
}

func TestDateReferenceLabels(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	ref := DateReference(now)

	for _, want := range []string{
		"TODAY: Monday, March 10, 2025 (2025-03-10)",
		"CURRENT TIME: 09:30",
		"Monday: 2025-03-10 (March 10) (TODAY)",
		"Tuesday: 2025-03-11 (March 11) (TOMORROW)",
		"Sunday: 2025-03-16 (March 16) (THIS WEEK)",
		"Monday: 2025-03-17 (March 17) (NEXT WEEK)",
		"Sunday: 2025-03-23 (March 23) (NEXT WEEK)",
	} {
		if !strings.Contains(ref, want) {
			t.Errorf("date reference missing %q:\n%s", want, ref)
		}
	}
}

func TestDynamicContextFallsBackWhenEmpty(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	got := DynamicContext(now, "")
	if !strings.Contains(got, "No data available.") {
		t.Errorf("empty snapshot should note missing data:\n%s", got)
	}
	if !strings.Contains(got, "=== CURRENT DATA ===") || !strings.Contains(got, "=== END DATA ===") {
		t.Errorf("data block markers missing:\n%s", got)
	}
}
