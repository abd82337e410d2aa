package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/internal/store"
)

const snapshotWindowDays = 14

// ContextBuilder produces the live domain snapshot fed to the model as
// world knowledge. Output is deterministic for a given store state and
// "now" instant, and every section emits an explicit "none" line when
// empty so the model cannot read absence as a lookup failure.
type ContextBuilder struct {
	clientLimit int
}

// NewContextBuilder builds a snapshot builder; clientLimit bounds the
// CLIENTS section.
func NewContextBuilder(clientLimit int) *ContextBuilder {
	if clientLimit <= 0 {
		clientLimit = 50
	}
	return &ContextBuilder{clientLimit: clientLimit}
}

// Build assembles the full snapshot for the window [today, today+14d).
func (cb *ContextBuilder) Build(ctx context.Context, q Queries, now time.Time) (string, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	horizon := today.AddDate(0, 0, snapshotWindowDays)

	var b strings.Builder
	if err := cb.writeProviders(ctx, q, &b); err != nil {
		return "", err
	}
	if err := cb.writeClients(ctx, q, &b); err != nil {
		return "", err
	}
	if err := cb.writeServices(ctx, q, &b); err != nil {
		return "", err
	}
	if err := cb.writeAppointments(ctx, q, &b, today, horizon); err != nil {
		return "", err
	}
	if err := cb.writeBlockedTimes(ctx, q, &b, today, horizon); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (cb *ContextBuilder) writeProviders(ctx context.Context, q Queries, b *strings.Builder) error {
	providers, err := q.ListActiveProviders(ctx)
	if err != nil {
		return fmt.Errorf("assistant: snapshot providers: %w", err)
	}

	b.WriteString("PROVIDERS (Staff/Doctors):\n")
	if len(providers) == 0 {
		b.WriteString("- No providers registered yet\n")
		return nil
	}
	for _, p := range providers {
		specialty := p.Specialty
		if specialty == "" {
			specialty = "General"
		}
		fmt.Fprintf(b, "- %s [ID: %s] - %s, Hours: %s\n", p.DisplayName(), p.ID, specialty, p.WorkingHours)
	}
	return nil
}

func (cb *ContextBuilder) writeClients(ctx context.Context, q Queries, b *strings.Builder) error {
	clients, err := q.ListActiveClients(ctx, cb.clientLimit)
	if err != nil {
		return fmt.Errorf("assistant: snapshot clients: %w", err)
	}

	b.WriteString("\nCLIENTS:\n")
	if len(clients) == 0 {
		b.WriteString("- No clients registered yet\n")
		return nil
	}
	for _, c := range clients {
		fmt.Fprintf(b, "- %s [ID: %s]", c.Name, c.ID)
		if c.Phone != "" {
			fmt.Fprintf(b, " - Phone: %s", c.Phone)
		}
		b.WriteString("\n")
	}
	return nil
}

func (cb *ContextBuilder) writeServices(ctx context.Context, q Queries, b *strings.Builder) error {
	services, err := q.ListActiveServices(ctx)
	if err != nil {
		return fmt.Errorf("assistant: snapshot services: %w", err)
	}

	b.WriteString("\nSERVICES:\n")
	if len(services) == 0 {
		b.WriteString("- No services registered yet\n")
		return nil
	}

	providerIDs := make([]uuid.UUID, 0, len(services))
	seen := map[uuid.UUID]struct{}{}
	for _, s := range services {
		if _, ok := seen[s.ProviderID]; !ok {
			seen[s.ProviderID] = struct{}{}
			providerIDs = append(providerIDs, s.ProviderID)
		}
	}
	providers, err := q.ProvidersByID(ctx, providerIDs)
	if err != nil {
		return fmt.Errorf("assistant: snapshot service providers: %w", err)
	}

	for _, s := range services {
		providerName := "Unknown"
		if p, ok := providers[s.ProviderID]; ok {
			providerName = p.DisplayName()
		}
		fmt.Fprintf(b, "- %s [ID: %s] - $%.2f, %d min, Provider: %s", s.Name, s.ID, s.Price, s.DurationMinutes, providerName)
		if s.Description != "" {
			fmt.Fprintf(b, " (%s)", s.Description)
		}
		b.WriteString("\n")
	}
	return nil
}

func (cb *ContextBuilder) writeAppointments(ctx context.Context, q Queries, b *strings.Builder, from, to time.Time) error {
	appts, err := q.ListAppointments(ctx, store.AppointmentFilter{
		From:             from,
		To:               to,
		ExcludeCancelled: true,
	})
	if err != nil {
		return fmt.Errorf("assistant: snapshot appointments: %w", err)
	}

	b.WriteString("\nUPCOMING APPOINTMENTS (Next 2 weeks):\n")
	if len(appts) == 0 {
		b.WriteString("- No upcoming appointments\n")
		return nil
	}

	providers, clients, err := resolveNames(ctx, q, appts)
	if err != nil {
		return fmt.Errorf("assistant: snapshot appointment names: %w", err)
	}

	for _, a := range appts {
		providerName := "Unknown"
		if p, ok := providers[a.ProviderID]; ok {
			providerName = p.DisplayName()
		}
		clientName := "Unknown"
		if c, ok := clients[a.ClientID]; ok {
			clientName = c.Name
		}
		fmt.Fprintf(b, "- [ID: %s] %s-%s | Provider: %s | Client: %s\n",
			a.ID, a.Start.Format("2006-01-02 15:04"), a.End.Format("15:04"), providerName, clientName)
	}
	return nil
}

func (cb *ContextBuilder) writeBlockedTimes(ctx context.Context, q Queries, b *strings.Builder, from, to time.Time) error {
	blocks, err := q.ListBlockedTimes(ctx, store.BlockedTimeFilter{From: from, To: to})
	if err != nil {
		return fmt.Errorf("assistant: snapshot blocked times: %w", err)
	}

	var occurrences []domain.Occurrence
	for _, bt := range blocks {
		occurrences = append(occurrences, bt.Expand(from, to)...)
	}

	b.WriteString("\nBLOCKED TIMES (Provider unavailable):\n")
	if len(occurrences) == 0 {
		b.WriteString("- No blocked times\n")
		return nil
	}

	providerIDs := make([]uuid.UUID, 0, len(occurrences))
	seen := map[uuid.UUID]struct{}{}
	for _, occ := range occurrences {
		if _, ok := seen[occ.ProviderID]; !ok {
			seen[occ.ProviderID] = struct{}{}
			providerIDs = append(providerIDs, occ.ProviderID)
		}
	}
	providers, err := q.ProvidersByID(ctx, providerIDs)
	if err != nil {
		return fmt.Errorf("assistant: snapshot blocked-time providers: %w", err)
	}

	for _, occ := range occurrences {
		providerName := "Unknown"
		if p, ok := providers[occ.ProviderID]; ok {
			providerName = p.DisplayName()
		}
		fmt.Fprintf(b, "- %s-%s | Provider: %s | Reason: %s",
			occ.Start.Format("2006-01-02 15:04"), occ.End.Format("15:04"), providerName, occ.Label)
		if occ.Recurring {
			fmt.Fprintf(b, " (Recurring: %s)", occ.Pattern)
		}
		b.WriteString("\n")
	}
	return nil
}
