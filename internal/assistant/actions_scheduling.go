package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/internal/store"
	"github.com/yarimal/ai-crm/pkg/logging"
)

const (
	maxAppointmentRows = 20
	availabilityDays   = 7
)

// createAppointmentAction books a provider for a client, rejecting any
// overlap with blocked time or another non-cancelled appointment.
type createAppointmentAction struct{}

func (createAppointmentAction) Name() ActionName { return ActionCreateAppointment }

func (createAppointmentAction) Execute(ctx context.Context, q Queries, args Args) (string, error) {
	providerID, err := args.RequiredUUID("provider_id")
	if err != nil {
		return "", err
	}
	clientID, err := args.RequiredUUID("client_id")
	if err != nil {
		return "", err
	}
	day, err := args.Date("date")
	if err != nil {
		return "", err
	}
	start, err := args.ClockOn(day, "start_time")
	if err != nil {
		return "", err
	}
	end, err := args.ClockOn(day, "end_time")
	if err != nil {
		return "", err
	}
	if !end.After(start) {
		return "", domain.Validation("appointment end time must be after start time")
	}

	provider, err := q.GetProvider(ctx, providerID)
	if err != nil {
		return "", err
	}
	client, err := q.GetClient(ctx, clientID)
	if err != nil {
		return "", err
	}

	// Serialize bookings per provider so two overlap checks cannot both
	// pass before either commit.
	if err := q.AcquireProviderLock(ctx, providerID); err != nil {
		return "", err
	}

	blocks, err := q.ListBlockedTimes(ctx, store.BlockedTimeFilter{
		ProviderID: providerID,
		From:       start,
		To:         end,
	})
	if err != nil {
		return "", err
	}
	if occ := domain.FindBlockedConflict(blocks, start, end); occ != nil {
		return "", domain.Conflict("%s is unavailable at this time (%s)", provider.DisplayName(), occ.Label)
	}

	if conflict, err := q.FindAppointmentConflict(ctx, providerID, start, end); err != nil {
		return "", err
	} else if conflict != nil {
		return "", domain.Conflict("%s already has an appointment at this time", provider.DisplayName())
	}

	var revenue *float64
	serviceName := ""
	serviceID, err := args.UUID("service_id")
	if err != nil {
		return "", err
	}
	appt := domain.Appointment{
		ProviderID: providerID,
		ClientID:   clientID,
		Title:      client.Name,
		Start:      start,
		End:        end,
		Status:     domain.StatusScheduled,
		Notes:      args.String("notes"),
		Color:      provider.Color,
	}
	if serviceID != uuid.Nil {
		service, err := q.GetService(ctx, serviceID)
		if err != nil {
			return "", err
		}
		price := service.Price
		revenue = &price
		serviceName = " - " + service.Name
		appt.ServiceID = &serviceID
	}
	if v, ok := args.Float("revenue"); ok {
		revenue = &v
	}
	appt.Revenue = revenue

	if err := q.CreateAppointment(ctx, &appt); err != nil {
		return "", err
	}

	return fmt.Sprintf("✅ Booked! %s with %s%s\n📅 %s, %s at %s",
		client.Name, provider.DisplayName(), serviceName,
		start.Format("Monday"), start.Format("January 2"), start.Format("3:04 PM")), nil
}

// getAppointmentsAction lists non-cancelled appointments matching the
// supplied provider/client/date filters.
type getAppointmentsAction struct{}

func (getAppointmentsAction) Name() ActionName { return ActionGetAppointments }

func (getAppointmentsAction) Execute(ctx context.Context, q Queries, args Args) (string, error) {
	providerID, err := args.UUID("provider_id")
	if err != nil {
		return "", err
	}
	clientID, err := args.UUID("client_id")
	if err != nil {
		return "", err
	}

	filter := store.AppointmentFilter{
		ProviderID:       providerID,
		ClientID:         clientID,
		ExcludeCancelled: true,
		Limit:            maxAppointmentRows,
	}

	dateLabel := ""
	if args.String("date") != "" {
		day, err := args.Date("date")
		if err != nil {
			return "", err
		}
		filter.From = day
		filter.To = day.AddDate(0, 0, 1)
		dateLabel = day.Format("Monday, January 2")
	}

	appts, err := q.ListAppointments(ctx, filter)
	if err != nil {
		return "", err
	}
	if len(appts) == 0 {
		if dateLabel != "" {
			return fmt.Sprintf("📅 No appointments on %s", dateLabel), nil
		}
		return "📅 No appointments found", nil
	}

	providers, clients, err := resolveNames(ctx, q, appts)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if dateLabel != "" {
		fmt.Fprintf(&b, "📅 **%s** - %d appointment(s):\n", dateLabel, len(appts))
	} else {
		fmt.Fprintf(&b, "📅 Found %d appointment(s):\n", len(appts))
	}
	for _, a := range appts {
		clientName := "Unknown"
		if c, ok := clients[a.ClientID]; ok {
			clientName = c.Name
		}
		providerName := "Unknown"
		if p, ok := providers[a.ProviderID]; ok {
			providerName = p.DisplayName()
		}
		span := a.Start.Format("15:04") + "-" + a.End.Format("15:04")
		if dateLabel != "" {
			fmt.Fprintf(&b, "\n• %s - %s with %s", span, clientName, providerName)
		} else {
			fmt.Fprintf(&b, "\n• %s %s - %s with %s", a.Start.Format("Mon Jan 2"), span, clientName, providerName)
		}
	}
	return b.String(), nil
}

// checkAvailabilityAction summarizes free hours per day over a week
// against the provider's working-hours span.
type checkAvailabilityAction struct {
	logger *logging.Logger
}

func (checkAvailabilityAction) Name() ActionName { return ActionCheckAvailability }

func (a checkAvailabilityAction) Execute(ctx context.Context, q Queries, args Args) (string, error) {
	providerID, err := args.RequiredUUID("provider_id")
	if err != nil {
		return "", err
	}
	from, err := args.Date("date")
	if err != nil {
		return "", err
	}

	provider, err := q.GetProvider(ctx, providerID)
	if err != nil {
		return "", err
	}

	hours, ok := domain.ParseWorkingHours(provider.WorkingHours)
	if !ok && a.logger != nil {
		a.logger.Warn("provider has malformed working hours, using default",
			"provider_id", providerID.String(),
			"working_hours", provider.WorkingHours,
		)
	}
	spanHours := hours.SpanHours()

	to := from.AddDate(0, 0, availabilityDays)
	appts, err := q.ListAppointments(ctx, store.AppointmentFilter{
		ProviderID:       providerID,
		From:             from,
		To:               to,
		ExcludeCancelled: true,
	})
	if err != nil {
		return "", err
	}
	blocks, err := q.ListBlockedTimes(ctx, store.BlockedTimeFilter{
		ProviderID: providerID,
		From:       from,
		To:         to,
	})
	if err != nil {
		return "", err
	}

	var occurrences []domain.Occurrence
	for _, b := range blocks {
		occurrences = append(occurrences, b.Expand(from, to)...)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s availability (%s - %s):\n",
		provider.DisplayName(), from.Format("Jan 2"), to.AddDate(0, 0, -1).Format("Jan 2"))

	for offset := 0; offset < availabilityDays; offset++ {
		day := from.AddDate(0, 0, offset)
		next := day.AddDate(0, 0, 1)

		busyMinutes := 0.0
		busySlots := 0
		for _, appt := range appts {
			if !appt.Start.Before(day) && appt.Start.Before(next) {
				busyMinutes += appt.End.Sub(appt.Start).Minutes()
				busySlots++
			}
		}
		for _, occ := range occurrences {
			if !occ.Start.Before(day) && occ.Start.Before(next) {
				busyMinutes += occ.End.Sub(occ.Start).Minutes()
				busySlots++
			}
		}

		free := spanHours - busyMinutes/60
		dayName := day.Format("Monday, Jan 2")
		switch {
		case free <= 0:
			fmt.Fprintf(&b, "\n• %s: Fully booked", dayName)
		case busySlots > 0:
			fmt.Fprintf(&b, "\n• %s: %.1fh free (out of %gh)", dayName, free, spanHours)
		default:
			fmt.Fprintf(&b, "\n• %s: %.1fh free (fully available)", dayName, free)
		}
	}
	return b.String(), nil
}

// getProviderScheduleAction lists one provider's appointments and blocked
// intervals for a single day.
type getProviderScheduleAction struct{}

func (getProviderScheduleAction) Name() ActionName { return ActionGetProviderSchedule }

func (getProviderScheduleAction) Execute(ctx context.Context, q Queries, args Args) (string, error) {
	providerID, err := args.RequiredUUID("provider_id")
	if err != nil {
		return "", err
	}
	day, err := args.Date("date")
	if err != nil {
		return "", err
	}
	next := day.AddDate(0, 0, 1)

	provider, err := q.GetProvider(ctx, providerID)
	if err != nil {
		return "", err
	}

	appts, err := q.ListAppointments(ctx, store.AppointmentFilter{
		ProviderID:       providerID,
		From:             day,
		To:               next,
		ExcludeCancelled: true,
	})
	if err != nil {
		return "", err
	}
	blocks, err := q.ListBlockedTimes(ctx, store.BlockedTimeFilter{
		ProviderID: providerID,
		From:       day,
		To:         next,
	})
	if err != nil {
		return "", err
	}
	var occurrences []domain.Occurrence
	for _, b := range blocks {
		occurrences = append(occurrences, b.Expand(day, next)...)
	}

	dayName := day.Format("Monday, January 2")
	if len(appts) == 0 && len(occurrences) == 0 {
		return fmt.Sprintf("📅 %s has no schedule for %s", provider.DisplayName(), dayName), nil
	}

	var clientIDs []uuid.UUID
	for _, a := range appts {
		clientIDs = append(clientIDs, a.ClientID)
	}
	clients := map[uuid.UUID]domain.Client{}
	if len(clientIDs) > 0 {
		clients, err = q.ClientsByID(ctx, clientIDs)
		if err != nil {
			return "", err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 **%s** schedule for %s:\n", provider.DisplayName(), dayName)
	if len(appts) > 0 {
		b.WriteString("\n**Appointments:**")
		for _, a := range appts {
			clientName := "Unknown"
			if c, ok := clients[a.ClientID]; ok {
				clientName = c.Name
			}
			fmt.Fprintf(&b, "\n• %s-%s - %s", a.Start.Format("15:04"), a.End.Format("15:04"), clientName)
		}
	}
	if len(occurrences) > 0 {
		if len(appts) > 0 {
			b.WriteString("\n")
		}
		b.WriteString("\n**Blocked Times:**")
		for _, occ := range occurrences {
			fmt.Fprintf(&b, "\n• %s-%s - %s", occ.Start.Format("15:04"), occ.End.Format("15:04"), occ.Label)
		}
	}
	return b.String(), nil
}

// cancelAppointmentAction flips an appointment to cancelled. Cancelling an
// already-cancelled appointment succeeds again with the same outcome.
type cancelAppointmentAction struct{}

func (cancelAppointmentAction) Name() ActionName { return ActionCancelAppointment }

func (cancelAppointmentAction) Execute(ctx context.Context, q Queries, args Args) (string, error) {
	id, err := args.RequiredUUID("appointment_id")
	if err != nil {
		return "", err
	}

	appt, err := q.GetAppointment(ctx, id)
	if err != nil {
		return "", err
	}

	clientName := "Unknown"
	if client, err := q.GetClient(ctx, appt.ClientID); err == nil {
		clientName = client.Name
	}
	providerName := "Unknown"
	if provider, err := q.GetProvider(ctx, appt.ProviderID); err == nil {
		providerName = provider.DisplayName()
	}

	if err := q.UpdateAppointmentStatus(ctx, id, domain.StatusCancelled); err != nil {
		return "", err
	}

	return fmt.Sprintf("❌ Cancelled appointment: %s with %s on %s",
		clientName, providerName, appt.Start.Format("Monday, January 2 at 15:04")), nil
}

// resolveNames batches the provider and client lookups for a set of
// appointments.
func resolveNames(ctx context.Context, q Queries, appts []domain.Appointment) (map[uuid.UUID]domain.Provider, map[uuid.UUID]domain.Client, error) {
	providerSet := map[uuid.UUID]struct{}{}
	clientSet := map[uuid.UUID]struct{}{}
	for _, a := range appts {
		providerSet[a.ProviderID] = struct{}{}
		clientSet[a.ClientID] = struct{}{}
	}

	providers := map[uuid.UUID]domain.Provider{}
	if len(providerSet) > 0 {
		ids := make([]uuid.UUID, 0, len(providerSet))
		for id := range providerSet {
			ids = append(ids, id)
		}
		var err error
		providers, err = q.ProvidersByID(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
	}

	clients := map[uuid.UUID]domain.Client{}
	if len(clientSet) > 0 {
		ids := make([]uuid.UUID, 0, len(clientSet))
		for id := range clientSet {
			ids = append(ids, id)
		}
		var err error
		clients, err = q.ClientsByID(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
	}
	return providers, clients, nil
}
