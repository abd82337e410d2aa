package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/yarimal/ai-crm/internal/api/respond"
	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/internal/store"
	"github.com/yarimal/ai-crm/pkg/logging"
)

const defaultSlotMinutes = 30

// AppointmentsHandler manages the appointment calendar.
type AppointmentsHandler struct {
	store  *store.Store
	logger *logging.Logger
}

// NewAppointmentsHandler creates the appointments HTTP handler.
func NewAppointmentsHandler(s *store.Store, logger *logging.Logger) *AppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{store: s, logger: logger}
}

// Routes returns a chi router with appointment routes.
func (h *AppointmentsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/availability", h.Availability)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Cancel)
	return r
}

// AppointmentRequest is the create/update body for an appointment.
type AppointmentRequest struct {
	ProviderID string   `json:"providerId"`
	ClientID   string   `json:"clientId"`
	ServiceID  string   `json:"serviceId,omitempty"`
	Title      string   `json:"title,omitempty"`
	StartTime  string   `json:"startTime"` // RFC 3339
	EndTime    string   `json:"endTime"`
	Status     string   `json:"status,omitempty"`
	Revenue    *float64 `json:"revenue,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// List returns appointments matching the query filters ordered by start
// time. `date` scopes to one calendar day; `from`/`to` bound an arbitrary
// window.
// GET /appointments?provider_id=&client_id=&date=&from=&to=
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	providerID, err := queryID(r, "provider_id")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	clientID, err := queryID(r, "client_id")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	filter := store.AppointmentFilter{ProviderID: providerID, ClientID: clientID}
	if day, err := queryDate(r, "date"); err != nil {
		respond.Error(w, h.logger, err)
		return
	} else if !day.IsZero() {
		filter.From = day
		filter.To = day.AddDate(0, 0, 1)
	} else {
		if filter.From, err = queryTime(r, "from"); err != nil {
			respond.Error(w, h.logger, err)
			return
		}
		if filter.To, err = queryTime(r, "to"); err != nil {
			respond.Error(w, h.logger, err)
			return
		}
	}

	appts, err := h.store.Queries().ListAppointments(r.Context(), filter)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, appts)
}

// Get returns one appointment.
// GET /appointments/{id}
func (h *AppointmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	appt, err := h.store.Queries().GetAppointment(r.Context(), id)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, appt)
}

// Create books an appointment. The provider's calendar is locked for the
// duration of the transaction so concurrent bookings serialize, and blocked
// times are checked before existing appointments.
// POST /appointments
func (h *AppointmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AppointmentRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	providerID, err := parseRequiredID(req.ProviderID, "providerId")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	clientID, err := parseRequiredID(req.ClientID, "clientId")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	start, end, err := parseTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	appt := domain.Appointment{
		ProviderID: providerID,
		ClientID:   clientID,
		Title:      req.Title,
		Start:      start,
		End:        end,
		Status:     domain.StatusScheduled,
		Revenue:    req.Revenue,
		Notes:      req.Notes,
	}
	if req.Status != "" {
		status := domain.AppointmentStatus(req.Status)
		if !domain.ValidStatus(status) {
			respond.Error(w, h.logger, domain.Validation("unknown appointment status %q", req.Status))
			return
		}
		appt.Status = status
	}
	if req.ServiceID != "" {
		serviceID, err := parseRequiredID(req.ServiceID, "serviceId")
		if err != nil {
			respond.Error(w, h.logger, err)
			return
		}
		appt.ServiceID = &serviceID
	}
	if err := appt.Validate(); err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	err = h.store.WithTx(r.Context(), func(q *store.Queries) error {
		provider, err := q.GetProvider(r.Context(), providerID)
		if err != nil {
			return err
		}
		client, err := q.GetClient(r.Context(), clientID)
		if err != nil {
			return err
		}
		if appt.Title == "" {
			appt.Title = client.Name
		}
		appt.Color = provider.Color

		if appt.ServiceID != nil {
			svc, err := q.GetService(r.Context(), *appt.ServiceID)
			if err != nil {
				return err
			}
			if appt.Revenue == nil {
				price := svc.Price
				appt.Revenue = &price
			}
		}

		if err := q.AcquireProviderLock(r.Context(), providerID); err != nil {
			return err
		}
		blocks, err := q.ListBlockedTimes(r.Context(), store.BlockedTimeFilter{
			ProviderID: providerID,
			From:       start,
			To:         end,
		})
		if err != nil {
			return err
		}
		if occ := domain.FindBlockedConflict(blocks, start, end); occ != nil {
			return domain.Conflict("%s is unavailable at this time (%s)", provider.DisplayName(), occ.Label)
		}
		conflict, err := q.FindAppointmentConflict(r.Context(), providerID, start, end)
		if err != nil {
			return err
		}
		if conflict != nil {
			return domain.Conflict("%s already has an appointment at this time", provider.DisplayName())
		}
		return q.CreateAppointment(r.Context(), &appt)
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	h.logger.Info("appointment booked",
		"appointment_id", appt.ID.String(),
		"provider_id", providerID.String(),
		"client_id", clientID.String(),
		"start", appt.Start.Format(time.RFC3339))
	respond.JSON(w, http.StatusCreated, appt)
}

// Update replaces the mutable fields of an appointment. When the time range
// moves, the new range is re-checked for conflicts under the provider lock.
// PUT /appointments/{id}
func (h *AppointmentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	var req AppointmentRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	var appt *domain.Appointment
	err = h.store.WithTx(r.Context(), func(q *store.Queries) error {
		appt, err = q.GetAppointment(r.Context(), id)
		if err != nil {
			return err
		}

		moved := false
		if req.StartTime != "" {
			t, err := parseRFC3339(req.StartTime, "startTime")
			if err != nil {
				return err
			}
			appt.Start = t
			moved = true
		}
		if req.EndTime != "" {
			t, err := parseRFC3339(req.EndTime, "endTime")
			if err != nil {
				return err
			}
			appt.End = t
			moved = true
		}
		if req.Title != "" {
			appt.Title = req.Title
		}
		if req.Notes != "" {
			appt.Notes = req.Notes
		}
		if req.Revenue != nil {
			appt.Revenue = req.Revenue
		}
		if req.Status != "" {
			status := domain.AppointmentStatus(req.Status)
			if !domain.ValidStatus(status) {
				return domain.Validation("unknown appointment status %q", req.Status)
			}
			appt.Status = status
		}
		if err := appt.Validate(); err != nil {
			return err
		}

		if moved {
			provider, err := q.GetProvider(r.Context(), appt.ProviderID)
			if err != nil {
				return err
			}
			if err := q.AcquireProviderLock(r.Context(), appt.ProviderID); err != nil {
				return err
			}
			blocks, err := q.ListBlockedTimes(r.Context(), store.BlockedTimeFilter{
				ProviderID: appt.ProviderID,
				From:       appt.Start,
				To:         appt.End,
			})
			if err != nil {
				return err
			}
			if occ := domain.FindBlockedConflict(blocks, appt.Start, appt.End); occ != nil {
				return domain.Conflict("%s is unavailable at this time (%s)", provider.DisplayName(), occ.Label)
			}
			conflict, err := q.FindAppointmentConflict(r.Context(), appt.ProviderID, appt.Start, appt.End)
			if err != nil {
				return err
			}
			if conflict != nil && conflict.ID != appt.ID {
				return domain.Conflict("%s already has an appointment at this time", provider.DisplayName())
			}
		}
		return q.UpdateAppointment(r.Context(), appt)
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, appt)
}

// Cancel marks an appointment cancelled. Cancelling an already cancelled
// appointment succeeds.
// DELETE /appointments/{id}
func (h *AppointmentsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	err = h.store.WithTx(r.Context(), func(q *store.Queries) error {
		if _, err := q.GetAppointment(r.Context(), id); err != nil {
			return err
		}
		return q.UpdateAppointmentStatus(r.Context(), id, domain.StatusCancelled)
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TimeSlot is one bookable window in an availability response.
type TimeSlot struct {
	Start string `json:"start"` // "09:00"
	End   string `json:"end"`
}

// ProviderAvailability lists the open slots for one provider on a date.
type ProviderAvailability struct {
	Provider         domain.Provider `json:"provider"`
	AvailableSlots   []TimeSlot      `json:"availableSlots"`
	AppointmentCount int             `json:"appointmentCount"`
}

// AvailabilityResponse is the payload of GET /appointments/availability.
type AvailabilityResponse struct {
	Date            string                 `json:"date"`
	DurationMinutes int                    `json:"durationMinutes"`
	Providers       []ProviderAvailability `json:"providers"`
}

// Availability lists the free slots of the requested duration for one
// provider, or for all active providers, on a date. Slots are walked
// within working hours around booked appointments and blocked times.
// GET /appointments/availability?date=&provider_id=&duration_minutes=
func (h *AppointmentsHandler) Availability(w http.ResponseWriter, r *http.Request) {
	day, err := queryDate(r, "date")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	if day.IsZero() {
		respond.Error(w, h.logger, domain.Validation("date is required"))
		return
	}
	providerID, err := queryID(r, "provider_id")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	duration := defaultSlotMinutes
	if v := r.URL.Query().Get("duration_minutes"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			respond.Error(w, h.logger, domain.Validation("duration_minutes must be a positive integer"))
			return
		}
		duration = n
	}

	q := h.store.Queries()
	var providers []domain.Provider
	if providerID != uuid.Nil {
		p, err := q.GetProvider(r.Context(), providerID)
		if err != nil {
			respond.Error(w, h.logger, err)
			return
		}
		providers = []domain.Provider{*p}
	} else {
		providers, err = q.ListActiveProviders(r.Context())
		if err != nil {
			respond.Error(w, h.logger, err)
			return
		}
	}

	dayEnd := day.AddDate(0, 0, 1)
	resp := AvailabilityResponse{
		Date:            day.Format("2006-01-02"),
		DurationMinutes: duration,
		Providers:       make([]ProviderAvailability, 0, len(providers)),
	}
	for _, p := range providers {
		appts, err := q.ListAppointments(r.Context(), store.AppointmentFilter{
			ProviderID:       p.ID,
			From:             day,
			To:               dayEnd,
			ExcludeCancelled: true,
		})
		if err != nil {
			respond.Error(w, h.logger, err)
			return
		}
		blocks, err := q.ListBlockedTimes(r.Context(), store.BlockedTimeFilter{
			ProviderID: p.ID,
			From:       day,
			To:         dayEnd,
		})
		if err != nil {
			respond.Error(w, h.logger, err)
			return
		}

		hours, ok := domain.ParseWorkingHours(p.WorkingHours)
		if !ok {
			h.logger.Warn("unparseable working hours, using default",
				"provider_id", p.ID.String(), "working_hours", p.WorkingHours)
		}

		busy := make([]interval, 0, len(appts))
		for _, a := range appts {
			busy = append(busy, interval{start: a.Start, end: a.End})
		}
		for _, b := range blocks {
			for _, occ := range b.Expand(day, dayEnd) {
				busy = append(busy, interval{start: occ.Start, end: occ.End})
			}
		}

		resp.Providers = append(resp.Providers, ProviderAvailability{
			Provider:         p,
			AvailableSlots:   freeSlots(day, hours, busy, duration),
			AppointmentCount: len(appts),
		})
	}
	respond.JSON(w, http.StatusOK, resp)
}

type interval struct {
	start, end time.Time
}

// freeSlots walks the working-hours span of day and emits slots of the
// requested duration that do not intersect any busy interval.
func freeSlots(day time.Time, hours domain.WorkingHours, busy []interval, durationMinutes int) []TimeSlot {
	sort.Slice(busy, func(i, j int) bool { return busy[i].start.Before(busy[j].start) })

	cursor := day.Add(time.Duration(hours.StartMinute) * time.Minute)
	dayClose := day.Add(time.Duration(hours.EndMinute) * time.Minute)
	step := time.Duration(durationMinutes) * time.Minute

	slots := make([]TimeSlot, 0)
	for !cursor.Add(step).After(dayClose) {
		slotEnd := cursor.Add(step)
		conflict := false
		for _, b := range busy {
			if cursor.Before(b.end) && slotEnd.After(b.start) {
				conflict = true
				// Jump past the busy interval instead of probing
				// minute by minute.
				if b.end.After(cursor) {
					cursor = b.end
				}
				break
			}
		}
		if conflict {
			continue
		}
		slots = append(slots, TimeSlot{
			Start: cursor.Format("15:04"),
			End:   slotEnd.Format("15:04"),
		})
		cursor = slotEnd
	}
	return slots
}
