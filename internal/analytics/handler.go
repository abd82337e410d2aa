package analytics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/yarimal/ai-crm/internal/api/respond"
	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/pkg/logging"
)

const defaultWindowDays = 30

// Handler exposes the analytics HTTP surface.
type Handler struct {
	service *Service
	logger  *logging.Logger
	now     func() time.Time
}

// NewHandler creates the analytics HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger, now: time.Now}
}

// Routes returns a chi router with analytics routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/overview", h.Overview)
	r.Get("/appointments-per-day", h.AppointmentsPerDay)
	r.Get("/revenue-by-provider", h.RevenueByProvider)
	return r
}

// Overview returns headline figures for the requested window. Defaults to
// the last 30 days.
// GET /analytics/overview?from=&to=&provider_id=
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	from, to, providerID, err := h.window(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	overview, err := h.service.Overview(r.Context(), from, to, providerID)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, overview)
}

// AppointmentsPerDay returns the per-day booking volume for the window.
// GET /analytics/appointments-per-day?from=&to=&provider_id=
func (h *Handler) AppointmentsPerDay(w http.ResponseWriter, r *http.Request) {
	from, to, providerID, err := h.window(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	days, err := h.service.AppointmentsPerDay(r.Context(), from, to, providerID)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, days)
}

// RevenueByProvider returns per-provider revenue for the window.
// GET /analytics/revenue-by-provider?from=&to=
func (h *Handler) RevenueByProvider(w http.ResponseWriter, r *http.Request) {
	from, to, _, err := h.window(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	rows, err := h.service.RevenueByProvider(r.Context(), from, to)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, rows)
}

func (h *Handler) window(r *http.Request) (from, to time.Time, providerID uuid.UUID, err error) {
	q := r.URL.Query()

	if v := q.Get("provider_id"); v != "" {
		providerID, err = uuid.Parse(v)
		if err != nil {
			return from, to, providerID, domain.Validation("provider_id is not a valid identifier")
		}
	}
	from, err = parseDay(q.Get("from"))
	if err != nil {
		return from, to, providerID, domain.Validation("from must be a YYYY-MM-DD date")
	}
	to, err = parseDay(q.Get("to"))
	if err != nil {
		return from, to, providerID, domain.Validation("to must be a YYYY-MM-DD date")
	}

	if to.IsZero() {
		to = h.now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -defaultWindowDays)
	}
	if !to.After(from) {
		return from, to, providerID, domain.Validation("to must be after from")
	}
	return from, to, providerID, nil
}

func parseDay(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02", v, time.UTC)
}
