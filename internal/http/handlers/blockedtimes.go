package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yarimal/ai-crm/internal/api/respond"
	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/internal/store"
	"github.com/yarimal/ai-crm/pkg/logging"
)

// BlockedTimesHandler manages provider blocked-time windows.
type BlockedTimesHandler struct {
	store  *store.Store
	logger *logging.Logger
}

// NewBlockedTimesHandler creates the blocked-times HTTP handler.
func NewBlockedTimesHandler(s *store.Store, logger *logging.Logger) *BlockedTimesHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BlockedTimesHandler{store: s, logger: logger}
}

// Routes returns a chi router with blocked-time routes.
func (h *BlockedTimesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/occurrences", h.Occurrences)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Deactivate)
	return r
}

// BlockedTimeRequest is the create/update body for a blocked time.
type BlockedTimeRequest struct {
	ProviderID        string `json:"providerId"`
	StartTime         string `json:"startTime"` // RFC 3339
	EndTime           string `json:"endTime"`
	BlockType         string `json:"blockType,omitempty"`
	Reason            string `json:"reason,omitempty"`
	IsRecurring       *bool  `json:"isRecurring,omitempty"`
	RecurrencePattern string `json:"recurrencePattern,omitempty"`
	RecurrenceEndDate string `json:"recurrenceEndDate,omitempty"` // YYYY-MM-DD
}

// List returns blocked-time rows matching the filter. Recurring templates
// are returned as stored; use /occurrences for the expanded calendar view.
// GET /blocked-times?provider_id=&from=&to=
func (h *BlockedTimesHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filterFromQuery(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	blocks, err := h.store.Queries().ListBlockedTimes(r.Context(), filter)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, blocks)
}

// occurrencePayload is one expanded blocked interval.
type occurrencePayload struct {
	BlockedTimeID string `json:"blockedTimeId"`
	ProviderID    string `json:"providerId"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	Reason        string `json:"reason"`
	IsRecurring   bool   `json:"isRecurring"`
	Pattern       string `json:"recurrencePattern,omitempty"`
}

// Occurrences expands recurring blocked times into concrete intervals
// over [from, to) and returns them sorted by start.
// GET /blocked-times/occurrences?provider_id=&from=&to=
func (h *BlockedTimesHandler) Occurrences(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filterFromQuery(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	if filter.From.IsZero() || filter.To.IsZero() {
		respond.Error(w, h.logger, domain.Validation("from and to are required"))
		return
	}

	blocks, err := h.store.Queries().ListBlockedTimes(r.Context(), filter)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	var occs []domain.Occurrence
	for _, b := range blocks {
		occs = append(occs, b.Expand(filter.From, filter.To)...)
	}
	sort.Slice(occs, func(i, j int) bool { return occs[i].Start.Before(occs[j].Start) })

	out := make([]occurrencePayload, 0, len(occs))
	for _, occ := range occs {
		out = append(out, occurrencePayload{
			BlockedTimeID: occ.BlockedTimeID.String(),
			ProviderID:    occ.ProviderID.String(),
			StartTime:     occ.Start.Format(time.RFC3339),
			EndTime:       occ.End.Format(time.RFC3339),
			Reason:        occ.Label,
			IsRecurring:   occ.Recurring,
			Pattern:       string(occ.Pattern),
		})
	}
	respond.JSON(w, http.StatusOK, out)
}

// Get returns one blocked-time row.
// GET /blocked-times/{id}
func (h *BlockedTimesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	block, err := h.store.Queries().GetBlockedTime(r.Context(), id)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, block)
}

// Create records a blocked-time window for a provider.
// POST /blocked-times
func (h *BlockedTimesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BlockedTimeRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	providerID, err := parseRequiredID(req.ProviderID, "providerId")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	start, end, err := parseTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	block := domain.BlockedTime{
		ProviderID: providerID,
		Start:      start,
		End:        end,
		BlockType:  domain.BlockType(req.BlockType),
		Reason:     req.Reason,
	}
	if req.IsRecurring != nil {
		block.Recurring = *req.IsRecurring
	}
	if block.Recurring {
		pattern := domain.RecurrencePattern(req.RecurrencePattern)
		if !domain.ValidRecurrencePattern(pattern) {
			respond.Error(w, h.logger, domain.Validation("recurrencePattern must be daily, weekly or monthly"))
			return
		}
		block.Pattern = pattern
		if req.RecurrenceEndDate != "" {
			until, err := time.ParseInLocation("2006-01-02", req.RecurrenceEndDate, time.UTC)
			if err != nil {
				respond.Error(w, h.logger, domain.Validation("recurrenceEndDate must be a YYYY-MM-DD date"))
				return
			}
			block.RecurrenceEnd = &until
		}
	}

	err = h.store.WithTx(r.Context(), func(q *store.Queries) error {
		if _, err := q.GetProvider(r.Context(), providerID); err != nil {
			return err
		}
		return q.CreateBlockedTime(r.Context(), &block)
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	h.logger.Info("blocked time created",
		"blocked_time_id", block.ID.String(),
		"provider_id", providerID.String(),
		"recurring", block.Recurring)
	respond.JSON(w, http.StatusCreated, block)
}

// Update replaces the mutable fields of a blocked time.
// PUT /blocked-times/{id}
func (h *BlockedTimesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	var req BlockedTimeRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	var block *domain.BlockedTime
	err = h.store.WithTx(r.Context(), func(q *store.Queries) error {
		block, err = q.GetBlockedTime(r.Context(), id)
		if err != nil {
			return err
		}
		if req.StartTime != "" {
			if block.Start, err = parseRFC3339(req.StartTime, "startTime"); err != nil {
				return err
			}
		}
		if req.EndTime != "" {
			if block.End, err = parseRFC3339(req.EndTime, "endTime"); err != nil {
				return err
			}
		}
		if !block.End.After(block.Start) {
			return domain.Validation("endTime must be after startTime")
		}
		if req.BlockType != "" {
			block.BlockType = domain.BlockType(req.BlockType)
		}
		if req.Reason != "" {
			block.Reason = req.Reason
		}
		if req.IsRecurring != nil {
			block.Recurring = *req.IsRecurring
			if !block.Recurring {
				block.Pattern = ""
				block.RecurrenceEnd = nil
			}
		}
		if req.RecurrencePattern != "" {
			pattern := domain.RecurrencePattern(req.RecurrencePattern)
			if !domain.ValidRecurrencePattern(pattern) {
				return domain.Validation("recurrencePattern must be daily, weekly or monthly")
			}
			block.Pattern = pattern
		}
		if req.RecurrenceEndDate != "" {
			until, perr := time.ParseInLocation("2006-01-02", req.RecurrenceEndDate, time.UTC)
			if perr != nil {
				return domain.Validation("recurrenceEndDate must be a YYYY-MM-DD date")
			}
			block.RecurrenceEnd = &until
		}
		return q.UpdateBlockedTime(r.Context(), block)
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, block)
}

// Deactivate soft-deletes a blocked time.
// DELETE /blocked-times/{id}
func (h *BlockedTimesHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	if err := h.store.Queries().DeactivateBlockedTime(r.Context(), id); err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BlockedTimesHandler) filterFromQuery(r *http.Request) (store.BlockedTimeFilter, error) {
	providerID, err := queryID(r, "provider_id")
	if err != nil {
		return store.BlockedTimeFilter{}, err
	}
	from, err := queryTime(r, "from")
	if err != nil {
		return store.BlockedTimeFilter{}, err
	}
	to, err := queryTime(r, "to")
	if err != nil {
		return store.BlockedTimeFilter{}, err
	}
	return store.BlockedTimeFilter{ProviderID: providerID, From: from, To: to}, nil
}
