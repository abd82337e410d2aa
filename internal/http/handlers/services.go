package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/yarimal/ai-crm/internal/api/respond"
	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/internal/store"
	"github.com/yarimal/ai-crm/pkg/logging"
)

// ServicesHandler manages the bookable service catalog.
type ServicesHandler struct {
	store  *store.Store
	logger *logging.Logger
}

// NewServicesHandler creates the services HTTP handler.
func NewServicesHandler(s *store.Store, logger *logging.Logger) *ServicesHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ServicesHandler{store: s, logger: logger}
}

// Routes returns a chi router with service routes.
func (h *ServicesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Deactivate)
	return r
}

// ServiceRequest is the create/update body for a service.
type ServiceRequest struct {
	ProviderID      string   `json:"providerId"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	DurationMinutes *int     `json:"durationMinutes,omitempty"`
	Price           *float64 `json:"price,omitempty"`
}

// List returns active services, optionally scoped to one provider.
// GET /services?provider_id=
func (h *ServicesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.store.Queries()

	providerID, err := queryID(r, "provider_id")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	var services []domain.Service
	if providerID != uuid.Nil {
		services, err = q.ListServicesByProvider(r.Context(), providerID)
	} else {
		services, err = q.ListActiveServices(r.Context())
	}
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, services)
}

// Get returns one service.
// GET /services/{id}
func (h *ServicesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	svc, err := h.store.Queries().GetService(r.Context(), id)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, svc)
}

// Create adds a service to a provider's catalog.
// POST /services
func (h *ServicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ServiceRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	providerID, err := parseRequiredID(req.ProviderID, "providerId")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	svc := domain.Service{
		ProviderID:  providerID,
		Name:        req.Name,
		Description: req.Description,
	}
	if req.DurationMinutes != nil {
		svc.DurationMinutes = *req.DurationMinutes
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if err := svc.Validate(); err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	err = h.store.WithTx(r.Context(), func(q *store.Queries) error {
		if _, err := q.GetProvider(r.Context(), providerID); err != nil {
			return err
		}
		return q.CreateService(r.Context(), &svc)
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	h.logger.Info("service created",
		"service_id", svc.ID.String(),
		"provider_id", providerID.String(),
		"name", svc.Name)
	respond.JSON(w, http.StatusCreated, svc)
}

// Update replaces the mutable fields of a service.
// PUT /services/{id}
func (h *ServicesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	var req ServiceRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	var svc *domain.Service
	err = h.store.WithTx(r.Context(), func(q *store.Queries) error {
		svc, err = q.GetService(r.Context(), id)
		if err != nil {
			return err
		}
		if req.Name != "" {
			svc.Name = req.Name
		}
		if req.Description != "" {
			svc.Description = req.Description
		}
		if req.DurationMinutes != nil {
			svc.DurationMinutes = *req.DurationMinutes
		}
		if req.Price != nil {
			svc.Price = *req.Price
		}
		if err := svc.Validate(); err != nil {
			return err
		}
		return q.UpdateService(r.Context(), svc)
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, svc)
}

// Deactivate soft-deletes a service.
// DELETE /services/{id}
func (h *ServicesHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	if err := h.store.Queries().DeactivateService(r.Context(), id); err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
