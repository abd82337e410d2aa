package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yarimal/ai-crm/internal/api/respond"
	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/internal/store"
	"github.com/yarimal/ai-crm/pkg/logging"
)

// ProvidersHandler manages the provider directory.
type ProvidersHandler struct {
	store  *store.Store
	logger *logging.Logger
}

// NewProvidersHandler creates the providers HTTP handler.
func NewProvidersHandler(s *store.Store, logger *logging.Logger) *ProvidersHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ProvidersHandler{store: s, logger: logger}
}

// Routes returns a chi router with provider routes.
func (h *ProvidersHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Deactivate)
	return r
}

// ProviderRequest is the create/update body for a provider.
type ProviderRequest struct {
	Name         string `json:"name"`
	Title        string `json:"title,omitempty"`
	Specialty    string `json:"specialty,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Color        string `json:"color,omitempty"`
	WorkingHours string `json:"workingHours,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// List returns all active providers.
// GET /providers
func (h *ProvidersHandler) List(w http.ResponseWriter, r *http.Request) {
	providers, err := h.store.Queries().ListActiveProviders(r.Context())
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, providers)
}

// Get returns one provider.
// GET /providers/{id}
func (h *ProvidersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	provider, err := h.store.Queries().GetProvider(r.Context(), id)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, provider)
}

// Create registers a new provider, applying the courtesy-title rule and
// deriving a color when none is supplied.
// POST /providers
func (h *ProvidersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProviderRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	if req.Name == "" {
		respond.Error(w, h.logger, domain.Validation("provider name is required"))
		return
	}

	name, title, _ := domain.NormalizeProviderName(req.Name, req.Title)
	workingHours := req.WorkingHours
	if workingHours == "" {
		workingHours = domain.DefaultWorkingHours
	} else if _, ok := domain.ParseWorkingHours(workingHours); !ok {
		respond.Error(w, h.logger, domain.Validation("working hours must look like HH:MM-HH:MM"))
		return
	}
	color := req.Color
	if color == "" {
		color = domain.ColorForName(name)
	}

	provider := domain.Provider{
		Name:         name,
		Title:        title,
		Specialty:    req.Specialty,
		Email:        req.Email,
		Phone:        req.Phone,
		Color:        color,
		WorkingHours: workingHours,
		Notes:        req.Notes,
	}
	err := h.store.WithTx(r.Context(), func(q *store.Queries) error {
		existing, err := q.FindActiveProviderByName(r.Context(), name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Conflict("Provider '%s' already exists", name)
		}
		return q.CreateProvider(r.Context(), &provider)
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	h.logger.Info("provider created", "provider_id", provider.ID.String(), "name", provider.Name)
	respond.JSON(w, http.StatusCreated, provider)
}

// Update replaces the mutable fields of a provider.
// PUT /providers/{id}
func (h *ProvidersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	var req ProviderRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	var provider *domain.Provider
	err = h.store.WithTx(r.Context(), func(q *store.Queries) error {
		provider, err = q.GetProvider(r.Context(), id)
		if err != nil {
			return err
		}
		if req.Name != "" {
			provider.Name, provider.Title, _ = domain.NormalizeProviderName(req.Name, req.Title)
		} else if req.Title != "" {
			provider.Title = req.Title
		}
		if req.Specialty != "" {
			provider.Specialty = req.Specialty
		}
		if req.Email != "" {
			provider.Email = req.Email
		}
		if req.Phone != "" {
			provider.Phone = req.Phone
		}
		if req.Color != "" {
			provider.Color = req.Color
		}
		if req.Notes != "" {
			provider.Notes = req.Notes
		}
		if req.WorkingHours != "" {
			if _, ok := domain.ParseWorkingHours(req.WorkingHours); !ok {
				return domain.Validation("working hours must look like HH:MM-HH:MM")
			}
			provider.WorkingHours = req.WorkingHours
		}
		return q.UpdateProvider(r.Context(), provider)
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, provider)
}

// Deactivate soft-deletes a provider.
// DELETE /providers/{id}
func (h *ProvidersHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	if err := h.store.Queries().DeactivateProvider(r.Context(), id); err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
