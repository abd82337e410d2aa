package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yarimal/ai-crm/internal/api/respond"
	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/internal/store"
	"github.com/yarimal/ai-crm/pkg/logging"
)

const defaultClientPageSize = 100

// ClientsHandler manages the client directory.
type ClientsHandler struct {
	store  *store.Store
	logger *logging.Logger
}

// NewClientsHandler creates the clients HTTP handler.
func NewClientsHandler(s *store.Store, logger *logging.Logger) *ClientsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ClientsHandler{store: s, logger: logger}
}

// Routes returns a chi router with client routes.
func (h *ClientsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Deactivate)
	return r
}

// ClientRequest is the create/update body for a client.
type ClientRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"` // YYYY-MM-DD
	Address     string `json:"address,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// List returns active clients, optionally filtered by a name substring.
// GET /clients?search=
func (h *ClientsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.store.Queries()
	search := r.URL.Query().Get("search")

	var (
		clients []domain.Client
		err     error
	)
	if search != "" {
		clients, err = q.SearchClients(r.Context(), search, defaultClientPageSize)
	} else {
		clients, err = q.ListActiveClients(r.Context(), defaultClientPageSize)
	}
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, clients)
}

// Get returns one client.
// GET /clients/{id}
func (h *ClientsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	client, err := h.store.Queries().GetClient(r.Context(), id)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, client)
}

// Create registers a new client. Duplicate active names are rejected.
// POST /clients
func (h *ClientsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	if req.Name == "" {
		respond.Error(w, h.logger, domain.Validation("client name is required"))
		return
	}

	client := domain.Client{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	}
	if req.DateOfBirth != "" {
		dob, err := time.ParseInLocation("2006-01-02", req.DateOfBirth, time.UTC)
		if err != nil {
			respond.Error(w, h.logger, domain.Validation("dateOfBirth must be a YYYY-MM-DD date"))
			return
		}
		client.DateOfBirth = &dob
	}

	err := h.store.WithTx(r.Context(), func(q *store.Queries) error {
		existing, err := q.FindActiveClientByName(r.Context(), req.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Conflict("Client '%s' already exists", req.Name)
		}
		return q.CreateClient(r.Context(), &client)
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	h.logger.Info("client created", "client_id", client.ID.String(), "name", client.Name)
	respond.JSON(w, http.StatusCreated, client)
}

// Update replaces the mutable fields of a client.
// PUT /clients/{id}
func (h *ClientsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	var req ClientRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	var client *domain.Client
	err = h.store.WithTx(r.Context(), func(q *store.Queries) error {
		client, err = q.GetClient(r.Context(), id)
		if err != nil {
			return err
		}
		if req.Name != "" {
			client.Name = req.Name
		}
		if req.Email != "" {
			client.Email = req.Email
		}
		if req.Phone != "" {
			client.Phone = req.Phone
		}
		if req.Address != "" {
			client.Address = req.Address
		}
		if req.Notes != "" {
			client.Notes = req.Notes
		}
		if req.DateOfBirth != "" {
			dob, perr := time.ParseInLocation("2006-01-02", req.DateOfBirth, time.UTC)
			if perr != nil {
				return domain.Validation("dateOfBirth must be a YYYY-MM-DD date")
			}
			client.DateOfBirth = &dob
		}
		return q.UpdateClient(r.Context(), client)
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, client)
}

// Deactivate soft-deletes a client.
// DELETE /clients/{id}
func (h *ClientsHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	if err := h.store.Queries().DeactivateClient(r.Context(), id); err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
