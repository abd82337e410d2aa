package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yarimal/ai-crm/internal/api/respond"
	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/internal/store"
	"github.com/yarimal/ai-crm/pkg/logging"
)

// ChatsHandler exposes conversation transcripts.
type ChatsHandler struct {
	store  *store.Store
	logger *logging.Logger
}

// NewChatsHandler creates the chats HTTP handler.
func NewChatsHandler(s *store.Store, logger *logging.Logger) *ChatsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatsHandler{store: s, logger: logger}
}

// Routes returns a chi router with chat routes.
func (h *ChatsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	return r
}

// List returns all chats, most recently active first.
// GET /chats
func (h *ChatsHandler) List(w http.ResponseWriter, r *http.Request) {
	chats, err := h.store.Queries().ListChats(r.Context())
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, chats)
}

// ChatDetail is a chat with its full transcript.
type ChatDetail struct {
	domain.Chat
	Messages []domain.Message `json:"messages"`
}

// Get returns one chat together with its messages in chronological order.
// GET /chats/{id}
func (h *ChatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	q := h.store.Queries()
	chat, err := q.GetChat(r.Context(), id)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	messages, err := q.ListMessages(r.Context(), id)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, ChatDetail{Chat: *chat, Messages: messages})
}

// Delete removes a chat and its messages.
// DELETE /chats/{id}
func (h *ChatsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	err = h.store.WithTx(r.Context(), func(q *store.Queries) error {
		if _, err := q.GetChat(r.Context(), id); err != nil {
			return err
		}
		return q.DeleteChat(r.Context(), id)
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	h.logger.Info("chat deleted", "chat_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}
