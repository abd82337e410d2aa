package assistant

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/yarimal/ai-crm/internal/api/respond"
	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/pkg/logging"
)

// Handler exposes the conversational endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the assistant HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes returns a chi router with the assistant routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/chat", h.Chat)
	r.Get("/models", h.Models)
	return r
}

// ChatRequest is the request body for a conversational turn.
type ChatRequest struct {
	ChatID  string `json:"chatId,omitempty"`
	Message string `json:"message"`
}

type messagePayload struct {
	ID        string `json:"id"`
	ChatID    string `json:"chatId"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	ModelUsed string `json:"modelUsed,omitempty"`
	AudioData string `json:"audioData,omitempty"`
	AudioMIME string `json:"audioMimeType,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// ChatResponse is the full outcome of one turn.
type ChatResponse struct {
	ChatID        string         `json:"chatId"`
	UserMessage   messagePayload `json:"userMessage"`
	AIMessage     messagePayload `json:"aiMessage"`
	FunctionCalls []ActionResult `json:"functionCalls"`
}

// Chat handles one user message.
// POST /ai/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, h.logger, domain.Validation("invalid JSON body"))
		return
	}

	chatID := uuid.Nil
	if req.ChatID != "" {
		parsed, err := uuid.Parse(req.ChatID)
		if err != nil {
			respond.Error(w, h.logger, domain.Validation("chatId is not a valid id"))
			return
		}
		chatID = parsed
	}

	result, err := h.service.HandleMessage(r.Context(), chatID, req.Message)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	calls := result.ActionResults
	if calls == nil {
		calls = []ActionResult{}
	}
	respond.JSON(w, http.StatusOK, ChatResponse{
		ChatID:        result.ChatID.String(),
		UserMessage:   toMessagePayload(result.UserMessage),
		AIMessage:     toMessagePayload(result.AssistantMessage),
		FunctionCalls: calls,
	})
}

// Models lists the selectable models.
// GET /ai/models
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	models := h.service.ListModels()
	respond.JSON(w, http.StatusOK, map[string]any{
		"models":  models,
		"default": models[0].ID,
	})
}

func toMessagePayload(m domain.Message) messagePayload {
	return messagePayload{
		ID:        m.ID.String(),
		ChatID:    m.ChatID.String(),
		Content:   m.Content,
		Type:      string(m.Type),
		ModelUsed: m.ModelUsed,
		AudioData: m.AudioData,
		AudioMIME: m.AudioMIME,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}
