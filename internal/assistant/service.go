package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/internal/observability/metrics"
	"github.com/yarimal/ai-crm/pkg/logging"
)

// SpeechRenderer turns reply text into audio. Implementations may fail or
// be absent; the turn proceeds without audio either way.
type SpeechRenderer interface {
	Render(ctx context.Context, text string) (data string, mimeType string, err error)
}

// TurnResult is the full outcome of one handled user message.
type TurnResult struct {
	ChatID           uuid.UUID
	UserMessage      domain.Message
	AssistantMessage domain.Message
	ActionResults    []ActionResult
}

// Service orchestrates a conversational turn: resolve the chat, persist
// the user message, snapshot the domain, call the model, run the returned
// actions and persist the composed reply.
type Service struct {
	store    Store
	model    ModelClient
	cache    *CacheManager
	registry *Registry
	context  *ContextBuilder
	speech   SpeechRenderer
	metrics  *metrics.AssistantMetrics
	logger   *logging.Logger

	historyLimit int
	modelTimeout time.Duration
	now          func() time.Time
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithSpeech attaches a text-to-speech renderer.
func WithSpeech(r SpeechRenderer) ServiceOption {
	return func(s *Service) { s.speech = r }
}

// WithMetrics attaches turn metrics.
func WithMetrics(m *metrics.AssistantMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithServiceClock overrides the time source, used by tests.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithHistoryLimit bounds the rolling history fed back to the model.
func WithHistoryLimit(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithModelTimeout bounds each model call.
func WithModelTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.modelTimeout = d
		}
	}
}

// NewService wires the orchestrator. The model client and cache manager
// are explicit dependencies; no ambient state is consulted.
func NewService(store Store, model ModelClient, cache *CacheManager, registry *Registry, cb *ContextBuilder, logger *logging.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		store:        store,
		model:        model,
		cache:        cache,
		registry:     registry,
		context:      cb,
		logger:       logger,
		historyLimit: 15,
		modelTimeout: 30 * time.Second,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleMessage runs one full turn. The user message is persisted before
// the model is consulted, so it survives any downstream failure; only the
// assistant-side work of a failing step is rolled back.
func (s *Service) HandleMessage(ctx context.Context, chatID uuid.UUID, message string) (*TurnResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, domain.Validation("message must not be empty")
	}

	chat, err := s.resolveChat(ctx, chatID, message)
	if err != nil {
		return nil, err
	}

	userMsg := domain.Message{
		ChatID:  chat.ID,
		Content: message,
		Type:    domain.MessageUser,
	}
	if err := s.store.WithTx(ctx, func(q Queries) error {
		return q.CreateMessage(ctx, &userMsg)
	}); err != nil {
		return nil, err
	}

	q := s.store.Queries()
	history, err := s.rollingHistory(ctx, q, chat.ID, userMsg.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	snapshot, err := s.context.Build(ctx, q, now)
	if err != nil {
		return nil, err
	}

	req := s.composeRequest(ctx, chat, snapshot, history, message, now)
	resp := s.invokeModel(ctx, req)

	results := s.executeActions(ctx, resp.Calls)
	replyText := foldReply(resp.Text, results)

	assistantMsg := domain.Message{
		ChatID:    chat.ID,
		Content:   replyText,
		Type:      domain.MessageAssistant,
		ModelUsed: resp.Model,
	}
	s.renderSpeech(ctx, &assistantMsg)

	if err := s.store.WithTx(ctx, func(q Queries) error {
		if err := q.CreateMessage(ctx, &assistantMsg); err != nil {
			return err
		}
		return q.TouchChat(ctx, chat.ID)
	}); err != nil {
		return nil, err
	}

	s.metrics.ObserveTurn(resp.Model, "ok")
	return &TurnResult{
		ChatID:           chat.ID,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		ActionResults:    results,
	}, nil
}

// resolveChat loads the referenced chat or creates a new one titled from
// the first message.
func (s *Service) resolveChat(ctx context.Context, chatID uuid.UUID, message string) (*domain.Chat, error) {
	if chatID != uuid.Nil {
		return s.store.Queries().GetChat(ctx, chatID)
	}

	chat := domain.Chat{Title: domain.ChatTitleFromMessage(message)}
	if err := s.store.WithTx(ctx, func(q Queries) error {
		return q.CreateChat(ctx, &chat)
	}); err != nil {
		return nil, err
	}
	return &chat, nil
}

// rollingHistory returns the most recent turns of the chat, excluding the
// message being handled.
func (s *Service) rollingHistory(ctx context.Context, q Queries, chatID, currentMsgID uuid.UUID) ([]Turn, error) {
	messages, err := q.ListMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}

	turns := make([]Turn, 0, len(messages))
	for _, m := range messages {
		if m.ID == currentMsgID {
			continue
		}
		role := "user"
		if m.Type == domain.MessageAssistant {
			role = "model"
		}
		turns = append(turns, Turn{Role: role, Text: m.Content})
	}
	if len(turns) > s.historyLimit {
		turns = turns[len(turns)-s.historyLimit:]
	}
	return turns, nil
}

// composeRequest decides the cached or inline instruction path for this
// chat and assembles the model request.
func (s *Service) composeRequest(ctx context.Context, chat *domain.Chat, snapshot string, history []Turn, message string, now time.Time) Request {
	req := Request{
		DynamicContext: DynamicContext(now, snapshot),
		History:        history,
		UserMessage:    message,
	}

	if s.cache == nil {
		req.StaticInstructions = StaticInstructions
		return req
	}

	if s.cache.IsValid(ctx, chat.CacheName) {
		s.metrics.ObserveCache("hit")
		req.CacheName = chat.CacheName
		return req
	}
	if chat.CacheName != "" {
		s.metrics.ObserveCache("expired")
	} else {
		s.metrics.ObserveCache("miss")
	}

	req.StaticInstructions = StaticInstructions

	// Register a fresh cache for the next turn. Failures fall back to
	// inline instructions and are not fatal to this turn.
	if name := s.cache.Create(ctx, StaticInstructions); name != "" {
		if err := s.store.WithTx(ctx, func(q Queries) error {
			return q.SetChatCacheName(ctx, chat.ID, name)
		}); err != nil {
			s.logger.Warn("failed to persist instruction cache handle", "chat_id", chat.ID.String(), "error", err.Error())
		} else {
			chat.CacheName = name
		}
	}
	return req
}

// invokeModel calls the model with a deadline. Any failure degrades to
// the simulated response so the turn always completes.
func (s *Service) invokeModel(ctx context.Context, req Request) *Response {
	callCtx, cancel := context.WithTimeout(ctx, s.modelTimeout)
	defer cancel()

	started := time.Now()
	resp, err := s.model.GenerateResponse(callCtx, req)
	s.metrics.ObserveModelLatency(reqModel(resp), time.Since(started).Seconds())
	if err != nil {
		s.logger.Error("model call failed, degrading to simulated mode", "error", err.Error())
		s.metrics.ObserveTurn(SimulatedModel, "degraded")
		return &Response{Text: SimulatedModeMessage, Model: SimulatedModel}
	}
	return resp
}

func reqModel(resp *Response) string {
	if resp == nil {
		return SimulatedModel
	}
	return resp.Model
}

func (s *Service) executeActions(ctx context.Context, calls []ActionCall) []ActionResult {
	if len(calls) == 0 {
		return nil
	}
	results := s.registry.ExecuteAll(ctx, calls)
	for _, r := range results {
		s.metrics.ObserveAction(string(r.Function), r.Result.Success)
	}
	return results
}

// renderSpeech attaches audio to the reply when a renderer is configured.
// Failures leave the message text-only.
func (s *Service) renderSpeech(ctx context.Context, msg *domain.Message) {
	if s.speech == nil {
		return
	}
	data, mimeType, err := s.speech.Render(ctx, msg.Content)
	if err != nil {
		s.logger.Warn("speech rendering failed", "error", err.Error())
		return
	}
	msg.AudioData = data
	msg.AudioMIME = mimeType
}

// foldReply concatenates the model's free text with one line per action
// result. Failures carry an error prefix; a turn that produced nothing
// visible gets a default acknowledgement.
func foldReply(text string, results []ActionResult) string {
	var lines []string
	for _, r := range results {
		switch {
		case r.Result.Success && r.Result.Message != "":
			lines = append(lines, r.Result.Message)
		case !r.Result.Success:
			errText := r.Result.Error
			if errText == "" {
				errText = "Something went wrong"
			}
			lines = append(lines, "❌ "+errText)
		}
	}

	if len(lines) > 0 {
		folded := strings.Join(lines, "\n\n")
		if text != "" {
			return text + "\n\n" + folded
		}
		return folded
	}
	if text == "" {
		return "Done! ✅"
	}
	return text
}

// ListModels reports the models this deployment can serve with.
func (s *Service) ListModels() []ModelInfo {
	return []ModelInfo{{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash"}}
}

// ModelInfo describes one selectable model.
type ModelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
