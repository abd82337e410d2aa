package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/pkg/logging"
)

// ActionName enumerates the operations the assistant may invoke. Dispatch
// is by tag through a typed registry, never by raw string comparison at
// call sites.
type ActionName string

const (
	ActionCreateAppointment   ActionName = "create_appointment"
	ActionGetAppointments     ActionName = "get_appointments"
	ActionCheckAvailability   ActionName = "check_availability"
	ActionGetProviderSchedule ActionName = "get_provider_schedule"
	ActionCancelAppointment   ActionName = "cancel_appointment"
	ActionCreateClient        ActionName = "create_client"
	ActionCreateProvider      ActionName = "create_provider"
	ActionSearchClients       ActionName = "search_clients"
)

// Args is the raw key-value argument bag of one action invocation.
type Args map[string]any

// String reads an optional string argument.
func (a Args) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// RequiredString reads a mandatory string argument.
func (a Args) RequiredString(key string) (string, error) {
	v := a.String(key)
	if v == "" {
		return "", domain.Validation("missing required argument %q", key)
	}
	return v, nil
}

// UUID reads an optional UUID argument; uuid.Nil when absent.
func (a Args) UUID(key string) (uuid.UUID, error) {
	v := a.String(key)
	if v == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, domain.Validation("argument %q is not a valid id", key)
	}
	return id, nil
}

// RequiredUUID reads a mandatory UUID argument.
func (a Args) RequiredUUID(key string) (uuid.UUID, error) {
	v, err := a.RequiredString(key)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, domain.Validation("argument %q is not a valid id", key)
	}
	return id, nil
}

// Float reads an optional numeric argument.
func (a Args) Float(key string) (float64, bool) {
	switch v := a[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Date parses a mandatory YYYY-MM-DD argument as a UTC midnight instant.
func (a Args) Date(key string) (time.Time, error) {
	v, err := a.RequiredString(key)
	if err != nil {
		return time.Time{}, err
	}
	t, perr := time.ParseInLocation("2006-01-02", v, time.UTC)
	if perr != nil {
		return time.Time{}, domain.Validation("argument %q must be a YYYY-MM-DD date", key)
	}
	return t, nil
}

// ClockOn parses a mandatory HH:MM argument onto the given day.
func (a Args) ClockOn(day time.Time, key string) (time.Time, error) {
	v, err := a.RequiredString(key)
	if err != nil {
		return time.Time{}, err
	}
	t, perr := time.ParseInLocation("15:04", v, time.UTC)
	if perr != nil {
		return time.Time{}, domain.Validation("argument %q must be a 24-hour HH:MM time", key)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// ActionCall is one structured invocation parsed out of a model response.
type ActionCall struct {
	Name ActionName `json:"name"`
	Args Args       `json:"args"`
}

// Result is the uniform outcome shape of every action.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ActionResult pairs an invocation with its outcome for the API response.
type ActionResult struct {
	Function ActionName `json:"function"`
	Args     Args       `json:"args"`
	Result   Result     `json:"result"`
}

// Action is one named, schema-validated operation over the domain store.
// Execute runs inside a transaction owned by the registry and returns the
// user-facing confirmation message, or a classified domain error.
type Action interface {
	Name() ActionName
	Execute(ctx context.Context, q Queries, args Args) (string, error)
}

// Registry dispatches action calls to their handlers, each inside its own
// transaction. Action failures are converted to Result values and never
// escape as faults.
type Registry struct {
	store   Store
	actions map[ActionName]Action
	logger  *logging.Logger
	now     func() time.Time
}

// RegistryOption configures the registry.
type RegistryOption func(*Registry)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// NewRegistry builds the registry with all scheduling actions installed.
func NewRegistry(store Store, logger *logging.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = logging.Default()
	}
	r := &Registry{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}

	r.actions = make(map[ActionName]Action)
	for _, a := range []Action{
		&createAppointmentAction{},
		&getAppointmentsAction{},
		&checkAvailabilityAction{logger: logger},
		&getProviderScheduleAction{},
		&cancelAppointmentAction{},
		&createClientAction{},
		&createProviderAction{logger: logger},
		&searchClientsAction{},
	} {
		r.actions[a.Name()] = a
	}
	return r
}

// Execute runs one action call and returns its uniform result.
func (r *Registry) Execute(ctx context.Context, call ActionCall) Result {
	action, ok := r.actions[call.Name]
	if !ok {
		return Result{Success: false, Error: fmt.Sprintf("Unknown function: %s", call.Name)}
	}

	var message string
	err := r.store.WithTx(ctx, func(q Queries) error {
		m, execErr := action.Execute(ctx, q, call.Args)
		message = m
		return execErr
	})
	if err != nil {
		r.logger.Warn("action failed",
			"action", string(call.Name),
			"kind", string(domain.KindOf(err)),
			"error", err.Error(),
		)
		return Result{Success: false, Error: userFacing(err)}
	}
	return Result{Success: true, Message: message}
}

// ExecuteAll runs calls in order, collecting per-call results.
func (r *Registry) ExecuteAll(ctx context.Context, calls []ActionCall) []ActionResult {
	results := make([]ActionResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, ActionResult{
			Function: call.Name,
			Args:     call.Args,
			Result:   r.Execute(ctx, call),
		})
	}
	return results
}

// userFacing extracts the safe message of a classified error; unexpected
// faults get a generic line rather than leaking internals.
func userFacing(err error) string {
	var de *domain.Error
	if errors.As(err, &de) && de.Kind != domain.KindInternal {
		return de.Msg
	}
	return "Something went wrong, please try again"
}
