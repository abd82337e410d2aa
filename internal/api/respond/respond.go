// Package respond maps domain results and errors onto HTTP responses.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yarimal/ai-crm/internal/domain"
	"github.com/yarimal/ai-crm/pkg/logging"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// Error writes err as a JSON error response, mapping the domain error
// kind to a status code. Unclassified errors are treated as internal and
// their details are logged, not surfaced.
func Error(w http.ResponseWriter, logger *logging.Logger, err error) {
	kind := domain.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindUpstream:
		status = http.StatusServiceUnavailable
	}

	msg := "internal server error"
	var de *domain.Error
	if errors.As(err, &de) && de.Kind != domain.KindInternal {
		msg = de.Msg
	}
	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", "error", err.Error())
	}
	JSON(w, status, errorBody{Error: msg})
}
