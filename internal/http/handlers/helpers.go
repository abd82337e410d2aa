// Package handlers exposes the CRUD HTTP surface over the scheduling store.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/yarimal/ai-crm/internal/domain"
)

// urlID parses the {id} URL parameter.
func urlID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domain.Validation("id is not a valid identifier")
	}
	return id, nil
}

// queryID parses an optional UUID query parameter; uuid.Nil when absent.
func queryID(r *http.Request, key string) (uuid.UUID, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, domain.Validation("%s is not a valid identifier", key)
	}
	return id, nil
}

// parseRequiredID parses a UUID from a request body field.
func parseRequiredID(v, field string) (uuid.UUID, error) {
	if v == "" {
		return uuid.Nil, domain.Validation("%s is required", field)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, domain.Validation("%s is not a valid identifier", field)
	}
	return id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter as UTC midnight.
func queryDate(r *http.Request, key string) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	if err != nil {
		return time.Time{}, domain.Validation("%s must be a YYYY-MM-DD date", key)
	}
	return t, nil
}

// queryTime parses an optional RFC 3339 query parameter.
func queryTime(r *http.Request, key string) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		// Accept a bare date as a convenience.
		return queryDate(r, key)
	}
	return t.UTC(), nil
}

// parseRFC3339 parses a required RFC 3339 timestamp from a body field.
func parseRFC3339(v, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, domain.Validation("%s must be an RFC 3339 timestamp", field)
	}
	return t.UTC(), nil
}

// parseTimeRange parses a start/end pair and enforces start < end.
func parseTimeRange(startVal, endVal string) (start, end time.Time, err error) {
	if startVal == "" || endVal == "" {
		return time.Time{}, time.Time{}, domain.Validation("startTime and endTime are required")
	}
	if start, err = parseRFC3339(startVal, "startTime"); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end, err = parseRFC3339(endVal, "endTime"); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, domain.Validation("endTime must be after startTime")
	}
	return start, end, nil
}

// parsePositiveInt parses a strictly positive decimal integer.
func parsePositiveInt(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, domain.Validation("expected a positive integer, got %q", v)
	}
	return n, nil
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Validation("invalid JSON body")
	}
	return nil
}
