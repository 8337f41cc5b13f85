// Package http carries the JSON plumbing shared by the handler
// packages: response writers, the error-to-status mapping, and query
// parsing helpers.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"budgeteer/internal/services/allocation"
	"budgeteer/internal/services/budget"
	"budgeteer/internal/services/storage"
)

// ErrMalformedBody reports an unparseable request body.
var ErrMalformedBody = errors.New("malformed request body")

// RespondJSON writes v as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// RespondError writes err as {"error": reason} with the mapped status.
func RespondError(w http.ResponseWriter, err error) {
	RespondJSON(w, StatusForError(err), map[string]string{"error": err.Error()})
}

// StatusForError maps domain errors onto HTTP status codes: missing
// records are 404, conflicts 409, validation failures 422, malformed
// bodies 400, a locked store 503, anything unrecognized 500.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, allocation.ErrDuplicateCategoryName),
		errors.Is(err, budget.ErrDefaultCategory):
		return http.StatusConflict
	case errors.Is(err, allocation.ErrAllocationExceeded),
		errors.Is(err, allocation.ErrEmptyCategoryName),
		errors.Is(err, budget.ErrGoalNotManual),
		errors.Is(err, budget.ErrEmptyGoalName),
		errors.Is(err, budget.ErrGoalTargetNotPositive),
		errors.Is(err, budget.ErrNegativeSavings),
		errors.Is(err, budget.ErrNegativeRatio):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrMalformedBody):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrLocked):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DecodeBody decodes a JSON request body into v.
func DecodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return nil
}

// ParseMonths reads the months query parameter, a comma-separated list
// of "2006-01" keys. Entries that do not parse are dropped; an empty
// result means the whole history.
func ParseMonths(r *http.Request) []string {
	raw := r.URL.Query().Get("months")
	if raw == "" {
		return nil
	}
	var months []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, err := time.Parse("2006-01", part); err != nil {
			continue
		}
		months = append(months, part)
	}
	return months
}
