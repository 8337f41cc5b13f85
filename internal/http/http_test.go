package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"budgeteer/internal/services/allocation"
	"budgeteer/internal/services/budget"
	"budgeteer/internal/services/storage"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("goal x: %w", storage.ErrNotFound), http.StatusNotFound},
		{"duplicate name", allocation.ErrDuplicateCategoryName, http.StatusConflict},
		{"default delete", budget.ErrDefaultCategory, http.StatusConflict},
		{"allocation exceeded", allocation.ErrAllocationExceeded, http.StatusUnprocessableEntity},
		{"empty name", allocation.ErrEmptyCategoryName, http.StatusUnprocessableEntity},
		{"manual update refused", budget.ErrGoalNotManual, http.StatusUnprocessableEntity},
		{"goal target", budget.ErrGoalTargetNotPositive, http.StatusUnprocessableEntity},
		{"malformed body", ErrMalformedBody, http.StatusBadRequest},
		{"locked store", storage.ErrLocked, http.StatusServiceUnavailable},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusForError(tt.err); got != tt.want {
				t.Errorf("StatusForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("category x: %w", storage.ErrNotFound))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	want := "{\"error\":\"category x: not found\"}\n"
	if rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
}

func TestParseMonths(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"absent", "", nil},
		{"single", "months=2025-01", []string{"2025-01"}},
		{"list", "months=2025-01,2025-02", []string{"2025-01", "2025-02"}},
		{"spaces trimmed", "months=2025-01,%202025-02", []string{"2025-01", "2025-02"}},
		{"invalid dropped", "months=2025-01,notamonth,2025-13", []string{"2025-01"}},
		{"all invalid", "months=x,y", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/summary?"+tt.query, nil)
			if got := ParseMonths(r); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseMonths(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
