package allocation

import (
	"errors"
	"testing"

	"budgeteer/internal/models"
)

func pct(v float64) *float64 { return &v }

// testCategories builds a set with two allocated categories (30% + 40%),
// one ratio-tracked category and the income category.
func testCategories() []models.Category {
	return []models.Category{
		{ID: "c1", Name: "Housing", Percentage: pct(30), Position: 0},
		{ID: "c2", Name: "Food", Percentage: pct(40), Position: 1},
		{ID: "c3", Name: "Fun", Position: 2},
		{ID: "income", Name: "Income", IsIncome: true, Percentage: pct(99), Position: 3},
	}
}

// TestValidate verifies the 100% ceiling across existing allocations.
func TestValidate(t *testing.T) {
	categories := testCategories()

	tests := []struct {
		name      string
		editingID string
		candidate float64
		wantOK    bool
		wantTotal float64
	}{
		{"remaining headroom is fine", "new", 20, true, 90},
		{"exactly 100 is allowed", "new", 30, true, 100},
		{"over 100 is rejected", "new", 31, false, 101},
		{"editing excludes own share", "c2", 60, true, 90},
		{"editing can still overflow", "c2", 71, false, 101},
		{"income percentage is ignored", "new", 30, true, 100},
		{"zero is always fine", "new", 0, true, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(categories, tt.editingID, tt.candidate)
			if got.OK != tt.wantOK {
				t.Errorf("Validate(%q, %v).OK = %v, want %v", tt.editingID, tt.candidate, got.OK, tt.wantOK)
			}
			if got.Total != tt.wantTotal {
				t.Errorf("Validate(%q, %v).Total = %v, want %v", tt.editingID, tt.candidate, got.Total, tt.wantTotal)
			}
		})
	}
}

// TestCheckPercentage verifies the error form used by the service layer.
func TestCheckPercentage(t *testing.T) {
	categories := testCategories()

	if err := CheckPercentage(categories, "new", 20); err != nil {
		t.Errorf("CheckPercentage(20) = %v, want nil", err)
	}
	if err := CheckPercentage(categories, "new", 31); !errors.Is(err, ErrAllocationExceeded) {
		t.Errorf("CheckPercentage(31) = %v, want ErrAllocationExceeded", err)
	}
	if err := CheckPercentage(categories, "new", -5); !errors.Is(err, ErrAllocationExceeded) {
		t.Errorf("CheckPercentage(-5) = %v, want ErrAllocationExceeded", err)
	}
}

// TestCheckName verifies the name rules: non-empty and unique ignoring case.
func TestCheckName(t *testing.T) {
	categories := testCategories()

	tests := []struct {
		name      string
		editingID string
		input     string
		wantErr   error
	}{
		{"fresh name", "new", "Transport", nil},
		{"empty name", "new", "", ErrEmptyCategoryName},
		{"whitespace only", "new", "   ", ErrEmptyCategoryName},
		{"duplicate exact", "new", "Housing", ErrDuplicateCategoryName},
		{"duplicate case-insensitive", "new", "hOuSiNg", ErrDuplicateCategoryName},
		{"rename to own name", "c1", "Housing", nil},
		{"rename collides with other", "c1", "Food", ErrDuplicateCategoryName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckName(categories, tt.editingID, tt.input)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("CheckName(%q) = %v, want nil", tt.input, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckName(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
