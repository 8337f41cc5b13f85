// Package allocation guards category percentage assignments: across all
// non-income categories the explicit allocations may never sum past 100%
// of income.
package allocation

import (
	"errors"
	"fmt"
	"strings"

	"budgeteer/internal/models"
)

var (
	// ErrAllocationExceeded rejects a percentage that would push the
	// combined allocation over 100%.
	ErrAllocationExceeded = errors.New("category allocations cannot exceed 100% of income")

	// ErrEmptyCategoryName rejects blank category names.
	ErrEmptyCategoryName = errors.New("category name cannot be empty")

	// ErrDuplicateCategoryName rejects names already in use. Names are
	// compared case-insensitively.
	ErrDuplicateCategoryName = errors.New("a category with this name already exists")
)

// Result reports the outcome of a percentage check. Total is the sum
// the assignment would produce, kept for messages and UI display.
type Result struct {
	OK    bool
	Total float64
}

// Validate checks whether assigning candidate percent to a category is
// allowed. editingID names the category being created or edited; its
// current percentage is excluded so editing a value in place never
// counts twice. Income categories and ratio-tracked categories (nil
// percentage) contribute nothing to the sum.
func Validate(categories []models.Category, editingID string, candidate float64) Result {
	total := candidate
	for _, c := range categories {
		if c.IsIncome || c.ID == editingID || c.Percentage == nil {
			continue
		}
		total += *c.Percentage
	}
	return Result{OK: total <= 100, Total: total}
}

// CheckPercentage wraps Validate into an error for the service layer.
// Negative percentages are rejected outright.
func CheckPercentage(categories []models.Category, editingID string, candidate float64) error {
	if candidate < 0 {
		return fmt.Errorf("%w: percentage cannot be negative", ErrAllocationExceeded)
	}
	if res := Validate(categories, editingID, candidate); !res.OK {
		return fmt.Errorf("%w: total would be %.0f%%", ErrAllocationExceeded, res.Total)
	}
	return nil
}

// CheckName validates a category name for creation or rename. editingID
// excludes the category being edited from the duplicate check.
func CheckName(categories []models.Category, editingID, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyCategoryName
	}
	for _, c := range categories {
		if c.ID == editingID {
			continue
		}
		if strings.EqualFold(c.Name, trimmed) {
			return fmt.Errorf("%w: %q", ErrDuplicateCategoryName, c.Name)
		}
	}
	return nil
}
