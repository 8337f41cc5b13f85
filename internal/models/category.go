package models

import "strings"

// Well-known IDs for the built-in categories. Default categories can be
// renamed and recolored but never deleted, so identity lives in the ID.
const (
	CategoryEssentials = "essentials"
	CategoryWants      = "wants"
	CategorySavings    = "savings"
	CategoryIncome     = "income"
)

// UncategorizedName labels transactions whose category is empty or no
// longer resolves to a stored category.
const UncategorizedName = "Uncategorized"

// Category is a budget category. Percentage is nil for ratio-tracked
// categories and set (0-100) when the category carries an explicit
// allocation. Position is the classifier priority: lower matches first.
type Category struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Color      string   `json:"color"`
	Icon       string   `json:"icon"`
	IsDefault  bool     `json:"is_default"`
	IsIncome   bool     `json:"is_income"`
	Percentage *float64 `json:"percentage,omitempty"`
	Position   int      `json:"position"`
}

// DefaultCategories returns the four built-in categories in classifier
// priority order.
func DefaultCategories() []Category {
	return []Category{
		{ID: CategoryEssentials, Name: "Essentials", Color: "#3b82f6", Icon: "home", IsDefault: true, Position: 0},
		{ID: CategoryWants, Name: "Wants", Color: "#8b5cf6", Icon: "shopping-bag", IsDefault: true, Position: 1},
		{ID: CategorySavings, Name: "Savings", Color: "#22c55e", Icon: "piggy-bank", IsDefault: true, Position: 2},
		{ID: CategoryIncome, Name: "Income", Color: "#f59e0b", Icon: "banknote", IsDefault: true, IsIncome: true, Position: 3},
	}
}

// FindByID returns the category with the given ID, or nil
func FindByID(categories []Category, id string) *Category {
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i]
		}
	}
	return nil
}

// FindByName returns the first category matching name case-insensitively, or nil
func FindByName(categories []Category, name string) *Category {
	for i := range categories {
		if strings.EqualFold(categories[i].Name, name) {
			return &categories[i]
		}
	}
	return nil
}

// IncomeCategory returns the income category, falling back to a category
// named "Income" when no IsIncome flag is set, or nil
func IncomeCategory(categories []Category) *Category {
	for i := range categories {
		if categories[i].IsIncome {
			return &categories[i]
		}
	}
	return FindByName(categories, "Income")
}

// EssentialsCategory returns the classifier fallback: the essentials
// built-in when present, else the first non-income category, or nil
func EssentialsCategory(categories []Category) *Category {
	if c := FindByID(categories, CategoryEssentials); c != nil {
		return c
	}
	for i := range categories {
		if !categories[i].IsIncome {
			return &categories[i]
		}
	}
	return nil
}
