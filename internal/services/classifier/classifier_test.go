package classifier

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgeteer/internal/models"
)

// TestClassify verifies keyword matching against the default category set.
func TestClassify(t *testing.T) {
	categories := models.DefaultCategories()

	tests := []struct {
		name        string
		description string
		amount      decimal.Decimal
		want        string
	}{
		{"rent is essential", "Monthly rent payment", decimal.NewFromInt(-1500), "Essentials"},
		{"groceries are essential", "GROCERY OUTLET #42", decimal.NewFromInt(-86), "Essentials"},
		{"positive amount is income", "Paycheck", decimal.NewFromInt(3000), "Income"},
		{"positive amount overrides keywords", "Refund from restaurant", decimal.NewFromFloat(25.50), "Income"},
		{"dining is a want", "Dinner at Luigi's restaurant", decimal.NewFromInt(-60), "Wants"},
		{"streaming is a want", "NETFLIX.COM subscription", decimal.NewFromFloat(-15.99), "Wants"},
		{"brokerage is savings", "Transfer to Vanguard brokerage", decimal.NewFromInt(-500), "Savings"},
		{"unknown falls back to essentials", "xyzzy", decimal.NewFromInt(-50), "Essentials"},
		{"empty description falls back", "", decimal.NewFromInt(-10), "Essentials"},
		{"zero amount is not income", "rent", decimal.Zero, "Essentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.description, tt.amount, categories)
			if got != tt.want {
				t.Errorf("Classify(%q, %s) = %q, want %q", tt.description, tt.amount, got, tt.want)
			}
		})
	}
}

// TestClassifyRuleOrder verifies that position decides which rule wins
// when keywords overlap.
func TestClassifyRuleOrder(t *testing.T) {
	// "Coffee" shares a keyword with the Wants table. Positioned ahead
	// of Wants it must win; positioned after, Wants matches first.
	coffee := models.Category{ID: "c1", Name: "Coffee", Position: 0}
	categories := append([]models.Category{coffee}, models.DefaultCategories()...)
	for i := 1; i < len(categories); i++ {
		categories[i].Position = i
	}

	got := Classify("coffee downtown", decimal.NewFromInt(-4), categories)
	if got != "Coffee" {
		t.Errorf("Classify with Coffee at position 0 = %q, want Coffee", got)
	}

	// Move the user category behind the defaults.
	categories[0].Position = 10
	got = Classify("coffee downtown", decimal.NewFromInt(-4), categories)
	if got != "Wants" {
		t.Errorf("Classify with Coffee at position 10 = %q, want Wants", got)
	}
}

// TestClassifyRenamedDefault verifies that the built-in keyword table
// follows a renamed default category.
func TestClassifyRenamedDefault(t *testing.T) {
	categories := models.DefaultCategories()
	categories[0].Name = "Needs"

	got := Classify("Grocery store run", decimal.NewFromInt(-80), categories)
	if got != "Needs" {
		t.Errorf("Classify with renamed essentials = %q, want Needs", got)
	}
}

// TestClassifyUserCategoryName verifies that a user-defined category
// matches on its own name.
func TestClassifyUserCategoryName(t *testing.T) {
	pets := models.Category{ID: "c-pets", Name: "Pets", Position: 0}
	categories := append([]models.Category{pets}, models.DefaultCategories()...)
	for i := 1; i < len(categories); i++ {
		categories[i].Position = i
	}

	got := Classify("PETS R US SUPPLY", decimal.NewFromInt(-42), categories)
	if got != "Pets" {
		t.Errorf("Classify(%q) = %q, want Pets", "PETS R US SUPPLY", got)
	}
}

// TestClassifyDeterministic verifies that slice order does not change
// the outcome when positions are fixed.
func TestClassifyDeterministic(t *testing.T) {
	categories := models.DefaultCategories()
	reversed := make([]models.Category, len(categories))
	for i, c := range categories {
		reversed[len(categories)-1-i] = c
	}

	desc := "grocery and coffee"
	a, b := Classify(desc, decimal.NewFromInt(-30), categories), Classify(desc, decimal.NewFromInt(-30), reversed)
	if a != b {
		t.Errorf("Classify depends on slice order: %q vs %q", a, b)
	}
	if a != "Essentials" {
		t.Errorf("Classify(%q) = %q, want Essentials (lowest position wins)", desc, a)
	}
}

// TestClassifyNoCategories verifies the degenerate fallback.
func TestClassifyNoCategories(t *testing.T) {
	got := Classify("anything", decimal.NewFromInt(-5), nil)
	if got != models.UncategorizedName {
		t.Errorf("Classify with no categories = %q, want %q", got, models.UncategorizedName)
	}
}

// TestClassifyTransactions verifies batch fill-in of category and type.
func TestClassifyTransactions(t *testing.T) {
	categories := models.DefaultCategories()
	transactions := []models.Transaction{
		{ID: "t1", Date: time.Now(), Amount: decimal.NewFromInt(3000), Description: "Paycheck"},
		{ID: "t2", Date: time.Now(), Amount: decimal.NewFromInt(-1200), Description: "Rent"},
		{ID: "t3", Date: time.Now(), Amount: decimal.NewFromInt(-50), Description: "Concert tickets", Category: "Essentials", Type: models.Expense},
	}

	got := ClassifyTransactions(transactions, categories)

	if got[0].Category != "Income" || got[0].Type != models.Income {
		t.Errorf("t1 = %q/%q, want Income/income", got[0].Category, got[0].Type)
	}
	if got[1].Category != "Essentials" || got[1].Type != models.Expense {
		t.Errorf("t2 = %q/%q, want Essentials/expense", got[1].Category, got[1].Type)
	}
	// Explicit assignments are never overwritten.
	if got[2].Category != "Essentials" {
		t.Errorf("t3 category = %q, want explicit Essentials preserved", got[2].Category)
	}
}
