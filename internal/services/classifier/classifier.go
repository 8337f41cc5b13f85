package classifier

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"budgeteer/internal/models"
)

// Essentials keywords (lowercase)
var EssentialsKeywords = []string{
	"rent", "mortgage", "lease payment",
	"grocery", "groceries", "supermarket",
	"electric", "power bill", "utility", "utilities",
	"water bill", "gas bill", "heating",
	"insurance", "premium",
	"pharmacy", "prescription", "doctor", "dentist", "medical", "clinic",
	"fuel", "gas station", "transit", "bus pass", "train ticket", "parking",
	"internet", "phone bill", "mobile plan",
	"childcare", "daycare", "tuition",
}

// Wants keywords (lowercase)
var WantsKeywords = []string{
	"restaurant", "dining", "takeout", "delivery",
	"coffee", "cafe", "bar", "pub",
	"netflix", "spotify", "hulu", "streaming", "subscription",
	"movie", "cinema", "theater", "concert", "ticket",
	"game", "gaming", "hobby",
	"travel", "hotel", "flight", "airline", "vacation",
	"shopping", "clothing", "apparel", "electronics", "amazon",
	"gym", "fitness", "salon", "spa",
	"gift",
}

// Savings keywords (lowercase)
var SavingsKeywords = []string{
	"savings", "saving deposit",
	"investment", "invest", "brokerage",
	"vanguard", "fidelity", "schwab",
	"401k", "roth", "ira", "retirement contribution",
	"emergency fund", "rainy day",
	"certificate of deposit", "money market",
}

// builtinKeywords maps the well-known default category IDs to their
// keyword tables. User-defined categories match on their own name.
var builtinKeywords = map[string][]string{
	models.CategoryEssentials: EssentialsKeywords,
	models.CategoryWants:      WantsKeywords,
	models.CategorySavings:    SavingsKeywords,
}

// rule binds a target category name to the lowercase substrings that
// select it. Rules are evaluated in order; the first hit wins.
type rule struct {
	category string
	keywords []string
}

// buildRules assembles the ordered rule list for a category set.
// Categories are visited by position (name breaks ties) so the outcome
// never depends on slice order. The income category contributes no
// rule: income is decided by amount sign before rules run.
func buildRules(categories []models.Category) []rule {
	ordered := make([]models.Category, len(categories))
	copy(ordered, categories)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Position != ordered[j].Position {
			return ordered[i].Position < ordered[j].Position
		}
		return ordered[i].Name < ordered[j].Name
	})

	rules := make([]rule, 0, len(ordered))
	for _, c := range ordered {
		if c.IsIncome {
			continue
		}
		keywords := builtinKeywords[c.ID]
		if name := strings.ToLower(strings.TrimSpace(c.Name)); name != "" {
			// The category's own name always selects it, ahead of
			// the generic keyword table.
			keywords = append([]string{name}, keywords...)
		}
		if len(keywords) == 0 {
			continue
		}
		rules = append(rules, rule{category: c.Name, keywords: keywords})
	}
	return rules
}

// Classify maps a transaction to a category name. Positive amounts go
// to the income category. Everything else runs through the ordered
// keyword rules; no match falls back to the essentials category. The
// result is always a usable name, even for empty descriptions.
func Classify(description string, amount decimal.Decimal, categories []models.Category) string {
	if amount.Sign() > 0 {
		if income := models.IncomeCategory(categories); income != nil {
			return income.Name
		}
	}

	descLower := strings.ToLower(strings.TrimSpace(description))
	if descLower != "" {
		for _, r := range buildRules(categories) {
			if containsAny(descLower, r.keywords) {
				return r.category
			}
		}
	}

	if fallback := models.EssentialsCategory(categories); fallback != nil {
		return fallback.Name
	}
	return models.UncategorizedName
}

// ClassifyTransactions fills in missing category and type fields for a
// batch, leaving explicit assignments untouched.
func ClassifyTransactions(transactions []models.Transaction, categories []models.Category) []models.Transaction {
	for i := range transactions {
		if transactions[i].Category == "" {
			transactions[i].Category = Classify(transactions[i].Description, transactions[i].Amount, categories)
		}
		if transactions[i].Type == "" {
			transactions[i].Type = TypeForAmount(transactions[i].Amount)
		}
	}
	return transactions
}

// TypeForAmount infers the transaction type from the amount sign.
func TypeForAmount(amount decimal.Decimal) models.TransactionType {
	if amount.Sign() > 0 {
		return models.Income
	}
	return models.Expense
}

// containsAny checks if text contains any of the keywords
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
