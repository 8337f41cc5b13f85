// Package planner turns a transaction window into a budget summary and a
// recommended-versus-actual plan. Plans come in two modes: ratio (the
// preference split across the three canonical buckets) and percentage
// (explicit per-category allocations). The mode is resolved once per
// computation, never mixed.
package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"budgeteer/internal/models"
)

// OverspendThresholdPct is the minimum overshoot, as a percent of the
// recommended amount, before a bucket earns a reduction suggestion.
const OverspendThresholdPct = 10.0

var hundred = decimal.NewFromInt(100)

// PlanResult bundles everything the plan view needs.
type PlanResult struct {
	Summary     models.BudgetSummary `json:"summary"`
	Plan        models.BudgetPlan    `json:"plan"`
	Suggestions []string             `json:"suggestions,omitempty"`
}

// bucket is one row of the plan: a display name and its share of income.
type bucket struct {
	name  string
	share float64
}

// ComputePlan builds the summary and plan for a transaction window.
// Income must be positive for recommendations; otherwise every
// recommended amount is zero and no suggestions are produced.
func ComputePlan(ts *models.TransactionSet, categories []models.Category, prefs models.BudgetPreferences) PlanResult {
	summary := Summarize(ts, categories)

	mode := ResolveMode(categories)
	buckets := planBuckets(mode, categories, prefs)

	plan := models.BudgetPlan{
		Mode:        mode,
		Recommended: make(map[string]decimal.Decimal, len(buckets)),
		Actual:      make(map[string]decimal.Decimal, len(buckets)),
		Difference:  make(map[string]decimal.Decimal, len(buckets)),
	}

	hasIncome := summary.TotalIncome.IsPositive()
	var suggestions []string

	for _, b := range buckets {
		recommended := decimal.Zero
		if hasIncome {
			recommended = summary.TotalIncome.Mul(decimal.NewFromFloat(b.share)).Div(hundred)
		}
		actual := summary.Categories[b.name]

		plan.Recommended[b.name] = recommended
		plan.Actual[b.name] = actual
		plan.Difference[b.name] = actual.Sub(recommended)

		if !hasIncome || !recommended.IsPositive() {
			continue
		}
		if over := actual.Sub(recommended); over.IsPositive() {
			overPct, _ := over.Div(recommended).Mul(hundred).Float64()
			if overPct >= OverspendThresholdPct {
				suggestions = append(suggestions, fmt.Sprintf(
					"Consider reducing %s spending: $%s spent against a recommended $%s (%.0f%% over)",
					b.name, actual.StringFixed(2), recommended.StringFixed(2), overPct))
			}
		}
	}

	return PlanResult{Summary: summary, Plan: plan, Suggestions: suggestions}
}

// Summarize aggregates a window: total income plus expense totals keyed
// by canonical category name.
func Summarize(ts *models.TransactionSet, categories []models.Category) models.BudgetSummary {
	return models.BudgetSummary{
		TotalIncome: TotalIncome(ts, categories),
		Categories:  expenseTotals(ts, categories),
	}
}

// TotalIncome sums amounts over income transactions: type income, or
// category equal to the income category's name.
func TotalIncome(ts *models.TransactionSet, categories []models.Category) decimal.Decimal {
	incomeName := "Income"
	if c := models.IncomeCategory(categories); c != nil {
		incomeName = c.Name
	}

	total := decimal.Zero
	for _, t := range ts.Transactions {
		if t.Type == models.Income || strings.EqualFold(t.Category, incomeName) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// ResolveMode picks percentage mode as soon as any non-income category
// carries an explicit allocation.
func ResolveMode(categories []models.Category) models.PlanMode {
	for _, c := range categories {
		if !c.IsIncome && c.Percentage != nil {
			return models.PlanModePercentage
		}
	}
	return models.PlanModeRatio
}

// planBuckets lays out the plan rows in a stable order: the canonical
// three for ratio mode, position-sorted allocated categories for
// percentage mode.
func planBuckets(mode models.PlanMode, categories []models.Category, prefs models.BudgetPreferences) []bucket {
	if mode == models.PlanModeRatio {
		return []bucket{
			{name: canonicalBucketName(categories, models.CategoryEssentials, "Essentials"), share: prefs.Ratios.Essentials},
			{name: canonicalBucketName(categories, models.CategoryWants, "Wants"), share: prefs.Ratios.Wants},
			{name: canonicalBucketName(categories, models.CategorySavings, "Savings"), share: prefs.Ratios.Savings},
		}
	}

	allocated := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		if !c.IsIncome && c.Percentage != nil {
			allocated = append(allocated, c)
		}
	}
	sort.SliceStable(allocated, func(i, j int) bool {
		if allocated[i].Position != allocated[j].Position {
			return allocated[i].Position < allocated[j].Position
		}
		return allocated[i].Name < allocated[j].Name
	})

	buckets := make([]bucket, 0, len(allocated))
	for _, c := range allocated {
		buckets = append(buckets, bucket{name: c.Name, share: *c.Percentage})
	}
	return buckets
}

// canonicalBucketName follows a renamed built-in category; the fallback
// only applies when the built-in is missing entirely.
func canonicalBucketName(categories []models.Category, id, fallback string) string {
	if c := models.FindByID(categories, id); c != nil {
		return c.Name
	}
	return fallback
}

// expenseTotals sums absolute expense amounts per category, resolving
// each raw name to its stored category's canonical spelling so case
// variants land in one row.
func expenseTotals(ts *models.TransactionSet, categories []models.Category) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, t := range ts.Transactions {
		if t.Type != models.Expense {
			continue
		}
		name := canonicalName(categories, t.Category)
		totals[name] = totals[name].Add(t.Amount.Abs())
	}
	return totals
}

// canonicalName maps a raw transaction category to the stored category
// name when one matches, keeping unknown names verbatim.
func canonicalName(categories []models.Category, raw string) string {
	if raw == "" {
		return models.UncategorizedName
	}
	if c := models.FindByName(categories, raw); c != nil {
		return c.Name
	}
	return raw
}
