package models

import "github.com/shopspring/decimal"

// PlanMode distinguishes the two allocation styles. The mode is resolved
// once at plan-computation time: ratio when no category carries an explicit
// percentage, percentage otherwise.
type PlanMode string

const (
	PlanModeRatio      PlanMode = "ratio"
	PlanModePercentage PlanMode = "percentage"
)

// BudgetSummary is the aggregation of a transaction window: total income
// plus actual expense totals per category. Derived, never stored.
type BudgetSummary struct {
	TotalIncome decimal.Decimal            `json:"total_income"`
	Categories  map[string]decimal.Decimal `json:"categories"`
}

// BudgetPlan compares recommended amounts against actual spend. In ratio
// mode the keys are the canonical bucket names; in percentage mode they are
// the names of the percentage-carrying categories. Difference is
// actual - recommended, so a positive value is overspend.
type BudgetPlan struct {
	Mode        PlanMode                   `json:"mode"`
	Recommended map[string]decimal.Decimal `json:"recommended"`
	Actual      map[string]decimal.Decimal `json:"actual"`
	Difference  map[string]decimal.Decimal `json:"difference"`
}
