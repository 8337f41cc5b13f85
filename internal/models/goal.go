package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalCategory determines how a goal's progress is tracked
type GoalCategory string

const (
	GoalSavings    GoalCategory = "Savings"
	GoalDebt       GoalCategory = "Debt"
	GoalInvestment GoalCategory = "Investment"
	GoalCustom     GoalCategory = "Custom"
)

// FinancialGoal is a user-defined target. Savings goals are manually
// tracked: CurrentAmount changes only through an explicit update and is
// never overwritten from transaction aggregation. All other categories are
// auto-tracked from matching transactions.
type FinancialGoal struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      time.Time       `json:"deadline"`
	Category      GoalCategory    `json:"category"`
	CreatedAt     time.Time       `json:"created_at"`
	LastUpdated   *time.Time      `json:"last_updated,omitempty"`
}

// NewGoal creates a goal with a fresh ID and creation timestamp
func NewGoal(name string, target decimal.Decimal, deadline time.Time, category GoalCategory) FinancialGoal {
	return FinancialGoal{
		ID:           uuid.NewString(),
		Name:         name,
		TargetAmount: target,
		Deadline:     deadline,
		Category:     category,
		CreatedAt:    time.Now().UTC(),
	}
}

// ManuallyTracked reports whether progress is user-maintained
func (g FinancialGoal) ManuallyTracked() bool {
	return g.Category == GoalSavings
}

// GoalProgress is the schedule/progress view of a goal at a point in time.
// MonthlyRequired is meaningful only when Overdue is false and the goal is
// not yet met.
type GoalProgress struct {
	Goal              FinancialGoal   `json:"goal"`
	ProgressPercent   float64         `json:"progress_percent"`
	DaysUntilDeadline int             `json:"days_until_deadline"`
	MonthlyRequired   decimal.Decimal `json:"monthly_required"`
	Overdue           bool            `json:"overdue"`
}
