// Package goals recomputes goal progress from transactions and derives
// schedule metrics. Savings goals are the exception throughout: their
// current amount is user-maintained and the tracker never touches it.
package goals

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgeteer/internal/models"
)

var thirty = decimal.NewFromInt(30)

// Tracker computes goal progress against an injectable clock so that
// schedule math is testable.
type Tracker struct {
	now func() time.Time
}

// NewTracker returns a tracker on the wall clock.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// NewTrackerWithClock returns a tracker with a fixed or fake clock.
func NewTrackerWithClock(now func() time.Time) *Tracker {
	return &Tracker{now: now}
}

// Recompute refreshes the current amount of every auto-tracked goal from
// the transaction set: the sum of absolute amounts over transactions
// whose category matches the goal's category name, dated on or before
// the deadline. It returns the full refreshed slice plus the subset
// whose amount actually changed; only the changed subset needs
// persisting. Savings goals pass through untouched. Recompute is
// idempotent: a second run over the same inputs changes nothing.
func (tr *Tracker) Recompute(goals []models.FinancialGoal, ts *models.TransactionSet) (updated, changed []models.FinancialGoal) {
	updated = make([]models.FinancialGoal, len(goals))
	copy(updated, goals)

	now := tr.now().UTC()
	for i := range updated {
		g := &updated[i]
		if g.ManuallyTracked() {
			continue
		}
		current := matchedTotal(ts, *g)
		if current.Equal(g.CurrentAmount) {
			continue
		}
		g.CurrentAmount = current
		stamp := now
		g.LastUpdated = &stamp
		changed = append(changed, *g)
	}
	return updated, changed
}

// matchedTotal sums abs(amount) over transactions that fund the goal.
func matchedTotal(ts *models.TransactionSet, g models.FinancialGoal) decimal.Decimal {
	total := decimal.Zero
	if ts == nil {
		return total
	}
	for _, t := range ts.Transactions {
		if !strings.EqualFold(t.Category, string(g.Category)) {
			continue
		}
		if t.Date.After(g.Deadline) {
			continue
		}
		total = total.Add(t.Amount.Abs())
	}
	return total
}

// Progress derives the schedule view of a single goal: percent funded,
// days remaining (rounded up), the monthly contribution needed to land
// on time, and whether the deadline has passed.
func (tr *Tracker) Progress(g models.FinancialGoal) models.GoalProgress {
	now := tr.now()

	p := models.GoalProgress{
		Goal:            g,
		MonthlyRequired: decimal.Zero,
	}

	if g.TargetAmount.IsPositive() {
		percent, _ := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Float64()
		p.ProgressPercent = percent
	}

	p.DaysUntilDeadline = int(math.Ceil(g.Deadline.Sub(now).Hours() / 24))
	p.Overdue = g.Deadline.Before(now)

	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if !p.Overdue && p.DaysUntilDeadline > 0 && remaining.IsPositive() {
		days := decimal.NewFromInt(int64(p.DaysUntilDeadline))
		p.MonthlyRequired = remaining.Mul(thirty).Div(days)
	}

	return p
}

// ProgressAll maps Progress over a goal slice, preserving order.
func (tr *Tracker) ProgressAll(goals []models.FinancialGoal) []models.GoalProgress {
	out := make([]models.GoalProgress, len(goals))
	for i, g := range goals {
		out[i] = tr.Progress(g)
	}
	return out
}
