// Package insights derives short, classified observations from the
// current transactions, goals, and income. Every rule is a pure function
// of its inputs plus the injected clock; missing inputs skip a rule
// rather than failing, so synthesis is total.
package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgeteer/internal/models"
	"budgeteer/internal/services/goals"
)

// Tunable rule thresholds.
const (
	// SavingsRateTargetPct is the year-to-date savings rate treated as
	// excellent; SavingsRateWarnPct is the floor below which we warn.
	SavingsRateTargetPct = 20
	SavingsRateWarnPct   = 10

	// EmergencyFundMonths sizes the suggested emergency fund as a
	// multiple of average monthly spending.
	EmergencyFundMonths = 6

	// RetirementSharePct is the share of income suggested for
	// retirement saving.
	RetirementSharePct = 15

	// MajorPurchaseRatePct is the window savings rate above which a
	// major-purchase goal is suggested, provided the user runs fewer
	// than MaxGoalsBeforeSuggesting goals already.
	MajorPurchaseRatePct     = 10
	MaxGoalsBeforeSuggesting = 3

	// TopCategorySharePct flags a single category consuming more than
	// this share of income.
	TopCategorySharePct = 30

	// LargeExpenseFactor flags expenses above this multiple of the mean
	// expense; at most maxOutliers are reported.
	LargeExpenseFactor = 2
	maxOutliers        = 3

	// MonthSwingThresholdPct is the month-over-month spending change
	// worth mentioning.
	MonthSwingThresholdPct = 10

	// DeadlineSoonDays is the approaching-deadline window; AlmostDonePct
	// decides whether an approaching deadline reads as a win or a worry.
	DeadlineSoonDays = 30
	AlmostDonePct    = 90
)

// DebtKeywords mark spending as debt service (lowercase substrings).
var DebtKeywords = []string{"debt", "loan", "credit card", "repayment", "payoff"}

// Synthesizer runs the rule set against a snapshot of budget state.
type Synthesizer struct {
	now     func() time.Time
	tracker *goals.Tracker
}

// NewSynthesizer returns a synthesizer on the wall clock.
func NewSynthesizer() *Synthesizer {
	return NewSynthesizerWithClock(time.Now)
}

// NewSynthesizerWithClock returns a synthesizer with a fixed or fake
// clock; goal schedule math uses the same clock.
func NewSynthesizerWithClock(now func() time.Time) *Synthesizer {
	return &Synthesizer{now: now, tracker: goals.NewTrackerWithClock(now)}
}

// Synthesize runs every rule family in a fixed order and returns the
// flat insight list. totalIncome is the window's income as computed by
// the planner; selectedMonths is the caller's month selection and feeds
// only the month-over-month comparison.
func (s *Synthesizer) Synthesize(ts *models.TransactionSet, goalList []models.FinancialGoal, totalIncome decimal.Decimal, selectedMonths []string) []models.Insight {
	if ts == nil {
		ts = &models.TransactionSet{}
	}

	var out []models.Insight
	out = append(out, s.goalLifecycle(goalList)...)
	out = append(out, s.goalSuggestions(ts, goalList, totalIncome)...)
	out = append(out, s.savingsRate(ts, goalList, totalIncome)...)
	out = append(out, s.spendingPatterns(ts, totalIncome)...)
	out = append(out, s.monthOverMonth(ts, selectedMonths)...)
	return out
}

// goalLifecycle reports deadline state, pacing, and milestones per goal.
// An overdue goal yields exactly the deadline-passed warning and nothing
// else for that goal.
func (s *Synthesizer) goalLifecycle(goalList []models.FinancialGoal) []models.Insight {
	var out []models.Insight
	for _, g := range goalList {
		p := s.tracker.Progress(g)

		if p.Overdue {
			out = append(out, models.Insight{
				Type:    models.InsightWarning,
				Message: fmt.Sprintf("Goal %q is past its %s deadline", g.Name, g.Deadline.Format("Jan 2, 2006")),
				Action:  "Extend the deadline or archive the goal",
			})
			continue
		}

		if p.DaysUntilDeadline <= DeadlineSoonDays {
			if p.ProgressPercent >= AlmostDonePct {
				out = append(out, models.Insight{
					Type:    models.InsightSuccess,
					Message: fmt.Sprintf("Goal %q is almost there: %.0f%% funded with %d days left", g.Name, p.ProgressPercent, p.DaysUntilDeadline),
				})
			} else {
				out = append(out, models.Insight{
					Type:    models.InsightWarning,
					Message: fmt.Sprintf("Goal %q deadline is %d days away but only %.0f%% funded", g.Name, p.DaysUntilDeadline, p.ProgressPercent),
					Action:  "Boost contributions or push the deadline out",
				})
			}
		}

		if !g.ManuallyTracked() && p.MonthlyRequired.IsPositive() {
			out = append(out, models.Insight{
				Type:    models.InsightInfo,
				Message: fmt.Sprintf("Set aside $%s per month to reach %q by %s", p.MonthlyRequired.StringFixed(2), g.Name, g.Deadline.Format("Jan 2, 2006")),
			})
		}

		out = append(out, s.milestone(g, p))
	}
	return out
}

// milestone buckets progress into encouragement bands. The automatic
// transfer nudge is withheld from savings goals, whose progress is
// manually maintained.
func (s *Synthesizer) milestone(g models.FinancialGoal, p models.GoalProgress) models.Insight {
	transferNudge := ""
	if !g.ManuallyTracked() {
		transferNudge = "Set up an automatic transfer to stay on pace"
	}

	switch {
	case p.ProgressPercent >= 100:
		return models.Insight{
			Type:    models.InsightSuccess,
			Message: fmt.Sprintf("Goal %q is fully funded", g.Name),
		}
	case p.ProgressPercent >= 75:
		return models.Insight{
			Type:    models.InsightSuccess,
			Message: fmt.Sprintf("Goal %q is %.0f%% funded: the finish line is close", g.Name, p.ProgressPercent),
			Action:  transferNudge,
		}
	case p.ProgressPercent >= 50:
		return models.Insight{
			Type:    models.InsightInfo,
			Message: fmt.Sprintf("Goal %q is past the halfway mark at %.0f%%", g.Name, p.ProgressPercent),
			Action:  transferNudge,
		}
	case p.ProgressPercent >= 25:
		return models.Insight{
			Type:    models.InsightInfo,
			Message: fmt.Sprintf("Goal %q is building momentum at %.0f%%", g.Name, p.ProgressPercent),
			Action:  transferNudge,
		}
	default:
		return models.Insight{
			Type:    models.InsightInfo,
			Message: fmt.Sprintf("Goal %q is just getting started at %.0f%%", g.Name, p.ProgressPercent),
			Action:  transferNudge,
		}
	}
}

// goalSuggestions proposes goals the user does not have yet.
func (s *Synthesizer) goalSuggestions(ts *models.TransactionSet, goalList []models.FinancialGoal, totalIncome decimal.Decimal) []models.Insight {
	var out []models.Insight

	if !goalNameContains(goalList, "emergency") {
		if monthly := meanMonthlySpend(ts); monthly.IsPositive() {
			target := monthly.Mul(decimal.NewFromInt(EmergencyFundMonths))
			out = append(out, models.Insight{
				Type:    models.InsightInfo,
				Message: fmt.Sprintf("Build an emergency fund of $%s to cover %d months of spending", target.StringFixed(2), EmergencyFundMonths),
				Action:  "Create an \"Emergency Fund\" savings goal",
			})
		}
	}

	if !goalNameContains(goalList, "retirement") && totalIncome.IsPositive() {
		share := totalIncome.Mul(decimal.NewFromInt(RetirementSharePct)).Div(decimal.NewFromInt(100))
		out = append(out, models.Insight{
			Type:    models.InsightInfo,
			Message: fmt.Sprintf("Consider putting %d%% of your income ($%s) toward retirement", RetirementSharePct, share.StringFixed(2)),
			Action:  "Create a Retirement investment goal",
		})
	}

	if hasDebtSpending(ts) && !hasGoalCategory(goalList, models.GoalDebt) {
		out = append(out, models.Insight{
			Type:    models.InsightInfo,
			Message: "Debt payments detected in your spending",
			Action:  "Create a Debt payoff goal to track progress",
		})
	}

	if rate, ok := windowSavingsRate(ts); ok && rate > MajorPurchaseRatePct && len(goalList) < MaxGoalsBeforeSuggesting {
		out = append(out, models.Insight{
			Type:    models.InsightInfo,
			Message: fmt.Sprintf("Your %.0f%% savings rate could fund a major purchase goal", rate),
			Action:  "Create a goal for a car, home, or other big purchase",
		})
	}

	return out
}

// savingsRate compares savings-goal balances against year-to-date
// income. Needs at least one savings goal and a positive income base;
// when no income falls in the current year, income is prorated from the
// window total by months elapsed.
func (s *Synthesizer) savingsRate(ts *models.TransactionSet, goalList []models.FinancialGoal, totalIncome decimal.Decimal) []models.Insight {
	saved := decimal.Zero
	haveSavingsGoal := false
	for _, g := range goalList {
		if g.Category == models.GoalSavings {
			haveSavingsGoal = true
			saved = saved.Add(g.CurrentAmount)
		}
	}
	if !haveSavingsGoal {
		return nil
	}

	now := s.now()
	ytdIncome := decimal.Zero
	for _, t := range ts.Transactions {
		if t.Type == models.Income && t.Date.Year() == now.Year() {
			ytdIncome = ytdIncome.Add(t.Amount)
		}
	}
	if !ytdIncome.IsPositive() {
		monthsElapsed := int64(now.Month())
		ytdIncome = totalIncome.Mul(decimal.NewFromInt(monthsElapsed)).Div(decimal.NewFromInt(12))
	}
	if !ytdIncome.IsPositive() {
		return nil
	}

	rate, _ := saved.Div(ytdIncome).Mul(decimal.NewFromInt(100)).Float64()

	switch {
	case rate < SavingsRateWarnPct:
		return []models.Insight{{
			Type:    models.InsightWarning,
			Message: fmt.Sprintf("Your savings rate is %.1f%% of income this year: aim for %d%%", rate, SavingsRateTargetPct),
			Action:  "Increase automatic savings contributions",
		}}
	case rate < SavingsRateTargetPct:
		return []models.Insight{{
			Type:    models.InsightInfo,
			Message: fmt.Sprintf("You are saving %.1f%% of income this year: solid, and %d%% is within reach", rate, SavingsRateTargetPct),
		}}
	default:
		return []models.Insight{{
			Type:    models.InsightSuccess,
			Message: fmt.Sprintf("Great work: you are saving %.1f%% of income this year", rate),
		}}
	}
}

// spendingPatterns flags a dominant category and unusually large
// individual expenses.
func (s *Synthesizer) spendingPatterns(ts *models.TransactionSet, totalIncome decimal.Decimal) []models.Insight {
	var out []models.Insight
	expenses := ts.FilterByType(models.Expense)
	if expenses.Len() == 0 {
		return nil
	}

	if totalIncome.IsPositive() {
		if name, total, ok := topCategory(expenses); ok {
			share, _ := total.Div(totalIncome).Mul(decimal.NewFromInt(100)).Float64()
			if share > TopCategorySharePct {
				out = append(out, models.Insight{
					Type:    models.InsightWarning,
					Message: fmt.Sprintf("%s accounts for %.0f%% of your income", name, share),
					Action:  fmt.Sprintf("Review %s spending for easy cuts", name),
				})
			}
		}
	}

	mean := expenses.MeanAbsAmount()
	if mean.IsPositive() {
		threshold := mean.Mul(decimal.NewFromInt(LargeExpenseFactor))
		var large []models.Transaction
		for _, t := range expenses.Transactions {
			if t.AbsAmount().GreaterThan(threshold) {
				large = append(large, t)
			}
		}
		sort.SliceStable(large, func(i, j int) bool {
			return large[i].AbsAmount().GreaterThan(large[j].AbsAmount())
		})
		if len(large) > maxOutliers {
			large = large[:maxOutliers]
		}
		for _, t := range large {
			out = append(out, models.Insight{
				Type:    models.InsightInfo,
				Message: fmt.Sprintf("Unusually large expense: $%s for %q on %s", t.AbsAmount().StringFixed(2), t.Description, t.Date.Format("Jan 2")),
			})
		}
	}

	return out
}

// monthOverMonth compares expense totals between the two most recent
// selected months. Fewer than two selections, or a zero base month,
// produces nothing.
func (s *Synthesizer) monthOverMonth(ts *models.TransactionSet, selectedMonths []string) []models.Insight {
	if len(selectedMonths) < 2 {
		return nil
	}
	months := make([]string, len(selectedMonths))
	copy(months, selectedMonths)
	sort.Strings(months)
	prev, cur := months[len(months)-2], months[len(months)-1]

	prevSpend := ts.FilterByMonths([]string{prev}).FilterByType(models.Expense).SumAbsAmount()
	if !prevSpend.IsPositive() {
		return nil
	}
	curSpend := ts.FilterByMonths([]string{cur}).FilterByType(models.Expense).SumAbsAmount()

	change, _ := curSpend.Sub(prevSpend).Div(prevSpend).Mul(decimal.NewFromInt(100)).Float64()

	switch {
	case change >= MonthSwingThresholdPct:
		return []models.Insight{{
			Type:    models.InsightWarning,
			Message: fmt.Sprintf("Spending rose %.0f%% from %s to %s", change, monthLabel(prev), monthLabel(cur)),
			Action:  "Check the plan view for the categories driving the increase",
		}}
	case change <= -MonthSwingThresholdPct:
		return []models.Insight{{
			Type:    models.InsightSuccess,
			Message: fmt.Sprintf("Spending fell %.0f%% from %s to %s", -change, monthLabel(prev), monthLabel(cur)),
		}}
	}
	return nil
}

// meanMonthlySpend averages expense totals over the months present.
func meanMonthlySpend(ts *models.TransactionSet) decimal.Decimal {
	expenses := ts.FilterByType(models.Expense)
	byMonth := expenses.GroupByMonth()
	if len(byMonth) == 0 {
		return decimal.Zero
	}
	return expenses.SumAbsAmount().Div(decimal.NewFromInt(int64(len(byMonth))))
}

// windowSavingsRate is (income - expenses) / income over the window.
func windowSavingsRate(ts *models.TransactionSet) (float64, bool) {
	income := ts.FilterByType(models.Income).SumAmount()
	if !income.IsPositive() {
		return 0, false
	}
	expenses := ts.FilterByType(models.Expense).SumAbsAmount()
	rate, _ := income.Sub(expenses).Div(income).Mul(decimal.NewFromInt(100)).Float64()
	return rate, true
}

// topCategory returns the highest-spend category; ties break toward the
// lexicographically smaller name so results are stable.
func topCategory(expenses *models.TransactionSet) (string, decimal.Decimal, bool) {
	totals := expenses.CategoryTotals()
	if len(totals) == 0 {
		return "", decimal.Zero, false
	}
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	best := names[0]
	for _, name := range names[1:] {
		if totals[name].GreaterThan(totals[best]) {
			best = name
		}
	}
	return best, totals[best], true
}

func hasDebtSpending(ts *models.TransactionSet) bool {
	for _, t := range ts.Transactions {
		if t.Type != models.Expense {
			continue
		}
		if strings.EqualFold(t.Category, "Debt") {
			return true
		}
		desc := strings.ToLower(t.Description)
		for _, kw := range DebtKeywords {
			if strings.Contains(desc, kw) {
				return true
			}
		}
	}
	return false
}

func hasGoalCategory(goalList []models.FinancialGoal, cat models.GoalCategory) bool {
	for _, g := range goalList {
		if g.Category == cat {
			return true
		}
	}
	return false
}

func goalNameContains(goalList []models.FinancialGoal, substr string) bool {
	for _, g := range goalList {
		if strings.Contains(strings.ToLower(g.Name), substr) {
			return true
		}
	}
	return false
}

// monthLabel renders a "2006-01" key as "January 2006".
func monthLabel(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.Format("January 2006")
}
