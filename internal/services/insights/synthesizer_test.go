package insights

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgeteer/internal/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestSynthesizer() *Synthesizer {
	return NewSynthesizerWithClock(fixedClock)
}

func incomeTx(id string, date time.Time, amount float64) models.Transaction {
	return models.Transaction{
		ID: id, Date: date, Amount: decimal.NewFromFloat(amount),
		Description: "Paycheck", Category: "Income", Type: models.Income,
	}
}

func expenseTx(id string, date time.Time, amount float64, desc, category string) models.Transaction {
	return models.Transaction{
		ID: id, Date: date, Amount: decimal.NewFromFloat(-amount),
		Description: desc, Category: category, Type: models.Expense,
	}
}

func savingsGoal(name string, current int64) models.FinancialGoal {
	return models.FinancialGoal{
		ID: "g-" + name, Name: name,
		TargetAmount:  decimal.NewFromInt(10000),
		CurrentAmount: decimal.NewFromInt(current),
		Deadline:      testNow.AddDate(1, 0, 0),
		Category:      models.GoalSavings,
	}
}

// findAll returns the insights whose message contains substr.
func findAll(insights []models.Insight, substr string) []models.Insight {
	var out []models.Insight
	for _, in := range insights {
		if strings.Contains(in.Message, substr) {
			out = append(out, in)
		}
	}
	return out
}

// TestSavingsRateBands verifies the three savings-rate bands against
// year-to-date income.
func TestSavingsRateBands(t *testing.T) {
	s := newTestSynthesizer()
	ts := models.NewTransactionSet([]models.Transaction{
		incomeTx("i1", testNow.AddDate(0, -2, 0), 2500),
		incomeTx("i2", testNow.AddDate(0, -1, 0), 2500),
	})
	totalIncome := decimal.NewFromInt(5000)

	tests := []struct {
		name     string
		saved    int64
		wantType models.InsightType
		wantText string
	}{
		{"under 10 percent warns", 400, models.InsightWarning, "savings rate is 8.0%"},
		{"between 10 and 20 informs", 600, models.InsightInfo, "saving 12.0% of income"},
		{"twenty percent succeeds", 1000, models.InsightSuccess, "saving 20.0% of income"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goals := []models.FinancialGoal{savingsGoal("House fund", tt.saved)}
			got := s.Synthesize(ts, goals, totalIncome, nil)

			matches := findAll(got, "% of income this year")
			if len(matches) != 1 {
				t.Fatalf("savings-rate insights = %d, want 1 (all: %v)", len(matches), got)
			}
			if matches[0].Type != tt.wantType {
				t.Errorf("type = %q, want %q", matches[0].Type, tt.wantType)
			}
			if !strings.Contains(matches[0].Message, tt.wantText) {
				t.Errorf("message %q does not contain %q", matches[0].Message, tt.wantText)
			}
		})
	}
}

// TestSavingsRateFallback verifies proration from the window income when
// no income lands in the current year.
func TestSavingsRateFallback(t *testing.T) {
	s := newTestSynthesizer()
	lastYear := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	ts := models.NewTransactionSet([]models.Transaction{
		incomeTx("i1", lastYear, 6000),
	})

	// June: 6000 * 6/12 = 3000 of prorated income; 600 saved = 20%.
	goals := []models.FinancialGoal{savingsGoal("House fund", 600)}
	got := s.Synthesize(ts, goals, decimal.NewFromInt(6000), nil)

	matches := findAll(got, "% of income this year")
	if len(matches) != 1 {
		t.Fatalf("savings-rate insights = %d, want 1", len(matches))
	}
	if matches[0].Type != models.InsightSuccess {
		t.Errorf("type = %q, want success at exactly 20%%", matches[0].Type)
	}
}

// TestSavingsRateNeedsSavingsGoal verifies the rule stays silent without
// a savings goal.
func TestSavingsRateNeedsSavingsGoal(t *testing.T) {
	s := newTestSynthesizer()
	ts := models.NewTransactionSet([]models.Transaction{
		incomeTx("i1", testNow.AddDate(0, -1, 0), 5000),
	})
	debt := models.FinancialGoal{
		ID: "g1", Name: "Card", TargetAmount: decimal.NewFromInt(100),
		Deadline: testNow.AddDate(0, 3, 0), Category: models.GoalDebt,
	}

	got := s.Synthesize(ts, []models.FinancialGoal{debt}, decimal.NewFromInt(5000), nil)
	if matches := findAll(got, "% of income this year"); len(matches) != 0 {
		t.Errorf("savings-rate insights without a savings goal: %v", matches)
	}
}

// TestOverdueGoalExclusive verifies an overdue goal produces the
// deadline-passed warning and nothing else about that goal.
func TestOverdueGoalExclusive(t *testing.T) {
	s := newTestSynthesizer()
	overdue := models.FinancialGoal{
		ID: "g1", Name: "Vacation",
		TargetAmount:  decimal.NewFromInt(1000),
		CurrentAmount: decimal.NewFromInt(300),
		Deadline:      testNow.AddDate(0, 0, -10),
		Category:      models.GoalCustom,
	}

	got := s.Synthesize(&models.TransactionSet{}, []models.FinancialGoal{overdue}, decimal.Zero, nil)

	mentions := findAll(got, `"Vacation"`)
	if len(mentions) != 1 {
		t.Fatalf("insights mentioning the overdue goal = %d, want exactly 1: %v", len(mentions), mentions)
	}
	if mentions[0].Type != models.InsightWarning {
		t.Errorf("type = %q, want warning", mentions[0].Type)
	}
	if !strings.Contains(mentions[0].Message, "past its") {
		t.Errorf("message %q, want deadline-passed wording", mentions[0].Message)
	}
}

// TestMilestoneBands verifies the encouragement ladder and that percent
// wording rises with progress.
func TestMilestoneBands(t *testing.T) {
	s := newTestSynthesizer()

	tests := []struct {
		current  int64
		wantType models.InsightType
		wantText string
	}{
		{100, models.InsightInfo, "just getting started"},
		{300, models.InsightInfo, "building momentum"},
		{600, models.InsightInfo, "past the halfway mark"},
		{800, models.InsightSuccess, "finish line is close"},
		{1100, models.InsightSuccess, "fully funded"},
	}

	for _, tt := range tests {
		t.Run(tt.wantText, func(t *testing.T) {
			g := models.FinancialGoal{
				ID: "g1", Name: "Car",
				TargetAmount:  decimal.NewFromInt(1000),
				CurrentAmount: decimal.NewFromInt(tt.current),
				Deadline:      testNow.AddDate(0, 6, 0),
				Category:      models.GoalCustom,
			}
			got := s.Synthesize(&models.TransactionSet{}, []models.FinancialGoal{g}, decimal.Zero, nil)

			matches := findAll(got, tt.wantText)
			if len(matches) != 1 {
				t.Fatalf("milestone %q matches = %d, want 1 (all: %v)", tt.wantText, len(matches), got)
			}
			if matches[0].Type != tt.wantType {
				t.Errorf("type = %q, want %q", matches[0].Type, tt.wantType)
			}
		})
	}
}

// TestMilestoneTransferNudge verifies the automatic-transfer action is
// withheld from manually tracked savings goals.
func TestMilestoneTransferNudge(t *testing.T) {
	s := newTestSynthesizer()

	auto := models.FinancialGoal{
		ID: "g1", Name: "Car", TargetAmount: decimal.NewFromInt(1000),
		CurrentAmount: decimal.NewFromInt(600),
		Deadline:      testNow.AddDate(0, 6, 0), Category: models.GoalCustom,
	}
	manual := savingsGoal("House fund", 6000)

	got := s.Synthesize(&models.TransactionSet{}, []models.FinancialGoal{auto, manual}, decimal.Zero, nil)

	carMilestones := findAll(got, `"Car" is past the halfway mark`)
	if len(carMilestones) != 1 || !strings.Contains(carMilestones[0].Action, "automatic transfer") {
		t.Errorf("auto goal milestone = %+v, want automatic-transfer action", carMilestones)
	}
	houseMilestones := findAll(got, `"House fund" is past the halfway mark`)
	if len(houseMilestones) != 1 || houseMilestones[0].Action != "" {
		t.Errorf("savings goal milestone = %+v, want no action", houseMilestones)
	}
}

// TestDeadlineApproaching verifies the 30-day window splits on progress.
func TestDeadlineApproaching(t *testing.T) {
	s := newTestSynthesizer()

	behind := models.FinancialGoal{
		ID: "g1", Name: "Laptop", TargetAmount: decimal.NewFromInt(1000),
		CurrentAmount: decimal.NewFromInt(200),
		Deadline:      testNow.AddDate(0, 0, 14), Category: models.GoalCustom,
	}
	nearlyDone := models.FinancialGoal{
		ID: "g2", Name: "Bike", TargetAmount: decimal.NewFromInt(1000),
		CurrentAmount: decimal.NewFromInt(950),
		Deadline:      testNow.AddDate(0, 0, 14), Category: models.GoalCustom,
	}

	got := s.Synthesize(&models.TransactionSet{}, []models.FinancialGoal{behind, nearlyDone}, decimal.Zero, nil)

	behindMatches := findAll(got, `"Laptop" deadline is`)
	if len(behindMatches) != 1 || behindMatches[0].Type != models.InsightWarning {
		t.Errorf("behind-schedule insight = %+v, want one warning", behindMatches)
	}
	doneMatches := findAll(got, `"Bike" is almost there`)
	if len(doneMatches) != 1 || doneMatches[0].Type != models.InsightSuccess {
		t.Errorf("almost-done insight = %+v, want one success", doneMatches)
	}
}

// TestGoalSuggestions verifies the emergency, retirement, debt, and
// major-purchase proposals and their suppression.
func TestGoalSuggestions(t *testing.T) {
	s := newTestSynthesizer()
	jan := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)

	ts := models.NewTransactionSet([]models.Transaction{
		incomeTx("i1", jan, 2500),
		incomeTx("i2", feb, 2500),
		expenseTx("e1", jan, 1000, "Rent", "Essentials"),
		expenseTx("e2", feb, 2000, "Credit card payment", "Essentials"),
	})
	totalIncome := decimal.NewFromInt(5000)

	t.Run("all suggestions fire on a blank slate", func(t *testing.T) {
		got := s.Synthesize(ts, nil, totalIncome, nil)

		// Monthly spend averages 1500, so the fund target is 9000.
		emergency := findAll(got, "emergency fund of $9000.00")
		if len(emergency) != 1 {
			t.Errorf("emergency suggestion = %v, want 1", emergency)
		}
		retirement := findAll(got, "15% of your income ($750.00) toward retirement")
		if len(retirement) != 1 {
			t.Errorf("retirement suggestion = %v, want 1", retirement)
		}
		debt := findAll(got, "Debt payments detected")
		if len(debt) != 1 {
			t.Errorf("debt suggestion = %v, want 1", debt)
		}
		// Savings rate (5000-3000)/5000 = 40% with no goals yet.
		major := findAll(got, "could fund a major purchase")
		if len(major) != 1 {
			t.Errorf("major purchase suggestion = %v, want 1", major)
		}
	})

	t.Run("existing goals suppress their suggestions", func(t *testing.T) {
		goals := []models.FinancialGoal{
			savingsGoal("My Emergency Fund", 100),
			{ID: "g2", Name: "Retirement nest egg", TargetAmount: decimal.NewFromInt(1), Deadline: testNow.AddDate(10, 0, 0), Category: models.GoalInvestment},
			{ID: "g3", Name: "Card payoff", TargetAmount: decimal.NewFromInt(1), Deadline: testNow.AddDate(1, 0, 0), Category: models.GoalDebt},
		}
		got := s.Synthesize(ts, goals, totalIncome, nil)

		if m := findAll(got, "emergency fund of $"); len(m) != 0 {
			t.Errorf("emergency suggested despite existing goal: %v", m)
		}
		if m := findAll(got, "toward retirement"); len(m) != 0 {
			t.Errorf("retirement suggested despite existing goal: %v", m)
		}
		if m := findAll(got, "Debt payments detected"); len(m) != 0 {
			t.Errorf("debt suggested despite existing debt goal: %v", m)
		}
		// Three goals also caps the major-purchase proposal.
		if m := findAll(got, "could fund a major purchase"); len(m) != 0 {
			t.Errorf("major purchase suggested with three goals: %v", m)
		}
	})
}

// TestSpendingPatterns verifies the dominant-category warning and the
// large-expense outliers with their cap.
func TestSpendingPatterns(t *testing.T) {
	s := newTestSynthesizer()
	day := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)

	t.Run("dominant category warns", func(t *testing.T) {
		ts := models.NewTransactionSet([]models.Transaction{
			incomeTx("i1", day, 1000),
			expenseTx("e1", day, 400, "Rent", "Essentials"),
			expenseTx("e2", day, 100, "Dinner", "Wants"),
		})
		got := s.Synthesize(ts, nil, decimal.NewFromInt(1000), nil)

		matches := findAll(got, "Essentials accounts for 40% of your income")
		if len(matches) != 1 || matches[0].Type != models.InsightWarning {
			t.Errorf("dominant-category insight = %v, want one warning", matches)
		}
	})

	t.Run("outliers capped at three", func(t *testing.T) {
		transactions := []models.Transaction{}
		for i := 0; i < 20; i++ {
			transactions = append(transactions, expenseTx(fmt.Sprintf("s%d", i), day, 10, "Coffee", "Wants"))
		}
		for i := 0; i < 5; i++ {
			transactions = append(transactions, expenseTx(fmt.Sprintf("b%d", i), day, 500+float64(i), "Laptop", "Wants"))
		}
		ts := models.NewTransactionSet(transactions)

		got := s.Synthesize(ts, nil, decimal.Zero, nil)
		matches := findAll(got, "Unusually large expense")
		if len(matches) != 3 {
			t.Errorf("outlier insights = %d, want cap of 3", len(matches))
		}
		// Largest first.
		if len(matches) == 3 && !strings.Contains(matches[0].Message, "504.00") {
			t.Errorf("first outlier = %q, want the $504.00 expense", matches[0].Message)
		}
	})
}

// TestMonthOverMonth verifies swing detection between the two most
// recent selected months.
func TestMonthOverMonth(t *testing.T) {
	s := newTestSynthesizer()
	jan := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)

	build := func(janSpend, febSpend float64) *models.TransactionSet {
		return models.NewTransactionSet([]models.Transaction{
			expenseTx("e1", jan, janSpend, "Stuff", "Wants"),
			expenseTx("e2", feb, febSpend, "Stuff", "Wants"),
		})
	}
	months := []string{"2025-01", "2025-02"}

	t.Run("rise warns", func(t *testing.T) {
		got := s.Synthesize(build(1000, 1300), nil, decimal.Zero, months)
		matches := findAll(got, "Spending rose 30% from January 2025 to February 2025")
		if len(matches) != 1 || matches[0].Type != models.InsightWarning {
			t.Errorf("rise insight = %v, want one warning", matches)
		}
	})

	t.Run("fall celebrates", func(t *testing.T) {
		got := s.Synthesize(build(1000, 800), nil, decimal.Zero, months)
		matches := findAll(got, "Spending fell 20%")
		if len(matches) != 1 || matches[0].Type != models.InsightSuccess {
			t.Errorf("fall insight = %v, want one success", matches)
		}
	})

	t.Run("small change stays quiet", func(t *testing.T) {
		got := s.Synthesize(build(1000, 1050), nil, decimal.Zero, months)
		if matches := findAll(got, "Spending"); len(matches) != 0 {
			t.Errorf("5%% change produced insights: %v", matches)
		}
	})

	t.Run("single month stays quiet", func(t *testing.T) {
		got := s.Synthesize(build(1000, 1300), nil, decimal.Zero, []string{"2025-02"})
		if matches := findAll(got, "Spending rose"); len(matches) != 0 {
			t.Errorf("single selection produced insights: %v", matches)
		}
	})
}
