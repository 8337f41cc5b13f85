// Package budget orchestrates the engine services over a storage.Store:
// it validates mutations before anything is persisted, classifies new
// transactions, and refreshes goal progress after every relevant state
// change. Persistence of a recompute pass is always a single batch write
// covering only the goals whose amount changed.
package budget

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"budgeteer/internal/models"
	"budgeteer/internal/services/allocation"
	"budgeteer/internal/services/classifier"
	"budgeteer/internal/services/goals"
	"budgeteer/internal/services/insights"
	"budgeteer/internal/services/planner"
	"budgeteer/internal/services/storage"
)

var (
	// ErrDefaultCategory rejects deletion of a built-in category.
	ErrDefaultCategory = errors.New("default categories cannot be deleted")

	// ErrGoalNotManual rejects a manual savings update against an
	// auto-tracked goal.
	ErrGoalNotManual = errors.New("only savings goals accept manual progress updates")

	// ErrEmptyGoalName rejects blank goal names.
	ErrEmptyGoalName = errors.New("goal name cannot be empty")

	// ErrGoalTargetNotPositive rejects zero or negative targets.
	ErrGoalTargetNotPositive = errors.New("goal target amount must be positive")

	// ErrNegativeSavings rejects a negative manual savings amount.
	ErrNegativeSavings = errors.New("savings amount cannot be negative")

	// ErrNegativeRatio rejects negative budget ratios.
	ErrNegativeRatio = errors.New("budget ratios cannot be negative")
)

// Service is the calling layer in front of the pure engine packages.
// All data access is scoped to a single configured user.
type Service struct {
	store storage.Store
	log   *logrus.Logger
	user  string
	now   func() time.Time

	tracker *goals.Tracker
	synth   *insights.Synthesizer
}

// New builds a service on the wall clock.
func New(store storage.Store, log *logrus.Logger, user string) *Service {
	return NewWithClock(store, log, user, time.Now)
}

// NewWithClock builds a service with a fixed or fake clock. The tracker
// and synthesizer share the clock so schedule math stays consistent.
func NewWithClock(store storage.Store, log *logrus.Logger, user string, now func() time.Time) *Service {
	return &Service{
		store:   store,
		log:     log,
		user:    user,
		now:     now,
		tracker: goals.NewTrackerWithClock(now),
		synth:   insights.NewSynthesizerWithClock(now),
	}
}

// Transactions returns the user's transactions with derived fields set.
func (s *Service) Transactions() ([]models.Transaction, error) {
	ts, err := s.window(nil)
	if err != nil {
		return nil, err
	}
	return ts.Transactions, nil
}

// AddTransaction persists a new transaction. The type is derived from
// the amount's sign when unset, the category is classified when empty,
// and goal progress is refreshed afterwards.
func (s *Service) AddTransaction(t models.Transaction) (models.Transaction, error) {
	categories, err := s.Categories()
	if err != nil {
		return models.Transaction{}, err
	}

	t.ID = uuid.NewString()
	if t.Type == "" {
		t.Type = classifier.TypeForAmount(t.Amount)
	}
	if t.Category == "" {
		t.Category = classifier.Classify(t.Description, t.Amount, categories)
	}
	t.Normalize()

	if err := s.store.AddTransaction(s.user, t); err != nil {
		return models.Transaction{}, fmt.Errorf("storing transaction: %w", err)
	}
	s.log.Infof("Transaction added: %s (%s, %s)", t.ID, t.Category, t.Amount.StringFixed(2))
	s.recomputeAfter("transaction added")
	return t, nil
}

// UpdateTransaction replaces an existing transaction, applying the same
// type and category derivation as AddTransaction.
func (s *Service) UpdateTransaction(t models.Transaction) (models.Transaction, error) {
	categories, err := s.Categories()
	if err != nil {
		return models.Transaction{}, err
	}

	if t.Type == "" {
		t.Type = classifier.TypeForAmount(t.Amount)
	}
	if t.Category == "" {
		t.Category = classifier.Classify(t.Description, t.Amount, categories)
	}
	t.Normalize()

	if err := s.store.UpdateTransaction(s.user, t); err != nil {
		return models.Transaction{}, err
	}
	s.recomputeAfter("transaction updated")
	return t, nil
}

// DeleteTransaction removes a transaction and refreshes goal progress.
func (s *Service) DeleteTransaction(id string) error {
	if err := s.store.DeleteTransaction(s.user, id); err != nil {
		return err
	}
	s.recomputeAfter("transaction deleted")
	return nil
}

// Categories returns the user's categories, seeded on first access.
func (s *Service) Categories() ([]models.Category, error) {
	categories, err := s.store.Categories(s.user)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	return categories, nil
}

// AddCategory validates and persists a new user category. New categories
// append at the lowest classifier priority; callers reorder via update.
func (s *Service) AddCategory(c models.Category) (models.Category, error) {
	categories, err := s.Categories()
	if err != nil {
		return models.Category{}, err
	}

	if err := allocation.CheckName(categories, "", c.Name); err != nil {
		return models.Category{}, err
	}
	if c.Percentage != nil {
		if err := allocation.CheckPercentage(categories, "", *c.Percentage); err != nil {
			return models.Category{}, err
		}
	}

	c.ID = uuid.NewString()
	c.Name = strings.TrimSpace(c.Name)
	c.IsDefault = false
	c.IsIncome = false
	c.Position = nextPosition(categories)

	if err := s.store.AddCategory(s.user, c); err != nil {
		return models.Category{}, fmt.Errorf("storing category: %w", err)
	}
	s.log.Infof("Category added: %s (%s)", c.Name, c.ID)
	return c, nil
}

// UpdateCategory validates and persists category edits. The IsDefault and
// IsIncome flags always carry over from the stored category.
func (s *Service) UpdateCategory(c models.Category) (models.Category, error) {
	categories, err := s.Categories()
	if err != nil {
		return models.Category{}, err
	}
	current := models.FindByID(categories, c.ID)
	if current == nil {
		return models.Category{}, fmt.Errorf("category %s: %w", c.ID, storage.ErrNotFound)
	}

	if err := allocation.CheckName(categories, c.ID, c.Name); err != nil {
		return models.Category{}, err
	}
	if c.Percentage != nil {
		if err := allocation.CheckPercentage(categories, c.ID, *c.Percentage); err != nil {
			return models.Category{}, err
		}
	}

	c.Name = strings.TrimSpace(c.Name)
	c.IsDefault = current.IsDefault
	c.IsIncome = current.IsIncome

	if err := s.store.UpdateCategory(s.user, c); err != nil {
		return models.Category{}, err
	}
	return c, nil
}

// DeleteCategory removes a user category. Built-ins are refused.
// Transactions keep the deleted name as a soft reference.
func (s *Service) DeleteCategory(id string) error {
	categories, err := s.Categories()
	if err != nil {
		return err
	}
	current := models.FindByID(categories, id)
	if current == nil {
		return fmt.Errorf("category %s: %w", id, storage.ErrNotFound)
	}
	if current.IsDefault {
		return fmt.Errorf("%w: %q", ErrDefaultCategory, current.Name)
	}
	if err := s.store.DeleteCategory(s.user, id); err != nil {
		return err
	}
	s.log.Infof("Category deleted: %s (%s)", current.Name, id)
	return nil
}

// GoalList returns the user's goals as stored.
func (s *Service) GoalList() ([]models.FinancialGoal, error) {
	goalList, err := s.store.Goals(s.user)
	if err != nil {
		return nil, fmt.Errorf("loading goals: %w", err)
	}
	return goalList, nil
}

// Goals returns the progress view of every goal.
func (s *Service) Goals() ([]models.GoalProgress, error) {
	goalList, err := s.GoalList()
	if err != nil {
		return nil, err
	}
	return s.tracker.ProgressAll(goalList), nil
}

// AddGoal validates and persists a new goal, then refreshes progress so
// an auto-tracked goal starts with its matched total.
func (s *Service) AddGoal(g models.FinancialGoal) (models.FinancialGoal, error) {
	g.Name = strings.TrimSpace(g.Name)
	if err := validateGoal(g); err != nil {
		return models.FinancialGoal{}, err
	}
	if g.Category == "" {
		g.Category = models.GoalCustom
	}
	g.ID = uuid.NewString()
	g.CreatedAt = s.now().UTC()
	g.LastUpdated = nil

	if err := s.store.AddGoal(s.user, g); err != nil {
		return models.FinancialGoal{}, fmt.Errorf("storing goal: %w", err)
	}
	s.log.Infof("Goal added: %s (%s, target %s)", g.Name, g.ID, g.TargetAmount.StringFixed(2))
	s.recomputeAfter("goal added")
	return s.goalByID(g.ID)
}

// UpdateGoal validates and persists goal edits. Progress state
// (CurrentAmount, LastUpdated) and CreatedAt carry over from the stored
// goal; a deadline change is followed by a recompute pass.
func (s *Service) UpdateGoal(g models.FinancialGoal) (models.FinancialGoal, error) {
	g.Name = strings.TrimSpace(g.Name)
	if err := validateGoal(g); err != nil {
		return models.FinancialGoal{}, err
	}
	current, err := s.goalByID(g.ID)
	if err != nil {
		return models.FinancialGoal{}, err
	}

	if g.Category == "" {
		g.Category = current.Category
	}
	g.CreatedAt = current.CreatedAt
	g.CurrentAmount = current.CurrentAmount
	g.LastUpdated = current.LastUpdated

	if err := s.store.UpdateGoal(s.user, g); err != nil {
		return models.FinancialGoal{}, err
	}
	s.recomputeAfter("goal updated")
	return s.goalByID(g.ID)
}

// DeleteGoal removes a goal.
func (s *Service) DeleteGoal(id string) error {
	if err := s.store.DeleteGoal(s.user, id); err != nil {
		return err
	}
	s.log.Infof("Goal deleted: %s", id)
	return nil
}

// UpdateActualSavings sets the current amount of a manually tracked
// goal. Auto-tracked goals are refused: their progress comes from
// transactions only.
func (s *Service) UpdateActualSavings(id string, amount decimal.Decimal) (models.FinancialGoal, error) {
	g, err := s.goalByID(id)
	if err != nil {
		return models.FinancialGoal{}, err
	}
	if !g.ManuallyTracked() {
		return models.FinancialGoal{}, fmt.Errorf("%w: %q is auto-tracked", ErrGoalNotManual, g.Name)
	}
	if amount.IsNegative() {
		return models.FinancialGoal{}, ErrNegativeSavings
	}

	g.CurrentAmount = amount
	stamp := s.now().UTC()
	g.LastUpdated = &stamp

	if err := s.store.UpdateGoal(s.user, g); err != nil {
		return models.FinancialGoal{}, err
	}
	s.log.Infof("Savings updated: %s now at %s", g.Name, amount.StringFixed(2))
	return g, nil
}

// Recompute runs one goal-progress pass over the full transaction set
// and persists the changed subset in a single batch write. It returns
// the number of goals whose amount changed.
func (s *Service) Recompute() (int, error) {
	goalList, err := s.GoalList()
	if err != nil {
		return 0, err
	}
	ts, err := s.window(nil)
	if err != nil {
		return 0, err
	}

	_, changed := s.tracker.Recompute(goalList, ts)
	if len(changed) == 0 {
		return 0, nil
	}
	if err := s.store.UpdateGoalsProgress(s.user, changed); err != nil {
		return 0, fmt.Errorf("persisting goal progress: %w", err)
	}
	return len(changed), nil
}

// Summary aggregates the transaction window selected by months; an
// empty selection means all transactions.
func (s *Service) Summary(months []string) (models.BudgetSummary, error) {
	ts, err := s.window(months)
	if err != nil {
		return models.BudgetSummary{}, err
	}
	categories, err := s.Categories()
	if err != nil {
		return models.BudgetSummary{}, err
	}
	return planner.Summarize(ts, categories), nil
}

// Plan computes the recommended-versus-actual plan for the window.
func (s *Service) Plan(months []string) (planner.PlanResult, error) {
	ts, err := s.window(months)
	if err != nil {
		return planner.PlanResult{}, err
	}
	categories, err := s.Categories()
	if err != nil {
		return planner.PlanResult{}, err
	}
	prefs, err := s.Preferences()
	if err != nil {
		return planner.PlanResult{}, err
	}
	return planner.ComputePlan(ts, categories, prefs), nil
}

// Insights synthesizes the insight list for the window. The month
// selection feeds the month-over-month rule.
func (s *Service) Insights(months []string) ([]models.Insight, error) {
	ts, err := s.window(months)
	if err != nil {
		return nil, err
	}
	categories, err := s.Categories()
	if err != nil {
		return nil, err
	}
	goalList, err := s.GoalList()
	if err != nil {
		return nil, err
	}

	totalIncome := planner.TotalIncome(ts, categories)
	return s.synth.Synthesize(ts, goalList, totalIncome, months), nil
}

// Preferences returns the user's preferences, seeded on first access.
func (s *Service) Preferences() (models.BudgetPreferences, error) {
	prefs, err := s.store.Preferences(s.user)
	if err != nil {
		return models.BudgetPreferences{}, fmt.Errorf("loading preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences persists preference edits. Ratios must be
// non-negative; sums other than 100 are accepted as given.
func (s *Service) SavePreferences(p models.BudgetPreferences) error {
	if p.Ratios.Essentials < 0 || p.Ratios.Wants < 0 || p.Ratios.Savings < 0 {
		return ErrNegativeRatio
	}
	if err := s.store.SavePreferences(s.user, p); err != nil {
		return fmt.Errorf("storing preferences: %w", err)
	}
	return nil
}

// Restore replaces the user's entire dataset from a backup, then runs a
// recompute pass so goal progress matches the restored transactions.
func (s *Service) Restore(transactions []models.Transaction, categories []models.Category, goalList []models.FinancialGoal, prefs *models.BudgetPreferences) error {
	if err := s.store.ReplaceTransactions(s.user, transactions); err != nil {
		return fmt.Errorf("restoring transactions: %w", err)
	}
	if err := s.store.ReplaceCategories(s.user, categories); err != nil {
		return fmt.Errorf("restoring categories: %w", err)
	}
	if err := s.store.ReplaceGoals(s.user, goalList); err != nil {
		return fmt.Errorf("restoring goals: %w", err)
	}
	if prefs != nil {
		if err := s.store.SavePreferences(s.user, *prefs); err != nil {
			return fmt.Errorf("restoring preferences: %w", err)
		}
	}
	s.log.Infof("Restore complete: %d transactions, %d categories, %d goals",
		len(transactions), len(categories), len(goalList))
	s.recomputeAfter("restore")
	return nil
}

// window loads the user's transactions as a normalized set, filtered to
// the selected months when any are given.
func (s *Service) window(months []string) (*models.TransactionSet, error) {
	transactions, err := s.store.Transactions(s.user)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	ts := models.NewTransactionSet(transactions)
	if len(months) > 0 {
		ts = ts.FilterByMonths(months)
	}
	return ts, nil
}

// goalByID fetches one goal from the store.
func (s *Service) goalByID(id string) (models.FinancialGoal, error) {
	goalList, err := s.GoalList()
	if err != nil {
		return models.FinancialGoal{}, err
	}
	for _, g := range goalList {
		if g.ID == id {
			return g, nil
		}
	}
	return models.FinancialGoal{}, fmt.Errorf("goal %s: %w", id, storage.ErrNotFound)
}

// recomputeAfter refreshes goal progress after a data mutation. Failures
// are logged rather than propagated: the mutation itself succeeded and
// the next scheduled pass converges the progress.
func (s *Service) recomputeAfter(event string) {
	changed, err := s.Recompute()
	if err != nil {
		s.log.Warnf("Goal recompute after %s failed: %v", event, err)
		return
	}
	if changed > 0 {
		s.log.Debugf("Goal progress refreshed after %s: %d changed", event, changed)
	}
}

func validateGoal(g models.FinancialGoal) error {
	if g.Name == "" {
		return ErrEmptyGoalName
	}
	if !g.TargetAmount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrGoalTargetNotPositive, g.TargetAmount)
	}
	return nil
}

// nextPosition appends after the current lowest classifier priority.
func nextPosition(categories []models.Category) int {
	next := 0
	for _, c := range categories {
		if c.Position >= next {
			next = c.Position + 1
		}
	}
	return next
}
