package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgeteer/internal/models"
)

// openTestStores builds one store per backend so every contract test
// runs against both.
func openTestStores(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := Open("file", t.TempDir(), "")
	if err != nil {
		t.Fatalf("opening file store: %v", err)
	}
	sqliteStore, err := Open("sqlite", "", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening sqlite store: %v", err)
	}

	stores := map[string]Store{"file": fileStore, "sqlite": sqliteStore}
	for _, s := range stores {
		s := s
		t.Cleanup(func() { s.Close() })
	}
	return stores
}

func storeTx(id string, day int, amount int64, category string) models.Transaction {
	return models.Transaction{
		ID:          id,
		Date:        time.Date(2025, 3, day, 10, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromInt(amount),
		Description: "desc " + id,
		Category:    category,
		Type:        models.Expense,
	}
}

// TestStoreSeedsDefaults verifies first access creates the default
// categories and preferences exactly once.
func TestStoreSeedsDefaults(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			categories, err := store.Categories("default")
			if err != nil {
				t.Fatalf("Categories: %v", err)
			}
			if len(categories) != 4 {
				t.Fatalf("seeded categories = %d, want 4", len(categories))
			}
			if categories[0].ID != models.CategoryEssentials || !categories[0].IsDefault {
				t.Errorf("first category = %+v, want essentials default", categories[0])
			}

			// Second read must not duplicate the seed.
			again, err := store.Categories("default")
			if err != nil {
				t.Fatalf("Categories again: %v", err)
			}
			if len(again) != 4 {
				t.Errorf("categories after reread = %d, want 4", len(again))
			}

			prefs, err := store.Preferences("default")
			if err != nil {
				t.Fatalf("Preferences: %v", err)
			}
			if prefs.Ratios != (models.RatioSet{Essentials: 50, Wants: 30, Savings: 20}) {
				t.Errorf("seeded ratios = %+v, want 50/30/20", prefs.Ratios)
			}
		})
	}
}

// TestStoreTransactionCRUD verifies the full transaction lifecycle.
func TestStoreTransactionCRUD(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			t1 := storeTx("t1", 1, -100, "Essentials")
			t2 := storeTx("t2", 2, -200, "Wants")

			if err := store.AddTransaction("default", t1); err != nil {
				t.Fatalf("AddTransaction: %v", err)
			}
			if err := store.AddTransaction("default", t2); err != nil {
				t.Fatalf("AddTransaction: %v", err)
			}

			list, err := store.Transactions("default")
			if err != nil {
				t.Fatalf("Transactions: %v", err)
			}
			if len(list) != 2 {
				t.Fatalf("transactions = %d, want 2", len(list))
			}
			if list[0].ID != "t1" || !list[0].Amount.Equal(decimal.NewFromInt(-100)) {
				t.Errorf("first transaction = %+v, want t1/-100", list[0])
			}
			if !list[0].Date.Equal(t1.Date) {
				t.Errorf("date roundtrip = %v, want %v", list[0].Date, t1.Date)
			}

			t1.Description = "edited"
			t1.Amount = decimal.NewFromInt(-150)
			if err := store.UpdateTransaction("default", t1); err != nil {
				t.Fatalf("UpdateTransaction: %v", err)
			}
			list, _ = store.Transactions("default")
			if list[0].Description != "edited" || !list[0].Amount.Equal(decimal.NewFromInt(-150)) {
				t.Errorf("after update = %+v, want edited/-150", list[0])
			}

			if err := store.DeleteTransaction("default", "t2"); err != nil {
				t.Fatalf("DeleteTransaction: %v", err)
			}
			list, _ = store.Transactions("default")
			if len(list) != 1 {
				t.Errorf("transactions after delete = %d, want 1", len(list))
			}

			if err := store.UpdateTransaction("default", t2); !errors.Is(err, ErrNotFound) {
				t.Errorf("UpdateTransaction(missing) = %v, want ErrNotFound", err)
			}
			if err := store.DeleteTransaction("default", "t2"); !errors.Is(err, ErrNotFound) {
				t.Errorf("DeleteTransaction(missing) = %v, want ErrNotFound", err)
			}
		})
	}
}

// TestStoreGoalProgressBatch verifies the single-write recompute batch.
func TestStoreGoalProgressBatch(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			deadline := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
			g1 := models.FinancialGoal{
				ID: "g1", Name: "Debt", TargetAmount: decimal.NewFromInt(1000),
				CurrentAmount: decimal.Zero, Deadline: deadline,
				Category: models.GoalDebt, CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			}
			g2 := models.FinancialGoal{
				ID: "g2", Name: "House", TargetAmount: decimal.NewFromInt(5000),
				CurrentAmount: decimal.NewFromInt(700), Deadline: deadline,
				Category: models.GoalSavings, CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			}
			if err := store.AddGoal("default", g1); err != nil {
				t.Fatalf("AddGoal: %v", err)
			}
			if err := store.AddGoal("default", g2); err != nil {
				t.Fatalf("AddGoal: %v", err)
			}

			stamp := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
			g1.CurrentAmount = decimal.NewFromInt(400)
			g1.LastUpdated = &stamp
			ghost := g1
			ghost.ID = "deleted-elsewhere"

			if err := store.UpdateGoalsProgress("default", []models.FinancialGoal{g1, ghost}); err != nil {
				t.Fatalf("UpdateGoalsProgress: %v", err)
			}

			goals, err := store.Goals("default")
			if err != nil {
				t.Fatalf("Goals: %v", err)
			}
			if len(goals) != 2 {
				t.Fatalf("goals = %d, want 2 (ghost skipped)", len(goals))
			}
			if !goals[0].CurrentAmount.Equal(decimal.NewFromInt(400)) {
				t.Errorf("g1 CurrentAmount = %s, want 400", goals[0].CurrentAmount)
			}
			if goals[0].LastUpdated == nil || !goals[0].LastUpdated.Equal(stamp) {
				t.Errorf("g1 LastUpdated = %v, want %v", goals[0].LastUpdated, stamp)
			}
			// The untouched goal keeps its state.
			if !goals[1].CurrentAmount.Equal(decimal.NewFromInt(700)) || goals[1].LastUpdated != nil {
				t.Errorf("g2 = %+v, want untouched", goals[1])
			}
		})
	}
}

// TestStoreReplaceCollections verifies the restore path's wholesale swap.
func TestStoreReplaceCollections(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.AddTransaction("default", storeTx("old", 1, -10, "Wants")); err != nil {
				t.Fatalf("AddTransaction: %v", err)
			}

			fresh := []models.Transaction{
				storeTx("n1", 3, -30, "Essentials"),
				storeTx("n2", 4, -40, "Wants"),
			}
			if err := store.ReplaceTransactions("default", fresh); err != nil {
				t.Fatalf("ReplaceTransactions: %v", err)
			}

			list, err := store.Transactions("default")
			if err != nil {
				t.Fatalf("Transactions: %v", err)
			}
			if len(list) != 2 || list[0].ID != "n1" || list[1].ID != "n2" {
				t.Errorf("after replace = %+v, want n1,n2", list)
			}

			// Categories replace drops the seeded defaults too.
			if _, err := store.Categories("default"); err != nil {
				t.Fatalf("Categories: %v", err)
			}
			custom := []models.Category{{ID: "only", Name: "Only", Position: 0}}
			if err := store.ReplaceCategories("default", custom); err != nil {
				t.Fatalf("ReplaceCategories: %v", err)
			}
			categories, _ := store.Categories("default")
			if len(categories) != 1 || categories[0].ID != "only" {
				t.Errorf("categories after replace = %+v, want just 'only'", categories)
			}
		})
	}
}

// TestStorePreferencesRoundtrip verifies preference persistence,
// including the nullable percentage on categories.
func TestStorePreferencesRoundtrip(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			prefs, err := store.Preferences("default")
			if err != nil {
				t.Fatalf("Preferences: %v", err)
			}
			prefs.Ratios = models.RatioSet{Essentials: 60, Wants: 25, Savings: 15}
			prefs.Display.Theme = "dark"
			if err := store.SavePreferences("default", prefs); err != nil {
				t.Fatalf("SavePreferences: %v", err)
			}

			got, err := store.Preferences("default")
			if err != nil {
				t.Fatalf("Preferences reload: %v", err)
			}
			if got.Ratios.Essentials != 60 || got.Display.Theme != "dark" {
				t.Errorf("reloaded prefs = %+v, want 60/dark", got)
			}

			// Category percentage survives as nil or value.
			pctVal := 12.5
			withPct := models.Category{ID: "c1", Name: "Custom", Percentage: &pctVal, Position: 9}
			if err := store.AddCategory("default", withPct); err != nil {
				t.Fatalf("AddCategory: %v", err)
			}
			categories, _ := store.Categories("default")
			found := models.FindByID(categories, "c1")
			if found == nil || found.Percentage == nil || *found.Percentage != 12.5 {
				t.Errorf("category percentage roundtrip = %+v, want 12.5", found)
			}
			essentials := models.FindByID(categories, models.CategoryEssentials)
			if essentials == nil || essentials.Percentage != nil {
				t.Errorf("essentials percentage = %+v, want nil", essentials)
			}
		})
	}
}

// TestStoreUserIsolation verifies data never leaks across user IDs.
func TestStoreUserIsolation(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.AddTransaction("alice", storeTx("a1", 1, -10, "Wants")); err != nil {
				t.Fatalf("AddTransaction: %v", err)
			}

			bobList, err := store.Transactions("bob")
			if err != nil {
				t.Fatalf("Transactions(bob): %v", err)
			}
			if len(bobList) != 0 {
				t.Errorf("bob sees %d of alice's transactions", len(bobList))
			}

			// Both users get their own seeded categories.
			aliceCats, _ := store.Categories("alice")
			bobCats, _ := store.Categories("bob")
			if len(aliceCats) != 4 || len(bobCats) != 4 {
				t.Errorf("seeded categories alice=%d bob=%d, want 4 each", len(aliceCats), len(bobCats))
			}
		})
	}
}

// TestOpenUnknownBackend verifies backend validation.
func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("bogus", t.TempDir(), ""); err == nil {
		t.Error("Open(bogus) succeeded, want error")
	}
}
