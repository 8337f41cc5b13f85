// Package storage persists budget data behind a backend-neutral Store.
// Two backends exist: an age-encrypted JSON document store and an
// embedded SQLite database. Both seed a new user with the default
// categories and preferences on first access.
package storage

import (
	"errors"
	"fmt"

	"budgeteer/internal/models"
)

var (
	// ErrNotFound reports an update or delete against a missing record.
	ErrNotFound = errors.New("not found")

	// ErrLocked reports access to an encrypted store before Unlock.
	ErrLocked = errors.New("store is locked")
)

// Store is the persistence boundary. All data is scoped by user ID.
// Add methods insert or replace by ID; Update and Delete return
// ErrNotFound for missing records. Replace methods swap a whole
// collection and back the restore path. UpdateGoalsProgress persists a
// recompute batch in one write.
type Store interface {
	Transactions(userID string) ([]models.Transaction, error)
	AddTransaction(userID string, t models.Transaction) error
	UpdateTransaction(userID string, t models.Transaction) error
	DeleteTransaction(userID, id string) error
	ReplaceTransactions(userID string, transactions []models.Transaction) error

	Categories(userID string) ([]models.Category, error)
	AddCategory(userID string, c models.Category) error
	UpdateCategory(userID string, c models.Category) error
	DeleteCategory(userID, id string) error
	ReplaceCategories(userID string, categories []models.Category) error

	Goals(userID string) ([]models.FinancialGoal, error)
	AddGoal(userID string, g models.FinancialGoal) error
	UpdateGoal(userID string, g models.FinancialGoal) error
	DeleteGoal(userID, id string) error
	UpdateGoalsProgress(userID string, goals []models.FinancialGoal) error
	ReplaceGoals(userID string, goals []models.FinancialGoal) error

	Preferences(userID string) (models.BudgetPreferences, error)
	SavePreferences(userID string, p models.BudgetPreferences) error

	Close() error
}

// Open constructs the configured backend. The file backend lives under
// dataDir; the sqlite backend uses dbPath.
func Open(backend, dataDir, dbPath string) (Store, error) {
	switch backend {
	case "", "file":
		return NewFileStore(dataDir)
	case "sqlite":
		return OpenSQLite(dbPath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
