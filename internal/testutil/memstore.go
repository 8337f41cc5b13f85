package testutil

import (
	"fmt"
	"sync"

	"budgeteer/internal/models"
	"budgeteer/internal/services/storage"
)

// MemStore is an in-memory storage.Store for service and handler tests.
// It seeds the same defaults as the real backends and records every
// goals progress batch so tests can assert on recompute write behavior.
type MemStore struct {
	mu           sync.Mutex
	transactions map[string][]models.Transaction
	categories   map[string][]models.Category
	goals        map[string][]models.FinancialGoal
	preferences  map[string]models.BudgetPreferences

	// ProgressBatches holds one entry per UpdateGoalsProgress call.
	ProgressBatches [][]models.FinancialGoal
}

var _ storage.Store = (*MemStore)(nil)

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		transactions: make(map[string][]models.Transaction),
		categories:   make(map[string][]models.Category),
		goals:        make(map[string][]models.FinancialGoal),
		preferences:  make(map[string]models.BudgetPreferences),
	}
}

// Transactions returns the user's transactions.
func (m *MemStore) Transactions(userID string) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Transaction(nil), m.transactions[userID]...), nil
}

// AddTransaction inserts or replaces by ID.
func (m *MemStore) AddTransaction(userID string, t models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.transactions[userID] {
		if m.transactions[userID][i].ID == t.ID {
			m.transactions[userID][i] = t
			return nil
		}
	}
	m.transactions[userID] = append(m.transactions[userID], t)
	return nil
}

// UpdateTransaction replaces an existing transaction.
func (m *MemStore) UpdateTransaction(userID string, t models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.transactions[userID] {
		if m.transactions[userID][i].ID == t.ID {
			m.transactions[userID][i] = t
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", t.ID, storage.ErrNotFound)
}

// DeleteTransaction removes a transaction by ID.
func (m *MemStore) DeleteTransaction(userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.transactions[userID]
	for i := range list {
		if list[i].ID == id {
			m.transactions[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
}

// ReplaceTransactions swaps the whole collection.
func (m *MemStore) ReplaceTransactions(userID string, transactions []models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[userID] = append([]models.Transaction(nil), transactions...)
	return nil
}

// Categories returns the user's categories, seeding defaults on first access.
func (m *MemStore) Categories(userID string) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[userID]; !ok {
		m.categories[userID] = models.DefaultCategories()
	}
	return append([]models.Category(nil), m.categories[userID]...), nil
}

// AddCategory inserts or replaces by ID.
func (m *MemStore) AddCategory(userID string, c models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[userID]; !ok {
		m.categories[userID] = models.DefaultCategories()
	}
	for i := range m.categories[userID] {
		if m.categories[userID][i].ID == c.ID {
			m.categories[userID][i] = c
			return nil
		}
	}
	m.categories[userID] = append(m.categories[userID], c)
	return nil
}

// UpdateCategory replaces an existing category.
func (m *MemStore) UpdateCategory(userID string, c models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.categories[userID] {
		if m.categories[userID][i].ID == c.ID {
			m.categories[userID][i] = c
			return nil
		}
	}
	return fmt.Errorf("category %s: %w", c.ID, storage.ErrNotFound)
}

// DeleteCategory removes a category by ID.
func (m *MemStore) DeleteCategory(userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.categories[userID]
	for i := range list {
		if list[i].ID == id {
			m.categories[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("category %s: %w", id, storage.ErrNotFound)
}

// ReplaceCategories swaps the whole collection.
func (m *MemStore) ReplaceCategories(userID string, categories []models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[userID] = append([]models.Category(nil), categories...)
	return nil
}

// Goals returns the user's goals.
func (m *MemStore) Goals(userID string) ([]models.FinancialGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.FinancialGoal(nil), m.goals[userID]...), nil
}

// AddGoal inserts or replaces by ID.
func (m *MemStore) AddGoal(userID string, g models.FinancialGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.goals[userID] {
		if m.goals[userID][i].ID == g.ID {
			m.goals[userID][i] = g
			return nil
		}
	}
	m.goals[userID] = append(m.goals[userID], g)
	return nil
}

// UpdateGoal replaces an existing goal.
func (m *MemStore) UpdateGoal(userID string, g models.FinancialGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.goals[userID] {
		if m.goals[userID][i].ID == g.ID {
			m.goals[userID][i] = g
			return nil
		}
	}
	return fmt.Errorf("goal %s: %w", g.ID, storage.ErrNotFound)
}

// DeleteGoal removes a goal by ID.
func (m *MemStore) DeleteGoal(userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.goals[userID]
	for i := range list {
		if list[i].ID == id {
			m.goals[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("goal %s: %w", id, storage.ErrNotFound)
}

// UpdateGoalsProgress applies a recompute batch, skipping goals deleted
// since the batch was computed, and records the batch.
func (m *MemStore) UpdateGoalsProgress(userID string, goals []models.FinancialGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProgressBatches = append(m.ProgressBatches, append([]models.FinancialGoal(nil), goals...))
	for _, g := range goals {
		for i := range m.goals[userID] {
			if m.goals[userID][i].ID == g.ID {
				m.goals[userID][i].CurrentAmount = g.CurrentAmount
				m.goals[userID][i].LastUpdated = g.LastUpdated
			}
		}
	}
	return nil
}

// ReplaceGoals swaps the whole collection.
func (m *MemStore) ReplaceGoals(userID string, goals []models.FinancialGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[userID] = append([]models.FinancialGoal(nil), goals...)
	return nil
}

// Preferences returns the user's preferences, seeding defaults on first access.
func (m *MemStore) Preferences(userID string) (models.BudgetPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.preferences[userID]; !ok {
		m.preferences[userID] = models.DefaultPreferences()
	}
	return m.preferences[userID], nil
}

// SavePreferences stores the user's preferences.
func (m *MemStore) SavePreferences(userID string, p models.BudgetPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preferences[userID] = p
	return nil
}

// Close is a no-op.
func (m *MemStore) Close() error { return nil }
