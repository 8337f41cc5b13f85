package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"budgeteer/internal/models"
)

// Document file names under users/<id>/.
const (
	transactionsDoc = "transactions.json"
	categoriesDoc   = "categories.json"
	goalsDoc        = "goals.json"
	preferencesDoc  = "preferences.json"
)

// FileStore keeps each collection as a JSON document under
// users/<userID>/, read and written through the Crypt layer so the
// whole store can be passphrase-encrypted in place. Mutations are
// read-modify-write under a single mutex.
type FileStore struct {
	crypt *Crypt
	mu    sync.Mutex
}

// NewFileStore opens (or initializes) a file store rooted at baseDir.
func NewFileStore(baseDir string) (*FileStore, error) {
	crypt, err := NewCrypt(baseDir)
	if err != nil {
		return nil, err
	}
	return &FileStore{crypt: crypt}, nil
}

// Crypt exposes the encryption layer for unlock and migration commands.
func (s *FileStore) Crypt() *Crypt {
	return s.crypt
}

// Close implements Store; the file store holds no open handles.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) docPath(userID, doc string) string {
	return filepath.Join(s.crypt.BaseDir(), "users", userID, doc)
}

// readDoc unmarshals a document into v. Missing files leave v untouched
// and report found=false.
func (s *FileStore) readDoc(userID, doc string, v interface{}) (bool, error) {
	if s.crypt.IsEncrypted() && !s.crypt.IsUnlocked() {
		return false, ErrLocked
	}
	data, err := s.crypt.ReadFile(s.docPath(userID, doc))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing %s: %w", doc, err)
	}
	return true, nil
}

func (s *FileStore) writeDoc(userID, doc string, v interface{}) error {
	if s.crypt.IsEncrypted() && !s.crypt.IsUnlocked() {
		return ErrLocked
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", doc, err)
	}
	return s.crypt.WriteFile(s.docPath(userID, doc), data, 0o644)
}

// Transactions returns the user's transactions, empty for a new user.
func (s *FileStore) Transactions(userID string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadTransactions(userID)
}

func (s *FileStore) loadTransactions(userID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if _, err := s.readDoc(userID, transactionsDoc, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// AddTransaction inserts, replacing any record with the same ID.
func (s *FileStore) AddTransaction(userID string, t models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	transactions, err := s.loadTransactions(userID)
	if err != nil {
		return err
	}
	transactions = upsertTransaction(transactions, t)
	return s.writeDoc(userID, transactionsDoc, transactions)
}

// UpdateTransaction replaces an existing record.
func (s *FileStore) UpdateTransaction(userID string, t models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	transactions, err := s.loadTransactions(userID)
	if err != nil {
		return err
	}
	for i := range transactions {
		if transactions[i].ID == t.ID {
			transactions[i] = t
			return s.writeDoc(userID, transactionsDoc, transactions)
		}
	}
	return fmt.Errorf("transaction %s: %w", t.ID, ErrNotFound)
}

// DeleteTransaction removes a record by ID.
func (s *FileStore) DeleteTransaction(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	transactions, err := s.loadTransactions(userID)
	if err != nil {
		return err
	}
	for i := range transactions {
		if transactions[i].ID == id {
			transactions = append(transactions[:i], transactions[i+1:]...)
			return s.writeDoc(userID, transactionsDoc, transactions)
		}
	}
	return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
}

// ReplaceTransactions swaps the whole collection.
func (s *FileStore) ReplaceTransactions(userID string, transactions []models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDoc(userID, transactionsDoc, transactions)
}

// Categories returns the user's categories, seeding the defaults on
// first access.
func (s *FileStore) Categories(userID string) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var categories []models.Category
	found, err := s.readDoc(userID, categoriesDoc, &categories)
	if err != nil {
		return nil, err
	}
	if !found {
		categories = models.DefaultCategories()
		if err := s.writeDoc(userID, categoriesDoc, categories); err != nil {
			return nil, err
		}
	}
	return categories, nil
}

// AddCategory inserts, replacing any record with the same ID.
func (s *FileStore) AddCategory(userID string, c models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var categories []models.Category
	if _, err := s.readDoc(userID, categoriesDoc, &categories); err != nil {
		return err
	}
	replaced := false
	for i := range categories {
		if categories[i].ID == c.ID {
			categories[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		categories = append(categories, c)
	}
	return s.writeDoc(userID, categoriesDoc, categories)
}

// UpdateCategory replaces an existing record.
func (s *FileStore) UpdateCategory(userID string, c models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var categories []models.Category
	if _, err := s.readDoc(userID, categoriesDoc, &categories); err != nil {
		return err
	}
	for i := range categories {
		if categories[i].ID == c.ID {
			categories[i] = c
			return s.writeDoc(userID, categoriesDoc, categories)
		}
	}
	return fmt.Errorf("category %s: %w", c.ID, ErrNotFound)
}

// DeleteCategory removes a record by ID.
func (s *FileStore) DeleteCategory(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var categories []models.Category
	if _, err := s.readDoc(userID, categoriesDoc, &categories); err != nil {
		return err
	}
	for i := range categories {
		if categories[i].ID == id {
			categories = append(categories[:i], categories[i+1:]...)
			return s.writeDoc(userID, categoriesDoc, categories)
		}
	}
	return fmt.Errorf("category %s: %w", id, ErrNotFound)
}

// ReplaceCategories swaps the whole collection.
func (s *FileStore) ReplaceCategories(userID string, categories []models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDoc(userID, categoriesDoc, categories)
}

// Goals returns the user's goals, empty for a new user.
func (s *FileStore) Goals(userID string) ([]models.FinancialGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadGoals(userID)
}

func (s *FileStore) loadGoals(userID string) ([]models.FinancialGoal, error) {
	var goals []models.FinancialGoal
	if _, err := s.readDoc(userID, goalsDoc, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// AddGoal inserts, replacing any record with the same ID.
func (s *FileStore) AddGoal(userID string, g models.FinancialGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.loadGoals(userID)
	if err != nil {
		return err
	}
	replaced := false
	for i := range goals {
		if goals[i].ID == g.ID {
			goals[i] = g
			replaced = true
			break
		}
	}
	if !replaced {
		goals = append(goals, g)
	}
	return s.writeDoc(userID, goalsDoc, goals)
}

// UpdateGoal replaces an existing record.
func (s *FileStore) UpdateGoal(userID string, g models.FinancialGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.loadGoals(userID)
	if err != nil {
		return err
	}
	for i := range goals {
		if goals[i].ID == g.ID {
			goals[i] = g
			return s.writeDoc(userID, goalsDoc, goals)
		}
	}
	return fmt.Errorf("goal %s: %w", g.ID, ErrNotFound)
}

// DeleteGoal removes a record by ID.
func (s *FileStore) DeleteGoal(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.loadGoals(userID)
	if err != nil {
		return err
	}
	for i := range goals {
		if goals[i].ID == id {
			goals = append(goals[:i], goals[i+1:]...)
			return s.writeDoc(userID, goalsDoc, goals)
		}
	}
	return fmt.Errorf("goal %s: %w", id, ErrNotFound)
}

// UpdateGoalsProgress applies a recompute batch in a single write.
// Goals deleted since the batch was computed are skipped.
func (s *FileStore) UpdateGoalsProgress(userID string, updated []models.FinancialGoal) error {
	if len(updated) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.loadGoals(userID)
	if err != nil {
		return err
	}
	byID := make(map[string]models.FinancialGoal, len(updated))
	for _, g := range updated {
		byID[g.ID] = g
	}
	for i := range goals {
		if g, ok := byID[goals[i].ID]; ok {
			goals[i] = g
		}
	}
	return s.writeDoc(userID, goalsDoc, goals)
}

// ReplaceGoals swaps the whole collection.
func (s *FileStore) ReplaceGoals(userID string, goals []models.FinancialGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDoc(userID, goalsDoc, goals)
}

// Preferences returns the user's preferences, seeding the defaults on
// first access.
func (s *FileStore) Preferences(userID string) (models.BudgetPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prefs models.BudgetPreferences
	found, err := s.readDoc(userID, preferencesDoc, &prefs)
	if err != nil {
		return models.BudgetPreferences{}, err
	}
	if !found {
		prefs = models.DefaultPreferences()
		if err := s.writeDoc(userID, preferencesDoc, prefs); err != nil {
			return models.BudgetPreferences{}, err
		}
	}
	return prefs, nil
}

// SavePreferences persists the preferences document.
func (s *FileStore) SavePreferences(userID string, p models.BudgetPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDoc(userID, preferencesDoc, p)
}

func upsertTransaction(transactions []models.Transaction, t models.Transaction) []models.Transaction {
	for i := range transactions {
		if transactions[i].ID == t.ID {
			transactions[i] = t
			return transactions
		}
	}
	return append(transactions, t)
}
