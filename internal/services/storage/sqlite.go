package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"budgeteer/internal/models"
)

// SQLiteStore persists collections in an embedded SQLite database.
// Money columns hold decimal strings, never floats; dates are RFC 3339
// text.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and
// applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// modernc sqlite serializes writes; one connection avoids lock
	// contention errors under concurrent handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Transactions returns the user's transactions ordered by date.
func (s *SQLiteStore) Transactions(userID string) ([]models.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT id, date, amount, description, category, type
		FROM transactions WHERE user_id = ? ORDER BY date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var (
			t            models.Transaction
			date, amount string
			txType       string
		)
		if err := rows.Scan(&t.ID, &date, &amount, &t.Description, &t.Category, &txType); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if t.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
			return nil, fmt.Errorf("parsing transaction date: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parsing transaction amount: %w", err)
		}
		t.Type = models.TransactionType(txType)
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// AddTransaction inserts, replacing any record with the same ID.
func (s *SQLiteStore) AddTransaction(userID string, t models.Transaction) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO transactions (user_id, id, date, amount, description, category, type)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, t.ID, t.Date.Format(time.RFC3339Nano), t.Amount.String(), t.Description, t.Category, string(t.Type))
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return nil
}

// UpdateTransaction replaces an existing record.
func (s *SQLiteStore) UpdateTransaction(userID string, t models.Transaction) error {
	res, err := s.db.Exec(`
		UPDATE transactions SET date = ?, amount = ?, description = ?, category = ?, type = ?
		WHERE user_id = ? AND id = ?`,
		t.Date.Format(time.RFC3339Nano), t.Amount.String(), t.Description, t.Category, string(t.Type), userID, t.ID)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}
	return requireRow(res, "transaction", t.ID)
}

// DeleteTransaction removes a record by ID.
func (s *SQLiteStore) DeleteTransaction(userID, id string) error {
	res, err := s.db.Exec(`DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	return requireRow(res, "transaction", id)
}

// ReplaceTransactions swaps the whole collection in one transaction.
func (s *SQLiteStore) ReplaceTransactions(userID string, transactions []models.Transaction) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clearing transactions: %w", err)
	}
	for _, t := range transactions {
		if _, err := tx.Exec(`
			INSERT INTO transactions (user_id, id, date, amount, description, category, type)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, t.ID, t.Date.Format(time.RFC3339Nano), t.Amount.String(), t.Description, t.Category, string(t.Type)); err != nil {
			return fmt.Errorf("inserting transaction %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// Categories returns the user's categories ordered by position, seeding
// the defaults on first access.
func (s *SQLiteStore) Categories(userID string) ([]models.Category, error) {
	categories, err := s.queryCategories(userID)
	if err != nil {
		return nil, err
	}
	if len(categories) > 0 {
		return categories, nil
	}

	defaults := models.DefaultCategories()
	if err := s.ReplaceCategories(userID, defaults); err != nil {
		return nil, fmt.Errorf("seeding default categories: %w", err)
	}
	return defaults, nil
}

func (s *SQLiteStore) queryCategories(userID string) ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT id, name, color, icon, is_default, is_income, percentage, position
		FROM categories WHERE user_id = ? ORDER BY position, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var (
			c          models.Category
			percentage sql.NullFloat64
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.IsDefault, &c.IsIncome, &percentage, &c.Position); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		if percentage.Valid {
			v := percentage.Float64
			c.Percentage = &v
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// AddCategory inserts, replacing any record with the same ID.
func (s *SQLiteStore) AddCategory(userID string, c models.Category) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO categories (user_id, id, name, color, icon, is_default, is_income, percentage, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, c.ID, c.Name, c.Color, c.Icon, c.IsDefault, c.IsIncome, nullableFloat(c.Percentage), c.Position)
	if err != nil {
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}

// UpdateCategory replaces an existing record.
func (s *SQLiteStore) UpdateCategory(userID string, c models.Category) error {
	res, err := s.db.Exec(`
		UPDATE categories SET name = ?, color = ?, icon = ?, is_default = ?, is_income = ?, percentage = ?, position = ?
		WHERE user_id = ? AND id = ?`,
		c.Name, c.Color, c.Icon, c.IsDefault, c.IsIncome, nullableFloat(c.Percentage), c.Position, userID, c.ID)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}
	return requireRow(res, "category", c.ID)
}

// DeleteCategory removes a record by ID.
func (s *SQLiteStore) DeleteCategory(userID, id string) error {
	res, err := s.db.Exec(`DELETE FROM categories WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return requireRow(res, "category", id)
}

// ReplaceCategories swaps the whole collection in one transaction.
func (s *SQLiteStore) ReplaceCategories(userID string, categories []models.Category) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM categories WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clearing categories: %w", err)
	}
	for _, c := range categories {
		if _, err := tx.Exec(`
			INSERT INTO categories (user_id, id, name, color, icon, is_default, is_income, percentage, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, c.ID, c.Name, c.Color, c.Icon, c.IsDefault, c.IsIncome, nullableFloat(c.Percentage), c.Position); err != nil {
			return fmt.Errorf("inserting category %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// Goals returns the user's goals in creation order.
func (s *SQLiteStore) Goals(userID string) ([]models.FinancialGoal, error) {
	rows, err := s.db.Query(`
		SELECT id, name, target_amount, current_amount, deadline, category, created_at, last_updated
		FROM goals WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying goals: %w", err)
	}
	defer rows.Close()

	var goals []models.FinancialGoal
	for rows.Next() {
		var (
			g                 models.FinancialGoal
			target, current   string
			deadline, created string
			lastUpdated       sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.Name, &target, &current, &deadline, &g.Category, &created, &lastUpdated); err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}
		if g.TargetAmount, err = decimal.NewFromString(target); err != nil {
			return nil, fmt.Errorf("parsing goal target: %w", err)
		}
		if g.CurrentAmount, err = decimal.NewFromString(current); err != nil {
			return nil, fmt.Errorf("parsing goal current: %w", err)
		}
		if g.Deadline, err = time.Parse(time.RFC3339Nano, deadline); err != nil {
			return nil, fmt.Errorf("parsing goal deadline: %w", err)
		}
		if g.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parsing goal created_at: %w", err)
		}
		if lastUpdated.Valid {
			ts, err := time.Parse(time.RFC3339Nano, lastUpdated.String)
			if err != nil {
				return nil, fmt.Errorf("parsing goal last_updated: %w", err)
			}
			g.LastUpdated = &ts
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// AddGoal inserts, replacing any record with the same ID.
func (s *SQLiteStore) AddGoal(userID string, g models.FinancialGoal) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO goals (user_id, id, name, target_amount, current_amount, deadline, category, created_at, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, g.ID, g.Name, g.TargetAmount.String(), g.CurrentAmount.String(),
		g.Deadline.Format(time.RFC3339Nano), string(g.Category),
		g.CreatedAt.Format(time.RFC3339Nano), nullableTime(g.LastUpdated))
	if err != nil {
		return fmt.Errorf("inserting goal: %w", err)
	}
	return nil
}

// UpdateGoal replaces an existing record.
func (s *SQLiteStore) UpdateGoal(userID string, g models.FinancialGoal) error {
	res, err := s.db.Exec(`
		UPDATE goals SET name = ?, target_amount = ?, current_amount = ?, deadline = ?, category = ?, created_at = ?, last_updated = ?
		WHERE user_id = ? AND id = ?`,
		g.Name, g.TargetAmount.String(), g.CurrentAmount.String(),
		g.Deadline.Format(time.RFC3339Nano), string(g.Category),
		g.CreatedAt.Format(time.RFC3339Nano), nullableTime(g.LastUpdated), userID, g.ID)
	if err != nil {
		return fmt.Errorf("updating goal: %w", err)
	}
	return requireRow(res, "goal", g.ID)
}

// DeleteGoal removes a record by ID.
func (s *SQLiteStore) DeleteGoal(userID, id string) error {
	res, err := s.db.Exec(`DELETE FROM goals WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}
	return requireRow(res, "goal", id)
}

// UpdateGoalsProgress applies a recompute batch in one transaction.
// Goals deleted since the batch was computed are skipped.
func (s *SQLiteStore) UpdateGoalsProgress(userID string, updated []models.FinancialGoal) error {
	if len(updated) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, g := range updated {
		if _, err := tx.Exec(`
			UPDATE goals SET current_amount = ?, last_updated = ?
			WHERE user_id = ? AND id = ?`,
			g.CurrentAmount.String(), nullableTime(g.LastUpdated), userID, g.ID); err != nil {
			return fmt.Errorf("updating goal progress %s: %w", g.ID, err)
		}
	}
	return tx.Commit()
}

// ReplaceGoals swaps the whole collection in one transaction.
func (s *SQLiteStore) ReplaceGoals(userID string, goals []models.FinancialGoal) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM goals WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clearing goals: %w", err)
	}
	for _, g := range goals {
		if _, err := tx.Exec(`
			INSERT INTO goals (user_id, id, name, target_amount, current_amount, deadline, category, created_at, last_updated)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, g.ID, g.Name, g.TargetAmount.String(), g.CurrentAmount.String(),
			g.Deadline.Format(time.RFC3339Nano), string(g.Category),
			g.CreatedAt.Format(time.RFC3339Nano), nullableTime(g.LastUpdated)); err != nil {
			return fmt.Errorf("inserting goal %s: %w", g.ID, err)
		}
	}
	return tx.Commit()
}

// Preferences returns the user's preferences document, seeding the
// defaults on first access.
func (s *SQLiteStore) Preferences(userID string) (models.BudgetPreferences, error) {
	var doc string
	err := s.db.QueryRow(`SELECT document FROM preferences WHERE user_id = ?`, userID).Scan(&doc)
	if err == sql.ErrNoRows {
		prefs := models.DefaultPreferences()
		if err := s.SavePreferences(userID, prefs); err != nil {
			return models.BudgetPreferences{}, fmt.Errorf("seeding default preferences: %w", err)
		}
		return prefs, nil
	}
	if err != nil {
		return models.BudgetPreferences{}, fmt.Errorf("querying preferences: %w", err)
	}

	var prefs models.BudgetPreferences
	if err := json.Unmarshal([]byte(doc), &prefs); err != nil {
		return models.BudgetPreferences{}, fmt.Errorf("parsing preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences persists the preferences document.
func (s *SQLiteStore) SavePreferences(userID string, p models.BudgetPreferences) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if _, err := s.db.Exec(`
		INSERT OR REPLACE INTO preferences (user_id, document) VALUES (?, ?)`,
		userID, string(doc)); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}

// requireRow converts a zero-row result into ErrNotFound.
func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}
