package models

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a transaction is income or an expense
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Transaction represents a single financial transaction. Amount is signed:
// positive for money in, negative for money out.
type Transaction struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Type        TransactionType `json:"type"`

	// Derived fields (computed, not stored)
	Month string `json:"month,omitempty"` // "2024-01"
	Year  int    `json:"year,omitempty"`
}

// Normalize populates computed fields from Date
func (t *Transaction) Normalize() {
	t.Month = t.Date.Format("2006-01")
	t.Year = t.Date.Year()
}

// AbsAmount returns the absolute value of the amount
func (t *Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// TransactionSet wraps a slice with filtering/aggregation methods
type TransactionSet struct {
	Transactions []Transaction
}

// NewTransactionSet creates a new TransactionSet and normalizes each entry
func NewTransactionSet(transactions []Transaction) *TransactionSet {
	for i := range transactions {
		transactions[i].Normalize()
	}
	return &TransactionSet{Transactions: transactions}
}

// Len returns the number of transactions
func (ts *TransactionSet) Len() int {
	return len(ts.Transactions)
}

// FilterByType returns transactions of the specified type
func (ts *TransactionSet) FilterByType(tt TransactionType) *TransactionSet {
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if t.Type == tt {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// FilterByCategory returns transactions matching the category name
// (case-insensitive, consistent with category-name uniqueness)
func (ts *TransactionSet) FilterByCategory(category string) *TransactionSet {
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if strings.EqualFold(t.Category, category) {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// FilterByDateRange returns transactions within the date range (inclusive)
func (ts *TransactionSet) FilterByDateRange(start, end time.Time) *TransactionSet {
	result := &TransactionSet{}
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999999, end.Location())

	for _, t := range ts.Transactions {
		if !t.Date.Before(startDay) && !t.Date.After(endDay) {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// FilterByMonths returns transactions whose month key ("2006-01") is in months
func (ts *TransactionSet) FilterByMonths(months []string) *TransactionSet {
	result := &TransactionSet{}
	if len(months) == 0 {
		return result
	}
	want := make(map[string]bool, len(months))
	for _, m := range months {
		want[m] = true
	}
	for _, t := range ts.Transactions {
		key := t.Month
		if key == "" {
			key = t.Date.Format("2006-01")
		}
		if want[key] {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// FilterBySearch returns transactions matching the search term in description
func (ts *TransactionSet) FilterBySearch(search string) *TransactionSet {
	result := &TransactionSet{}
	searchLower := strings.ToLower(search)
	for _, t := range ts.Transactions {
		if strings.Contains(strings.ToLower(t.Description), searchLower) {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// SumAmount returns the sum of all transaction amounts
func (ts *TransactionSet) SumAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range ts.Transactions {
		sum = sum.Add(t.Amount)
	}
	return sum
}

// SumAbsAmount returns the sum of absolute values
func (ts *TransactionSet) SumAbsAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range ts.Transactions {
		sum = sum.Add(t.Amount.Abs())
	}
	return sum
}

// MeanAbsAmount returns the mean of absolute amounts, zero for an empty set
func (ts *TransactionSet) MeanAbsAmount() decimal.Decimal {
	if len(ts.Transactions) == 0 {
		return decimal.Zero
	}
	return ts.SumAbsAmount().Div(decimal.NewFromInt(int64(len(ts.Transactions))))
}

// GroupByMonth groups transactions by month key ("2006-01")
func (ts *TransactionSet) GroupByMonth() map[string]*TransactionSet {
	result := make(map[string]*TransactionSet)
	for _, t := range ts.Transactions {
		month := t.Date.Format("2006-01")
		if result[month] == nil {
			result[month] = &TransactionSet{}
		}
		result[month].Transactions = append(result[month].Transactions, t)
	}
	return result
}

// GroupByCategory groups transactions by category name
func (ts *TransactionSet) GroupByCategory() map[string]*TransactionSet {
	result := make(map[string]*TransactionSet)
	for _, t := range ts.Transactions {
		cat := t.Category
		if cat == "" {
			cat = UncategorizedName
		}
		if result[cat] == nil {
			result[cat] = &TransactionSet{}
		}
		result[cat].Transactions = append(result[cat].Transactions, t)
	}
	return result
}

// CategoryTotals returns a map of category -> total absolute amount
func (ts *TransactionSet) CategoryTotals() map[string]decimal.Decimal {
	result := make(map[string]decimal.Decimal)
	for _, t := range ts.Transactions {
		cat := t.Category
		if cat == "" {
			cat = UncategorizedName
		}
		result[cat] = result[cat].Add(t.Amount.Abs())
	}
	return result
}

// MonthlyTotals returns a map of month key -> total amount
func (ts *TransactionSet) MonthlyTotals() map[string]decimal.Decimal {
	result := make(map[string]decimal.Decimal)
	for _, t := range ts.Transactions {
		month := t.Date.Format("2006-01")
		result[month] = result[month].Add(t.Amount)
	}
	return result
}

// Months returns the sorted unique month keys present in the set
func (ts *TransactionSet) Months() []string {
	seen := make(map[string]bool)
	for _, t := range ts.Transactions {
		seen[t.Date.Format("2006-01")] = true
	}
	months := make([]string, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

// SortByDate sorts transactions by date (ascending)
func (ts *TransactionSet) SortByDate() *TransactionSet {
	sorted := make([]Transaction, len(ts.Transactions))
	copy(sorted, ts.Transactions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return &TransactionSet{Transactions: sorted}
}

// SortByDateDesc sorts transactions by date (descending)
func (ts *TransactionSet) SortByDateDesc() *TransactionSet {
	sorted := make([]Transaction, len(ts.Transactions))
	copy(sorted, ts.Transactions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return &TransactionSet{Transactions: sorted}
}

// MinDate returns the earliest transaction date
func (ts *TransactionSet) MinDate() time.Time {
	if len(ts.Transactions) == 0 {
		return time.Time{}
	}
	minDate := ts.Transactions[0].Date
	for _, t := range ts.Transactions[1:] {
		if t.Date.Before(minDate) {
			minDate = t.Date
		}
	}
	return minDate
}

// MaxDate returns the latest transaction date
func (ts *TransactionSet) MaxDate() time.Time {
	if len(ts.Transactions) == 0 {
		return time.Time{}
	}
	maxDate := ts.Transactions[0].Date
	for _, t := range ts.Transactions[1:] {
		if t.Date.After(maxDate) {
			maxDate = t.Date
		}
	}
	return maxDate
}

// Copy creates a shallow copy of the TransactionSet
func (ts *TransactionSet) Copy() *TransactionSet {
	copied := make([]Transaction, len(ts.Transactions))
	copy(copied, ts.Transactions)
	return &TransactionSet{Transactions: copied}
}
