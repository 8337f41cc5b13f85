// Package transactions serves the transaction CRUD endpoints. New
// transactions without a category are classified before they are
// stored; every mutation is followed by a goal-progress refresh.
package transactions

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	apphttp "budgeteer/internal/http"
	"budgeteer/internal/models"
	"budgeteer/internal/services/budget"
)

var (
	svc *budget.Service
	log *logrus.Logger
)

// Initialize sets up the transactions package with required dependencies
func Initialize(s *budget.Service, l *logrus.Logger) {
	svc = s
	log = l
}

// RegisterRoutes registers all transaction routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/transactions", handleList)
	r.Post("/api/transactions", handleCreate)
	r.Put("/api/transactions/{id}", handleUpdate)
	r.Delete("/api/transactions/{id}", handleDelete)
}

func handleList(w http.ResponseWriter, r *http.Request) {
	transactions, err := svc.Transactions()
	if err != nil {
		log.Errorf("Loading transactions: %v", err)
		apphttp.RespondError(w, err)
		return
	}

	ts := &models.TransactionSet{Transactions: transactions}
	if months := apphttp.ParseMonths(r); len(months) > 0 {
		ts = ts.FilterByMonths(months)
	}
	if category := r.URL.Query().Get("category"); category != "" {
		ts = ts.FilterByCategory(category)
	}
	if typ := r.URL.Query().Get("type"); typ != "" {
		ts = ts.FilterByType(models.TransactionType(typ))
	}
	if search := r.URL.Query().Get("search"); search != "" {
		ts = ts.FilterBySearch(search)
	}

	list := ts.SortByDateDesc().Transactions
	if list == nil {
		list = []models.Transaction{}
	}
	apphttp.RespondJSON(w, http.StatusOK, list)
}

func handleCreate(w http.ResponseWriter, r *http.Request) {
	var t models.Transaction
	if err := apphttp.DecodeBody(r, &t); err != nil {
		apphttp.RespondError(w, err)
		return
	}

	created, err := svc.AddTransaction(t)
	if err != nil {
		apphttp.RespondError(w, err)
		return
	}
	apphttp.RespondJSON(w, http.StatusCreated, created)
}

func handleUpdate(w http.ResponseWriter, r *http.Request) {
	var t models.Transaction
	if err := apphttp.DecodeBody(r, &t); err != nil {
		apphttp.RespondError(w, err)
		return
	}
	t.ID = chi.URLParam(r, "id")

	updated, err := svc.UpdateTransaction(t)
	if err != nil {
		apphttp.RespondError(w, err)
		return
	}
	apphttp.RespondJSON(w, http.StatusOK, updated)
}

func handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := svc.DeleteTransaction(chi.URLParam(r, "id")); err != nil {
		apphttp.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
