// Package goals serves the goal endpoints: CRUD, the manual savings
// update for manually tracked goals, and the forced recompute pass.
package goals

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	apphttp "budgeteer/internal/http"
	"budgeteer/internal/models"
	"budgeteer/internal/services/budget"
)

var (
	svc *budget.Service
	log *logrus.Logger
)

// Initialize sets up the goals package with required dependencies
func Initialize(s *budget.Service, l *logrus.Logger) {
	svc = s
	log = l
}

// RegisterRoutes registers all goal routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/goals", handleList)
	r.Post("/api/goals", handleCreate)
	r.Put("/api/goals/{id}", handleUpdate)
	r.Delete("/api/goals/{id}", handleDelete)
	r.Put("/api/goals/{id}/savings", handleSavings)
	r.Post("/api/recompute", handleRecompute)
}

func handleList(w http.ResponseWriter, r *http.Request) {
	progress, err := svc.Goals()
	if err != nil {
		log.Errorf("Loading goals: %v", err)
		apphttp.RespondError(w, err)
		return
	}
	if progress == nil {
		progress = []models.GoalProgress{}
	}
	apphttp.RespondJSON(w, http.StatusOK, progress)
}

func handleCreate(w http.ResponseWriter, r *http.Request) {
	var g models.FinancialGoal
	if err := apphttp.DecodeBody(r, &g); err != nil {
		apphttp.RespondError(w, err)
		return
	}

	created, err := svc.AddGoal(g)
	if err != nil {
		apphttp.RespondError(w, err)
		return
	}
	apphttp.RespondJSON(w, http.StatusCreated, created)
}

func handleUpdate(w http.ResponseWriter, r *http.Request) {
	var g models.FinancialGoal
	if err := apphttp.DecodeBody(r, &g); err != nil {
		apphttp.RespondError(w, err)
		return
	}
	g.ID = chi.URLParam(r, "id")

	updated, err := svc.UpdateGoal(g)
	if err != nil {
		apphttp.RespondError(w, err)
		return
	}
	apphttp.RespondJSON(w, http.StatusOK, updated)
}

func handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := svc.DeleteGoal(chi.URLParam(r, "id")); err != nil {
		apphttp.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleSavings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := apphttp.DecodeBody(r, &body); err != nil {
		apphttp.RespondError(w, err)
		return
	}

	updated, err := svc.UpdateActualSavings(chi.URLParam(r, "id"), body.Amount)
	if err != nil {
		apphttp.RespondError(w, err)
		return
	}
	apphttp.RespondJSON(w, http.StatusOK, updated)
}

func handleRecompute(w http.ResponseWriter, r *http.Request) {
	changed, err := svc.Recompute()
	if err != nil {
		log.Errorf("Recompute: %v", err)
		apphttp.RespondError(w, err)
		return
	}
	apphttp.RespondJSON(w, http.StatusOK, map[string]int{"changed": changed})
}
