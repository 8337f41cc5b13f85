// Package plan serves the derived budget views (summary and
// recommended-versus-actual plan) and the preferences that drive them.
package plan

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

// Initialize sets up the plan package with required dependencies
func Initialize(s *budget.Service, l *logrus.Logger) {
	svc = s
	log = l
}

// RegisterRoutes registers the plan and preferences routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/summary", handleSummary)
	r.Get("/api/plan", handlePlan)
	r.Get("/api/preferences", handlePreferences)
	r.Put("/api/preferences", handleSavePreferences)
}

func handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := svc.Summary(apphttp.ParseMonths(r))
	if err != nil {
		log.Errorf("Computing summary: %v", err)
		apphttp.RespondError(w, err)
		return
	}
	apphttp.RespondJSON(w, http.StatusOK, summary)
}

func handlePlan(w http.ResponseWriter, r *http.Request) {
	result, err := svc.Plan(apphttp.ParseMonths(r))
	if err != nil {
		log.Errorf("Computing plan: %v", err)
		apphttp.RespondError(w, err)
		return
	}
	apphttp.RespondJSON(w, http.StatusOK, result)
}

func handlePreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := svc.Preferences()
	if err != nil {
		log.Errorf("Loading preferences: %v", err)
		apphttp.RespondError(w, err)
		return
	}
	apphttp.RespondJSON(w, http.StatusOK, prefs)
}

func handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs models.BudgetPreferences
	if err := apphttp.DecodeBody(r, &prefs); err != nil {
		apphttp.RespondError(w, err)
		return
	}

	if err := svc.SavePreferences(prefs); err != nil {
		apphttp.RespondError(w, err)
		return
	}
	apphttp.RespondJSON(w, http.StatusOK, prefs)
}
