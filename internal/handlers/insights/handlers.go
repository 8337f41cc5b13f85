// Package insights serves the synthesized insight list, grouped by
// type for display.
package insights

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

// Initialize sets up the insights package with required dependencies
func Initialize(s *budget.Service, l *logrus.Logger) {
	svc = s
	log = l
}

// RegisterRoutes registers the insights routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/insights", handleInsights)
}

func handleInsights(w http.ResponseWriter, r *http.Request) {
	insightList, err := svc.Insights(apphttp.ParseMonths(r))
	if err != nil {
		log.Errorf("Synthesizing insights: %v", err)
		apphttp.RespondError(w, err)
		return
	}
	apphttp.RespondJSON(w, http.StatusOK, models.GroupInsights(insightList))
}
