// Package categories serves the category CRUD endpoints. Name and
// percentage validation runs before anything is persisted; built-in
// categories can be edited but never deleted.
package categories

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

// Initialize sets up the categories package with required dependencies
func Initialize(s *budget.Service, l *logrus.Logger) {
	svc = s
	log = l
}

// RegisterRoutes registers all category routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/categories", handleList)
	r.Post("/api/categories", handleCreate)
	r.Put("/api/categories/{id}", handleUpdate)
	r.Delete("/api/categories/{id}", handleDelete)
}

func handleList(w http.ResponseWriter, r *http.Request) {
	categories, err := svc.Categories()
	if err != nil {
		log.Errorf("Loading categories: %v", err)
		apphttp.RespondError(w, err)
		return
	}
	apphttp.RespondJSON(w, http.StatusOK, categories)
}

func handleCreate(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if err := apphttp.DecodeBody(r, &c); err != nil {
		apphttp.RespondError(w, err)
		return
	}

	created, err := svc.AddCategory(c)
	if err != nil {
		apphttp.RespondError(w, err)
		return
	}
	apphttp.RespondJSON(w, http.StatusCreated, created)
}

func handleUpdate(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if err := apphttp.DecodeBody(r, &c); err != nil {
		apphttp.RespondError(w, err)
		return
	}
	c.ID = chi.URLParam(r, "id")

	updated, err := svc.UpdateCategory(c)
	if err != nil {
		apphttp.RespondError(w, err)
		return
	}
	apphttp.RespondJSON(w, http.StatusOK, updated)
}

func handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := svc.DeleteCategory(chi.URLParam(r, "id")); err != nil {
		apphttp.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
