// Package backup serves the data portability endpoints (zip download
// and restore) plus health and version. Backups hold the user's four
// data documents as plain JSON regardless of store encryption, so an
// archive restores into any backend.
package backup

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	apphttp "budgeteer/internal/http"
	"budgeteer/internal/models"
	"budgeteer/internal/services/budget"
	"budgeteer/internal/version"
)

// Document names inside a backup archive.
const (
	transactionsDoc = "transactions.json"
	categoriesDoc   = "categories.json"
	goalsDoc        = "goals.json"
	preferencesDoc  = "preferences.json"
)

// maxRestoreBytes bounds an uploaded archive.
const maxRestoreBytes = 50 << 20

var (
	svc *budget.Service
	log *logrus.Logger
)

// Initialize sets up the backup package with required dependencies
func Initialize(s *budget.Service, l *logrus.Logger) {
	svc = s
	log = l
}

// RegisterRoutes registers backup, restore, health, and version routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/backup", handleBackup)
	r.Post("/api/restore", handleRestore)
	r.Get("/api/health", handleHealth)
	r.Get("/api/version", handleVersion)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	apphttp.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	apphttp.RespondJSON(w, http.StatusOK, version.Get())
}

func handleBackup(w http.ResponseWriter, r *http.Request) {
	transactions, err := svc.Transactions()
	if err != nil {
		apphttp.RespondError(w, err)
		return
	}
	categories, err := svc.Categories()
	if err != nil {
		apphttp.RespondError(w, err)
		return
	}
	goalList, err := svc.GoalList()
	if err != nil {
		apphttp.RespondError(w, err)
		return
	}
	prefs, err := svc.Preferences()
	if err != nil {
		apphttp.RespondError(w, err)
		return
	}

	filename := fmt.Sprintf("budgeteer_backup_%s.zip", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	zw := zip.NewWriter(w)
	defer zw.Close()

	docs := []struct {
		name string
		data any
	}{
		{transactionsDoc, transactions},
		{categoriesDoc, categories},
		{goalsDoc, goalList},
		{preferencesDoc, prefs},
	}
	for _, doc := range docs {
		f, err := zw.Create(doc.name)
		if err != nil {
			log.Errorf("Creating backup entry %s: %v", doc.name, err)
			return
		}
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc.data); err != nil {
			// Headers are already out; log and stop the stream.
			log.Errorf("Writing backup entry %s: %v", doc.name, err)
			return
		}
	}
}

func handleRestore(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxRestoreBytes); err != nil {
		apphttp.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "file too large"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apphttp.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file upload"})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".zip") {
		apphttp.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "only zip backups are accepted"})
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		apphttp.RespondError(w, err)
		return
	}
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		apphttp.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid zip file"})
		return
	}

	// Collect documents by base name to neutralize archive paths.
	raw := make(map[string][]byte)
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(zf.Name)
		switch name {
		case transactionsDoc, categoriesDoc, goalsDoc, preferencesDoc:
		default:
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			log.Errorf("Opening archive entry %s: %v", zf.Name, err)
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			log.Errorf("Reading archive entry %s: %v", zf.Name, err)
			continue
		}
		raw[name] = data
	}

	for _, required := range []string{transactionsDoc, categoriesDoc, goalsDoc} {
		if _, ok := raw[required]; !ok {
			apphttp.RespondJSON(w, http.StatusBadRequest,
				map[string]string{"error": fmt.Sprintf("backup is missing %s", required)})
			return
		}
	}

	var transactions []models.Transaction
	if err := json.Unmarshal(raw[transactionsDoc], &transactions); err != nil {
		apphttp.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed " + transactionsDoc})
		return
	}
	var categories []models.Category
	if err := json.Unmarshal(raw[categoriesDoc], &categories); err != nil {
		apphttp.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed " + categoriesDoc})
		return
	}
	var goalList []models.FinancialGoal
	if err := json.Unmarshal(raw[goalsDoc], &goalList); err != nil {
		apphttp.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed " + goalsDoc})
		return
	}
	var prefs *models.BudgetPreferences
	if data, ok := raw[preferencesDoc]; ok {
		prefs = &models.BudgetPreferences{}
		if err := json.Unmarshal(data, prefs); err != nil {
			apphttp.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed " + preferencesDoc})
			return
		}
	}

	if err := svc.Restore(transactions, categories, goalList, prefs); err != nil {
		apphttp.RespondError(w, err)
		return
	}

	apphttp.RespondJSON(w, http.StatusOK, map[string]int{
		"transactions": len(transactions),
		"categories":   len(categories),
		"goals":        len(goalList),
	})
}
