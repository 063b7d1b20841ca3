package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/meghan128/sportx-sub001/internal/db"
	"github.com/meghan128/sportx-sub001/internal/models"
)

var institutionMetric = metrics.NewJaroWinkler()

// institutionSimilarity fuzzy-compares an OCR-extracted institution name
// against an official registry entry.
func institutionSimilarity(extracted, official string) float64 {
	return strutil.Similarity(
		strings.ToLower(strings.TrimSpace(extracted)),
		strings.ToLower(strings.TrimSpace(official)),
		institutionMetric,
	)
}

// AllInstitutions: GET /api/v1/institutions
func AllInstitutions(w http.ResponseWriter, r *http.Request) {
	var institutions []models.AccreditedInstitution
	if err := db.DB.Limit(100).Order("name").Find(&institutions).Error; err != nil {
		writeJSONResp(w, http.StatusInternalServerError, map[string]any{"error": "database error"})
		return
	}
	writeJSONResp(w, http.StatusOK, institutions)
}

// BulkUploadInstitutions handles CSV bulk import of accredited institutions.
// POST /api/v1/institutions/bulk-upload (protected)
// multipart/form-data with file field "institutionsCsv".
func BulkUploadInstitutions(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		writeJSONResp(w, http.StatusBadRequest, map[string]any{"error": "failed to parse form"})
		return
	}

	file, header, err := formFileWithFallback(r, "institutionsCsv")
	if err != nil {
		writeJSONResp(w, http.StatusBadRequest, map[string]any{"error": "institutionsCsv file is required"})
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // allow variable-length; we'll validate

	requiredHeaders := []string{"name", "country", "accreditation_body"}
	headers, err := reader.Read()
	if err != nil {
		writeJSONResp(w, http.StatusBadRequest, map[string]any{"error": "unable to read CSV header"})
		return
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
	}
	if !equalStringSlices(headers, requiredHeaders) {
		writeJSONResp(w, http.StatusBadRequest, map[string]any{
			"error":    "Invalid CSV format. Please use the provided template.",
			"expected": requiredHeaders,
			"got":      headers,
		})
		return
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		writeJSONResp(w, http.StatusInternalServerError, map[string]any{"error": "could not start transaction"})
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			tx.Rollback()
		}
	}()

	var count, duplicates int
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			tx.Rollback()
			writeJSONResp(w, http.StatusBadRequest, map[string]any{"error": "failed to read CSV rows"})
			return
		}
		if len(rec) != len(requiredHeaders) {
			tx.Rollback()
			writeJSONResp(w, http.StatusBadRequest, map[string]any{"error": "row does not match header length"})
			return
		}

		name := strings.TrimSpace(rec[0])
		country := strings.TrimSpace(rec[1])
		body := strings.TrimSpace(rec[2])
		if name == "" {
			tx.Rollback()
			writeJSONResp(w, http.StatusBadRequest, map[string]any{"error": "institution name must not be empty"})
			return
		}

		var dup int64
		if err := tx.Model(&models.AccreditedInstitution{}).Where("name = ?", name).Count(&dup).Error; err != nil {
			tx.Rollback()
			writeJSONResp(w, http.StatusInternalServerError, map[string]any{"error": "database error during duplicate check"})
			return
		}
		if dup > 0 {
			duplicates++
			continue
		}

		row := models.AccreditedInstitution{Name: name, Country: country, AccreditationBody: body}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			writeJSONResp(w, http.StatusInternalServerError, map[string]any{"error": "failed to insert row"})
			return
		}
		count++
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		writeJSONResp(w, http.StatusInternalServerError, map[string]any{"error": "failed to commit transaction"})
		return
	}

	writeJSONResp(w, http.StatusOK, map[string]any{
		"message":            fmt.Sprintf("Successfully imported %d institutions. Skipped %d duplicates.", count, duplicates),
		"inserted":           count,
		"duplicates_skipped": duplicates,
		"file":               header.Filename,
	})
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
