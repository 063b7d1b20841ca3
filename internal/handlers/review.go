package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meghan128/sportx-sub001/internal/db"
	"github.com/meghan128/sportx-sub001/internal/models"
)

// ReviewVerification: PATCH /api/v1/verifications/{id}/review (protected)
// The human half of the soft-failure loop: pending records are approved or
// rejected here, never automatically.
func ReviewVerification(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	var body struct {
		Decision string `json:"decision"`
		Notes    string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if body.Decision != models.AuthStatusApproved && body.Decision != models.AuthStatusRejected {
		http.Error(w, "decision must be 'approved' or 'rejected'", http.StatusBadRequest)
		return
	}

	var record models.VerificationRecord
	if err := db.DB.Where("id = ?", id).First(&record).Error; err != nil {
		http.Error(w, "verification record not found", http.StatusNotFound)
		return
	}

	now := time.Now()
	record.Status = body.Decision
	record.ReviewedBy = strconv.FormatUint(uint64(reviewerID), 10)
	record.ReviewedAt = &now
	if err := db.DB.Save(&record).Error; err != nil {
		http.Error(w, "failed to save review", http.StatusInternalServerError)
		return
	}

	if err := db.DB.Model(&models.Users{}).Where("id = ?", record.UserID).Update("auth_status", body.Decision).Error; err != nil {
		log.Println("review: failed to update account status:", err)
	}

	writeJSONResp(w, http.StatusOK, map[string]any{
		"record_id":   record.ID,
		"status":      record.Status,
		"reviewed_by": record.ReviewedBy,
		"reviewed_at": record.ReviewedAt,
		"notes":       body.Notes,
	})
}
