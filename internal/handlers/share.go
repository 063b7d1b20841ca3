package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/meghan128/sportx-sub001/internal/cache"
	"github.com/meghan128/sportx-sub001/internal/db"
	"github.com/meghan128/sportx-sub001/internal/models"
)

type shareClaims struct {
	RecordID string `json:"record_id"`
	jwt.RegisteredClaims
}

func getShareSecret() ([]byte, error) {
	if s := os.Getenv("SHARE_TOKEN_SECRET"); s != "" {
		return []byte(s), nil
	}
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s), nil
	}
	return nil, errors.New("missing SHARE_TOKEN_SECRET/JWT_SECRET")
}

// GenerateShareLink: POST /api/v1/verifications/generate-share-link (protected)
// Lets a professional hand an employer a short-lived link to their
// verification outcome.
func GenerateShareLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var payload struct {
		RecordID       string `json:"record_id"`
		ExpiresInHours int    `json:"expires_in_hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	recordID := strings.TrimSpace(payload.RecordID)
	if recordID == "" {
		http.Error(w, "record_id is required", http.StatusBadRequest)
		return
	}
	// Enforce 1..168 hours to avoid immediately-expired tokens
	if payload.ExpiresInHours < 1 || payload.ExpiresInHours > 168 {
		http.Error(w, "expires_in_hours must be between 1 and 168", http.StatusBadRequest)
		return
	}

	// Verify ownership: the record must belong to the requesting account
	var record models.VerificationRecord
	if err := db.DB.Where("id = ?", recordID).First(&record).Error; err != nil {
		http.Error(w, "verification record not found", http.StatusNotFound)
		return
	}
	if record.UserID != userID {
		http.Error(w, "forbidden: not owner of verification record", http.StatusForbidden)
		return
	}

	secret, err := getShareSecret()
	if err != nil {
		http.Error(w, "server misconfigured", http.StatusInternalServerError)
		return
	}

	ttl := time.Duration(payload.ExpiresInHours) * time.Hour
	claims := shareClaims{
		RecordID: recordID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	if err != nil {
		http.Error(w, "failed to sign share token", http.StatusInternalServerError)
		return
	}

	// Registering the token in Redis makes it revocable before JWT expiry.
	cache.StoreShareToken(r.Context(), recordID, signed, ttl)

	base := os.Getenv("FRONTEND_BASE_URL")
	if base == "" {
		base = "http://localhost:3000"
	}
	url := fmt.Sprintf("%s/verification/%s?token=%s", strings.TrimRight(base, "/"), recordID, signed)
	writeJSONResp(w, http.StatusOK, map[string]string{"shareable_url": url})
}

// GetVerificationInfo: GET /api/v1/verification-info/{id}?token=...
// Public endpoint behind a signed share token.
func GetVerificationInfo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "This verification link is invalid or has expired.", http.StatusUnauthorized)
		return
	}

	secret, err := getShareSecret()
	if err != nil {
		http.Error(w, "server misconfigured", http.StatusInternalServerError)
		return
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &shareClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		http.Error(w, "This verification link is invalid or has expired.", http.StatusUnauthorized)
		return
	}
	claims, ok := parsed.Claims.(*shareClaims)
	if !ok || claims.RecordID == "" || claims.ExpiresAt == nil || time.Now().After(claims.ExpiresAt.Time) {
		http.Error(w, "This verification link is invalid or has expired.", http.StatusUnauthorized)
		return
	}
	if claims.RecordID != id {
		http.Error(w, "forbidden: id mismatch", http.StatusForbidden)
		return
	}
	if !cache.ShareTokenActive(r.Context(), id, tokenStr) {
		http.Error(w, "This verification link has been revoked.", http.StatusUnauthorized)
		return
	}

	var record models.VerificationRecord
	if err := db.DB.Preload("User").Where("id = ?", id).First(&record).Error; err != nil {
		http.Error(w, "verification record not found", http.StatusNotFound)
		return
	}

	writeJSONResp(w, http.StatusOK, map[string]any{
		"holder": map[string]any{
			"name":       record.User.FullName(),
			"profession": record.User.Profession,
		},
		"verification": map[string]any{
			"isValid":    record.IsValid,
			"confidence": round2(record.Confidence),
			"issues":     record.Issues,
			"status":     record.Status,
		},
		"documentType": record.DocumentType,
		"valid_until":  claims.ExpiresAt.Time,
	})
}

// RevokeShareLink: DELETE /api/v1/verifications/{id}/share (protected)
func RevokeShareLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	var record models.VerificationRecord
	if err := db.DB.Where("id = ?", id).First(&record).Error; err != nil {
		http.Error(w, "verification record not found", http.StatusNotFound)
		return
	}
	if record.UserID != userID {
		http.Error(w, "forbidden: not owner of verification record", http.StatusForbidden)
		return
	}

	cache.RevokeShareToken(r.Context(), id)
	writeJSONResp(w, http.StatusOK, map[string]string{"message": "share link revoked"})
}
