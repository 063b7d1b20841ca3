package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/meghan128/sportx-sub001/internal/db"
	"github.com/meghan128/sportx-sub001/internal/middleware"
	"github.com/meghan128/sportx-sub001/internal/models"
)

const sessionTTL = 72 * time.Hour

// findUserByEmail is a package variable so tests can exercise the duplicate
// branch without a database.
var findUserByEmail = func(email string) (models.Users, error) {
	var user models.Users
	err := db.DB.Where("email = ?", email).First(&user).Error
	return user, err
}

// CreateAccount: POST /api/v1/register
// Creates a pending account; approval happens through document verification.
func CreateAccount(w http.ResponseWriter, r *http.Request) {
	log.Println("CreateAccount called")
	var body struct {
		Email            string   `json:"email"`
		FirstName        string   `json:"firstName"`
		LastName         string   `json:"lastName"`
		Profession       string   `json:"profession"`
		AlternativeNames []string `json:"alternativeNames"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	if body.Email == "" || strings.TrimSpace(body.FirstName+body.LastName) == "" {
		http.Error(w, "email and name are required", http.StatusBadRequest)
		return
	}

	// A duplicate email is a hard conflict. This endpoint is public, so
	// handing out a session for an already-registered address would let
	// anyone who knows the email act as that account.
	if _, err := findUserByEmail(body.Email); err == nil {
		writeJSONResp(w, http.StatusConflict, map[string]any{
			"error": "an account with this email already exists",
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}

	newUser := models.Users{
		Email:            body.Email,
		FirstName:        strings.TrimSpace(body.FirstName),
		LastName:         strings.TrimSpace(body.LastName),
		Profession:       strings.TrimSpace(body.Profession),
		AlternativeNames: models.JSONStrings(cleanNames(body.AlternativeNames)),
		AuthStatus:       models.AuthStatusPending,
	}
	if err := db.DB.Create(&newUser).Error; err != nil {
		http.Error(w, "failed to create user", http.StatusInternalServerError)
		return
	}

	token, err := middleware.IssueSessionToken(newUser.ID, sessionTTL)
	if err != nil {
		http.Error(w, "failed to issue session token", http.StatusInternalServerError)
		return
	}

	writeJSONResp(w, http.StatusCreated, map[string]any{
		"user":  newUser,
		"token": token,
		"authStatus": map[string]any{
			"isAuthenticated": true,
			"status":          newUser.AuthStatus,
		},
	})
}

// AuthMe returns the current account's auth status and latest verification.
// GET /api/v1/auth/me (protected)
func AuthMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var user models.Users
	if errors.Is(db.DB.First(&user, userID).Error, gorm.ErrRecordNotFound) {
		writeJSONResp(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	var latest models.VerificationRecord
	hasVerification := db.DB.Where("user_id = ?", userID).Order("created_at desc").First(&latest).Error == nil

	resp := map[string]any{
		"user":       user,
		"authStatus": user.AuthStatus,
	}
	if hasVerification {
		resp["latestVerification"] = map[string]any{
			"id":         latest.ID,
			"isValid":    latest.IsValid,
			"confidence": round2(latest.Confidence),
			"issues":     latest.Issues,
			"status":     latest.Status,
			"createdAt":  latest.CreatedAt,
		}
	}
	writeJSONResp(w, http.StatusOK, resp)
}
