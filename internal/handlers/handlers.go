package handlers

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/meghan128/sportx-sub001/internal/middleware"
	"github.com/meghan128/sportx-sub001/internal/verification"
)

// Package-level collaborators, wired once at startup.
var (
	verifier  *verification.Service
	evaluator *verification.Evaluator
)

// Init wires the verification service and evaluator into the handlers.
func Init(s *verification.Service, e *verification.Evaluator) {
	verifier = s
	evaluator = e
}

func writeJSONResp(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// round2 applies the 2-decimal rounding the frontend contract expects.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func userIDFromContext(r *http.Request) (uint, bool) {
	id, ok := r.Context().Value(middleware.UserIDKey).(uint)
	return id, ok
}
