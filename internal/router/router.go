package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meghan128/sportx-sub001/internal/handlers"
	"github.com/meghan128/sportx-sub001/internal/middleware"
)

func RegisterRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	r.Handle("/metrics", promhttp.Handler())

	// Registration (public)
	r.Post("/api/v1/register", handlers.CreateAccount)

	// Public registry + shared verification views (token required via query param)
	r.Get("/api/v1/institutions", handlers.AllInstitutions)
	r.Get("/api/v1/verification-info/{id}", handlers.GetVerificationInfo)
	r.Get("/api/v1/verifications/{id}/qrcode", handlers.GetVerificationQRCode)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		// Document verification during registration
		r.Post("/api/v1/register/verify-document", handlers.VerifyDocument)
		r.Get("/api/v1/auth/me", handlers.AuthMe)
		// Manual review of pending verifications
		r.Patch("/api/v1/verifications/{id}/review", handlers.ReviewVerification)
		// Short-lived employer-facing share links
		r.Post("/api/v1/verifications/generate-share-link", handlers.GenerateShareLink)
		r.Delete("/api/v1/verifications/{id}/share", handlers.RevokeShareLink)
		// Bulk CSV import of the accredited-institution registry
		r.Post("/api/v1/institutions/bulk-upload", handlers.BulkUploadInstitutions)
	})
	return r
}
