package web

import (
	"net/http"

	"sabadototal/internal/adapters/http/middleware"
)

// registerRoutes attaches all application handlers to the mux.
func registerRoutes(mux *http.ServeMux) {
	// Public pages
	mux.HandleFunc("GET /{$}", handleLanding)
	mux.HandleFunc("GET /inscricao", handleInscricaoForm)
	mux.HandleFunc("POST /inscricao", handleInscricaoSubmit)

	// Auth
	mux.HandleFunc("GET /login", handleLoginForm)
	mux.HandleFunc("POST /login", handleLoginSubmit)
	mux.HandleFunc("POST /logout", handleLogout)
	mux.HandleFunc("GET /auth/google", handleGoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", handleGoogleCallback)

	// Admin pages
	mux.Handle("GET /admin", middleware.RequireAdmin(http.HandlerFunc(handleAdminDashboard)))
	mux.Handle("POST /admin/registrations/{id}/payment", middleware.RequireAdmin(http.HandlerFunc(handlePaymentToggle)))
	mux.Handle("GET /admin/export/csv", middleware.RequireAdmin(http.HandlerFunc(handleExportCSV)))
	mux.Handle("GET /admin/export/xml", middleware.RequireAdmin(http.HandlerFunc(handleExportXML)))

	// Admin JSON API
	mux.Handle("GET /api/admin/registrations", middleware.RequireAdmin(http.HandlerFunc(handleRegistrationsAPI)))
	mux.Handle("POST /api/admin/dietary-summary", middleware.RequireAdmin(http.HandlerFunc(handleDietarySummary)))
}
