package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"sabadototal/internal/adapters/http/middleware"
	"sabadototal/internal/application/orchestrators"
	"sabadototal/internal/application/projections"
	"sabadototal/internal/domain/export"
	"sabadototal/internal/domain/registration"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// writeJSON encodes v to the response with the JSON content type.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

const templatesDir = "internal/adapters/http/templates"

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	email := ""
	if ok {
		email = sess.Email
	}

	funcMap := template.FuncMap{
		"currentEmail":   func() string { return email },
		"isLoggedIn":     func() bool { return ok },
		"csrfToken":      func() string { return csrf.Token(r) },
		"renderMarkdown": renderMarkdown,
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// handleLanding handles GET /
func handleLanding(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "landing.html", nil)
}

// inscricaoPageData feeds the registration form template.
type inscricaoPageData struct {
	AgeGroups []string
	Values    registration.Input
	Errors    map[string]string
	FormError string
	Success   bool
}

// handleInscricaoForm handles GET /inscricao
func handleInscricaoForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "inscricao.html", inscricaoPageData{
		AgeGroups: registration.AgeGroups,
		Success:   r.URL.Query().Get("sucesso") == "1",
	})
}

// handleInscricaoSubmit handles POST /inscricao
func handleInscricaoSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := registration.Input{
		ChildName:                 r.FormValue("childName"),
		BirthDate:                 r.FormValue("birthDate"),
		GuardianName:              r.FormValue("guardianName"),
		GuardianWhatsapp:          r.FormValue("guardianWhatsapp"),
		AgeGroup:                  r.FormValue("ageGroup"),
		HasDietaryRestriction:     r.FormValue("hasDietaryRestriction"),
		DietaryRestrictionDetails: r.FormValue("dietaryRestrictionDetails"),
		InfoConsent:               r.FormValue("infoConsent") == "on",
		SupervisionConsent:        r.FormValue("supervisionConsent") == "on",
	}

	deps := orchestrators.RegisterChildDeps{
		RegistrationStore: stores.RegistrationStore,
		Schema:            registrationSchema,
		EmailSender:       emailSender,
		NotifyTo:          notifyEmail,
		Now:               timeNow,
		NewID:             generateID,
	}

	_, err := orchestrators.ExecuteRegisterChild(r.Context(), orchestrators.RegisterChildInput{Form: input}, deps)
	if err != nil {
		var fieldErrs registration.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			w.WriteHeader(http.StatusUnprocessableEntity)
			renderTemplate(w, r, "inscricao.html", inscricaoPageData{
				AgeGroups: registration.AgeGroups,
				Values:    input,
				Errors:    fieldErrs.ByField(),
			})
		case errors.Is(err, orchestrators.ErrDuplicateChild):
			w.WriteHeader(http.StatusConflict)
			renderTemplate(w, r, "inscricao.html", inscricaoPageData{
				AgeGroups: registration.AgeGroups,
				Values:    input,
				FormError: "Esta criança já foi inscrita anteriormente.",
			})
		case errors.Is(err, orchestrators.ErrStorageReadOnly):
			internalError(w, err)
		default:
			internalError(w, err)
		}
		return
	}

	http.Redirect(w, r, "/inscricao?sucesso=1", http.StatusSeeOther)
}

// loginPageData feeds the login template.
type loginPageData struct {
	Email       string
	Error       string
	GoogleLogin bool
}

// handleLoginForm handles GET /login
func handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	data := loginPageData{GoogleLogin: googleConfigured()}
	if r.URL.Query().Get("erro") == "google" {
		data.Error = "Esta conta Google não tem acesso ao painel."
	}
	renderTemplate(w, r, "login.html", data)
}

// handleLoginSubmit handles POST /login
func handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.LoginInput{
		Email:    strings.TrimSpace(strings.ToLower(r.FormValue("email"))),
		Password: r.FormValue("password"),
	}
	deps := orchestrators.LoginDeps{AccountStore: stores.AccountStore, Now: timeNow}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
	if err != nil {
		msg := "Email ou senha inválidos."
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			msg = "Conta bloqueada temporariamente. Tente novamente em alguns minutos."
		}
		w.WriteHeader(http.StatusUnauthorized)
		renderTemplate(w, r, "login.html", loginPageData{
			Email:       input.Email,
			Error:       msg,
			GoogleLogin: googleConfigured(),
		})
		return
	}

	createSessionAndRedirect(w, r, result)
}

// createSessionAndRedirect starts a session for the account and sends
// the browser to the dashboard.
func createSessionAndRedirect(w http.ResponseWriter, r *http.Request, result orchestrators.LoginResult) {
	token, err := sessions.Create(result.AccountID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("sabado_session"); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleAdminDashboard handles GET /admin
func handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")
	result, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{
		Search: search,
		Now:    timeNow(),
	}, projections.GetDashboardDeps{RegistrationStore: stores.RegistrationStore})
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "admin.html", map[string]any{
		"Rows":             result.Rows,
		"Total":            result.Total,
		"RestrictionCount": result.RestrictionCount,
		"Search":           search,
	})
}

// handleRegistrationsAPI handles GET /api/admin/registrations
func handleRegistrationsAPI(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{
		Search: r.URL.Query().Get("q"),
		Now:    timeNow(),
	}, projections.GetDashboardDeps{RegistrationStore: stores.RegistrationStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDietarySummary handles POST /api/admin/dietary-summary
func handleDietarySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := orchestrators.ExecuteDietarySummary(r.Context(), orchestrators.DietarySummaryDeps{
		RegistrationStore: stores.RegistrationStore,
		Summarizer:        summarizer,
	})
	if err != nil {
		slog.Error("dietary_summary_failed", "error", err.Error())
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "Não foi possível gerar o resumo. Tente novamente.",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"summary": summary,
		"html":    string(renderMarkdown(summary)),
	})
}

// handlePaymentToggle handles POST /admin/registrations/{id}/payment
func handlePaymentToggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.SetPaymentStatusInput{
		RegistrationID: r.PathValue("id"),
		Paid:           r.FormValue("paid") == "true" || r.FormValue("paid") == "on",
	}
	reg, err := orchestrators.ExecuteSetPaymentStatus(r.Context(), input,
		orchestrators.SetPaymentStatusDeps{RegistrationStore: stores.RegistrationStore})
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrRegistrationNotFound):
			http.Error(w, "registration not found", http.StatusNotFound)
		case errors.Is(err, registration.ErrPaymentWaived):
			http.Error(w, "payment is waived for this registration", http.StatusConflict)
		default:
			internalError(w, err)
		}
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":            reg.ID,
		"status":        reg.Status,
		"paymentStatus": reg.PaymentStatus,
	})
}

// handleExportCSV handles GET /admin/export/csv
func handleExportCSV(w http.ResponseWriter, r *http.Request) {
	serveExport(w, r, export.FormatCSV)
}

// handleExportXML handles GET /admin/export/xml
func handleExportXML(w http.ResponseWriter, r *http.Request) {
	serveExport(w, r, export.FormatXML)
}

// serveExport renders the full record set as a downloadable file.
// An empty set yields 409 and no file.
func serveExport(w http.ResponseWriter, r *http.Request, format string) {
	regs, err := stores.RegistrationStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	var data []byte
	var fileName, contentType string
	switch format {
	case export.FormatCSV:
		data, err = export.ToCSV(regs, timeNow())
		fileName, contentType = export.FileNameCSV, "text/csv; charset=utf-8"
	case export.FormatXML:
		data, err = export.ToXML(regs, timeNow())
		fileName, contentType = export.FileNameXML, "application/xml; charset=utf-8"
	default:
		http.Error(w, "unknown export format", http.StatusBadRequest)
		return
	}
	if err != nil {
		if errors.Is(err, export.ErrNoRecords) {
			http.Error(w, "Não há inscrições para exportar.", http.StatusConflict)
			return
		}
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.Write(data)
}
