package web

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"sabadototal/internal/adapters/http/middleware"
	"sabadototal/internal/application/orchestrators"
)

const (
	GoogleAuthorizeEndpoint = "https://accounts.google.com/o/oauth2/auth"
	GoogleTokenEndpoint     = "https://oauth2.googleapis.com/token"
	GoogleUserInfoAPI       = "https://www.googleapis.com/oauth2/v2/userinfo"
)

const oauthStateCookie = "sabado_oauth_state"

// Global Google OAuth config (set by SetGoogleOAuth; nil when not configured)
var googleOAuth *oauth2.Config

// SetGoogleOAuth enables Google sign-in for the admin panel.
// Empty clientID leaves it disabled.
func SetGoogleOAuth(clientID, clientSecret, redirectURL string) {
	if clientID == "" {
		googleOAuth = nil
		return
	}
	googleOAuth = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  GoogleAuthorizeEndpoint,
			TokenURL: GoogleTokenEndpoint,
		},
	}
}

func googleConfigured() bool {
	return googleOAuth != nil
}

// handleGoogleLogin handles GET /auth/google
func handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !googleConfigured() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		internalError(w, err)
		return
	}
	state := hex.EncodeToString(stateBytes)

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		HttpOnly: true,
		Secure:   middleware.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/auth/google",
		MaxAge:   300,
	})

	http.Redirect(w, r, googleOAuth.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusTemporaryRedirect)
}

// handleGoogleCallback handles GET /auth/google/callback
func handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !googleConfigured() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		slog.Warn("auth_event", "event", "google_callback_rejected", "reason", "state_mismatch")
		http.Error(w, "invalid oauth state", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "code not found", http.StatusBadRequest)
		return
	}

	token, err := googleOAuth.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("auth_event", "event", "google_exchange_failed", "error", err.Error())
		http.Error(w, "failed to exchange token", http.StatusBadGateway)
		return
	}

	client := googleOAuth.Client(r.Context(), token)
	resp, err := client.Get(GoogleUserInfoAPI)
	if err != nil {
		http.Error(w, "failed to get user info", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	var googleUser struct {
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		http.Error(w, "failed to decode user info", http.StatusBadGateway)
		return
	}
	if !googleUser.VerifiedEmail {
		slog.Warn("auth_event", "event", "google_login_rejected", "reason", "unverified_email")
		http.Redirect(w, r, "/login?erro=google", http.StatusSeeOther)
		return
	}

	result, err := orchestrators.ExecuteGoogleLogin(r.Context(),
		orchestrators.GoogleLoginInput{Email: googleUser.Email},
		orchestrators.GoogleLoginDeps{AccountStore: stores.AccountStore})
	if err != nil {
		http.Redirect(w, r, "/login?erro=google", http.StatusSeeOther)
		return
	}

	createSessionAndRedirect(w, r, result)
}
