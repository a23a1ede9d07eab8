package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	"sabadototal/internal/adapters/ai"
	"sabadototal/internal/adapters/email"
	"sabadototal/internal/adapters/http/middleware"
	accountStore "sabadototal/internal/adapters/storage/account"
	registrationStore "sabadototal/internal/adapters/storage/registration"
	"sabadototal/internal/config"
	"sabadototal/internal/domain/registration"
)

// Stores holds all storage dependencies.
type Stores struct {
	RegistrationStore registrationStore.Store
	AccountStore      accountStore.Store
}

// loadCSRFKey decodes the configured CSRF secret (hex-encoded, 32 bytes).
// In production the key MUST be set (config.Load enforces it); in
// development a random key is generated per startup.
func loadCSRFKey(keyHex string, production bool) []byte {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("SABADO_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if production {
		log.Fatal("SABADO_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set SABADO_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// registrationSchema is built once; the indirection through timeNow
// keeps it on the handlers' injectable clock.
var registrationSchema = registration.NewSchema(func() time.Time { return timeNow() })

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string
var notifyEmail string

// Global summarizer instance (set by SetSummarizer)
var summarizer ai.Summarizer

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo, notifyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
	notifyEmail = notifyTo
}

// SetSummarizer sets the global dietary summarizer for the application.
func SetSummarizer(s ai.Summarizer) {
	summarizer = s
}

// NewMux wires HTTP handlers for the app.
func NewMux(cfg *config.Config, s *Stores) http.Handler {
	stores = s
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = cfg.IsProduction()

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from config
	csrfKey := loadCSRFKey(cfg.CSRFKey, cfg.IsProduction())

	// Rate limiter: configurable requests per second per IP
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Recover -> Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Recover,
	)
}
