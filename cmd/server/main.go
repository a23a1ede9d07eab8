package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"sabadototal/internal/adapters/ai"
	emailPkg "sabadototal/internal/adapters/email"
	web "sabadototal/internal/adapters/http"
	"sabadototal/internal/adapters/storage"
	accountStorePkg "sabadototal/internal/adapters/storage/account"
	registrationStorePkg "sabadototal/internal/adapters/storage/registration"
	"sabadototal/internal/application/orchestrators"
	"sabadototal/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Open database with WAL mode, foreign keys, and busy timeout
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Wrap DB with slow-query instrumentation
	timedDB := storage.NewTimedDB(db)

	acctStore := accountStorePkg.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		RegistrationStore: registrationStorePkg.NewSQLiteStore(timedDB),
		AccountStore:      acctStore,
	}

	// Seed the admin account from config (idempotent, never overwrites)
	seedInput := orchestrators.SeedAdminInput{Email: cfg.AdminEmail, Password: cfg.AdminPassword}
	seedDeps := orchestrators.SeedAdminDeps{
		AccountStore: acctStore,
		Now:          time.Now,
		NewID:        uuid.NewString,
	}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedInput, seedDeps); err != nil {
		log.Fatalf("failed to seed admin account: %v", err)
	}

	// Configure email sender
	if cfg.ResendAPIKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom), cfg.EmailFrom, cfg.EmailReplyTo, cfg.NotifyEmail)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), cfg.EmailFrom, cfg.EmailReplyTo, cfg.NotifyEmail)
		if cfg.IsProduction() {
			log.Println("WARNING: SABADO_RESEND_API_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set SABADO_RESEND_API_KEY for real delivery)")
		}
	}

	// Configure dietary summarizer
	if cfg.OpenAIAPIKey != "" {
		web.SetSummarizer(ai.NewOpenAISummarizer(cfg.OpenAIAPIKey, cfg.OpenAIModel))
		log.Println("Dietary summarizer configured (OpenAI)")
	} else {
		web.SetSummarizer(ai.NewNoopSummarizer())
		log.Println("Dietary summarizer configured (noop — set SABADO_OPENAI_API_KEY for real summaries)")
	}

	// Google sign-in is optional; an empty client ID disables the routes
	web.SetGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	mux := web.NewMux(cfg, stores)

	log.Printf("Sábado Total %s starting on %s (env=%s)", version, cfg.Addr, cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
