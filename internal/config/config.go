package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config carries everything the server reads from the environment.
// All keys are prefixed with SABADO_, e.g. SABADO_ADDR.
type Config struct {
	Addr        string `mapstructure:"ADDR"`
	Environment string `mapstructure:"ENV"`
	DBPath      string `mapstructure:"DB_PATH"`
	StaticDir   string `mapstructure:"STATIC_DIR"`
	CSRFKey     string `mapstructure:"CSRF_KEY"`

	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	ResendAPIKey string `mapstructure:"RESEND_API_KEY"`
	EmailFrom    string `mapstructure:"EMAIL_FROM"`
	EmailReplyTo string `mapstructure:"EMAIL_REPLY_TO"`
	NotifyEmail  string `mapstructure:"NOTIFY_EMAIL"`

	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel  string `mapstructure:"OPENAI_MODEL"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
}

// IsProduction reports whether the server runs with production
// hardening (secure cookies, strict CSRF origins).
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads the configuration from the environment.
// POST: Returns a Config with defaults applied, or an error if the
// environment cannot be decoded
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SABADO")

	v.SetDefault("ADDR", ":8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_PATH", "sabadototal.db")
	v.SetDefault("STATIC_DIR", "static")
	v.SetDefault("EMAIL_FROM", "Sábado Total <inscricoes@sabadototal.org>")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("GOOGLE_REDIRECT_URL", "http://127.0.0.1:8080/auth/google/callback")

	for _, key := range []string{
		"ADDR", "ENV", "DB_PATH", "STATIC_DIR", "CSRF_KEY",
		"ADMIN_EMAIL", "ADMIN_PASSWORD",
		"RESEND_API_KEY", "EMAIL_FROM", "EMAIL_REPLY_TO", "NOTIFY_EMAIL",
		"OPENAI_API_KEY", "OPENAI_MODEL",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REDIRECT_URL",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.IsProduction() && cfg.CSRFKey == "" {
		return nil, fmt.Errorf("SABADO_CSRF_KEY is required in production")
	}
	return &cfg, nil
}
