package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"sabadototal/internal/domain/account"
)

// GoogleLoginInput carries the verified identity returned by Google.
type GoogleLoginInput struct {
	Email string
}

// GoogleLoginDeps holds dependencies for GoogleLogin.
type GoogleLoginDeps struct {
	AccountStore AccountStoreForLogin
}

// ErrUnknownGoogleAccount is returned when the Google identity has no
// matching organizer account. Accounts are provisioned by seeding, not
// by signing in.
var ErrUnknownGoogleAccount = errors.New("google account is not registered as an organizer")

// ExecuteGoogleLogin resolves a verified Google identity to an existing
// organizer account.
// PRE: input.Email was verified against Google's userinfo endpoint
// POST: Returns account info on success; the account's provider is
// recorded as google
// INVARIANT: Sign-in never creates an account
func ExecuteGoogleLogin(ctx context.Context, input GoogleLoginInput, deps GoogleLoginDeps) (LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return LoginResult{}, ErrUnknownGoogleAccount
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		slog.Info("auth_event", "event", "google_login_failed", "email", email, "reason", "not_found")
		return LoginResult{}, ErrUnknownGoogleAccount
	}

	if acct.Provider != account.ProviderGoogle {
		acct.Provider = account.ProviderGoogle
		_ = deps.AccountStore.Save(ctx, acct)
	}

	slog.Info("auth_event", "event", "google_login_success", "email", email, "role", acct.Role)

	return LoginResult{
		AccountID: acct.ID,
		Email:     acct.Email,
		Role:      acct.Role,
	}, nil
}
