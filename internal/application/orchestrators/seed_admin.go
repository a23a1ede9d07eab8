package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"sabadototal/internal/domain/account"
)

// AccountStoreForSeed defines the store interface needed by SeedAdmin.
type AccountStoreForSeed interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// SeedAdminInput carries the bootstrap credentials from configuration.
type SeedAdminInput struct {
	Email    string
	Password string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStoreForSeed
	Now          func() time.Time
	NewID        func() string
}

// ExecuteSeedAdmin ensures the configured admin account exists.
// PRE: none; empty credentials skip seeding
// POST: An admin account exists for the configured email
// INVARIANT: An existing account is never overwritten
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) error {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		slog.Info("admin_seed_skipped", "reason", "no_credentials")
		return nil
	}

	if _, err := deps.AccountStore.GetByEmail(ctx, email); err == nil {
		return nil
	}

	acct := account.Account{
		ID:        deps.NewID(),
		Email:     email,
		Role:      account.RoleAdmin,
		Provider:  account.ProviderPassword,
		CreatedAt: deps.Now(),
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return err
	}
	if err := acct.Validate(); err != nil {
		return err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	total, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	slog.Info("admin_seeded", "email", email, "accounts", total)
	return nil
}
