package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"sabadototal/internal/adapters/email"
	"sabadototal/internal/domain/registration"
)

// RegistrationStoreForRegister defines the store interface needed by RegisterChild.
type RegistrationStoreForRegister interface {
	Save(ctx context.Context, r registration.Registration) error
	CountByChildName(ctx context.Context, childName string) (int, error)
}

// RegisterChildInput carries the raw form values.
type RegisterChildInput struct {
	Form registration.Input
}

// RegisterChildDeps holds dependencies for RegisterChild.
type RegisterChildDeps struct {
	RegistrationStore RegistrationStoreForRegister
	Schema            *registration.Schema
	EmailSender       email.Sender
	NotifyTo          string
	Now               func() time.Time
	NewID             func() string
}

var (
	// ErrDuplicateChild is returned when a registration with the same
	// child name already exists.
	ErrDuplicateChild = errors.New("esta criança já foi inscrita anteriormente")

	// ErrStorageReadOnly flags a misconfigured deployment where the
	// database file cannot be written.
	ErrStorageReadOnly = errors.New("storage is read-only; check database file permissions")
)

// ExecuteRegisterChild coordinates a new event registration.
// PRE: input carries the raw form values
// POST: Registration saved with Status=pendente and a fresh ID;
// organizers are notified best-effort
// INVARIANT: No partial registration is ever persisted
func ExecuteRegisterChild(ctx context.Context, input RegisterChildInput, deps RegisterChildDeps) (string, error) {
	reg, fieldErrs := deps.Schema.ParseAndValidate(input.Form)
	if fieldErrs != nil {
		return "", fieldErrs
	}

	reg.ID = deps.NewID()
	reg.Status = registration.StatusPendente
	reg.PaymentStatus = registration.PaymentPending
	reg.SubmissionDate = deps.Now()

	if err := reg.Validate(); err != nil {
		return "", err
	}

	// Duplicate pre-check. Not transactional; a concurrent submit of the
	// same name can still slip through, which the organizers resolve by
	// hand.
	count, err := deps.RegistrationStore.CountByChildName(ctx, reg.ChildName)
	if err != nil {
		return "", classifyStorageErr(err)
	}
	if count > 0 {
		slog.Info("registration_rejected", "reason", "duplicate_child", "child", reg.ChildName)
		return "", ErrDuplicateChild
	}

	if err := deps.RegistrationStore.Save(ctx, reg); err != nil {
		return "", classifyStorageErr(err)
	}

	slog.Info("registration_created", "id", reg.ID, "age_group", reg.AgeGroup)

	notifyOrganizers(ctx, deps, reg)

	return reg.ID, nil
}

// classifyStorageErr surfaces a clearer diagnostic when SQLite rejects
// writes because the file or its directory is not writable.
func classifyStorageErr(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "readonly") || strings.Contains(msg, "read-only") {
		return fmt.Errorf("%w: %v", ErrStorageReadOnly, err)
	}
	return err
}

// notifyOrganizers sends a best-effort heads-up email. Failures are
// logged and never surfaced to the guardian.
func notifyOrganizers(ctx context.Context, deps RegisterChildDeps, reg registration.Registration) {
	if deps.EmailSender == nil || deps.NotifyTo == "" {
		return
	}
	html := fmt.Sprintf(
		"<p>Nova inscrição recebida.</p><ul><li><strong>Criança:</strong> %s</li><li><strong>Turma:</strong> %s</li><li><strong>Responsável:</strong> %s (%s)</li></ul>",
		html.EscapeString(reg.ChildName), html.EscapeString(reg.AgeGroup),
		html.EscapeString(reg.GuardianName), html.EscapeString(reg.GuardianWhatsapp),
	)
	_, err := deps.EmailSender.Send(ctx, email.SendRequest{
		To:      []string{deps.NotifyTo},
		Subject: "Nova inscrição: " + reg.ChildName,
		HTML:    html,
	})
	if err != nil {
		slog.Error("registration_notify_failed", "error", err, "id", reg.ID)
	}
}
