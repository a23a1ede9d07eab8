package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"sabadototal/internal/domain/registration"
)

// RegistrationStoreForPayment defines the store interface needed by SetPaymentStatus.
type RegistrationStoreForPayment interface {
	GetByID(ctx context.Context, id string) (registration.Registration, error)
	Save(ctx context.Context, r registration.Registration) error
}

// SetPaymentStatusInput carries input for the payment toggle.
type SetPaymentStatusInput struct {
	RegistrationID string
	Paid           bool
}

// SetPaymentStatusDeps holds dependencies for SetPaymentStatus.
type SetPaymentStatusDeps struct {
	RegistrationStore RegistrationStoreForPayment
}

// ErrRegistrationNotFound is returned when the registration id is unknown.
var ErrRegistrationNotFound = errors.New("registration not found")

// ExecuteSetPaymentStatus flips a registration between paid and pending
// payment, moving the workflow status with it.
// PRE: RegistrationID is non-empty
// POST: paid=true sets Status=confirmado; paid=false sets Status=pendente
// INVARIANT: Waived registrations are never mutated
func ExecuteSetPaymentStatus(ctx context.Context, input SetPaymentStatusInput, deps SetPaymentStatusDeps) (registration.Registration, error) {
	reg, err := deps.RegistrationStore.GetByID(ctx, input.RegistrationID)
	if err != nil {
		return registration.Registration{}, ErrRegistrationNotFound
	}

	if input.Paid {
		err = reg.MarkPaid()
	} else {
		err = reg.MarkUnpaid()
	}
	if err != nil {
		return registration.Registration{}, err
	}

	if err := deps.RegistrationStore.Save(ctx, reg); err != nil {
		return registration.Registration{}, err
	}

	slog.Info("payment_status_updated", "id", reg.ID, "payment_status", reg.PaymentStatus, "status", reg.Status)
	return reg, nil
}
