package registration

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength    = 100
	MaxDetailsLength = 500
)

// Workflow status constants.
const (
	StatusConfirmado = "confirmado"
	StatusPendente   = "pendente"
	StatusCancelado  = "cancelado"
)

// Payment status constants.
const (
	PaymentPending = "pending_payment"
	PaymentPaid    = "paid"
	PaymentWaived  = "waived"
)

// Dietary restriction answer constants.
const (
	DietarySim = "sim"
	DietaryNao = "nao"
)

// Age group (turma) constants. AgeGroupAmiguinho is the friend/guest
// option and is exempt from the age-range check.
const (
	AgeGroupMaternal      = "Maternal"
	AgeGroupJardim        = "Jardim"
	AgeGroupPrimarios     = "Primários"
	AgeGroupJuniores      = "Juniores"
	AgeGroupAdolescentesI = "Adolescentes I"
	AgeGroupAdolescentes2 = "Adolescentes II"
	AgeGroupAmiguinho     = "Amiguinho"
)

// AgeGroups lists every valid turma in form display order.
var AgeGroups = []string{
	AgeGroupMaternal,
	AgeGroupJardim,
	AgeGroupPrimarios,
	AgeGroupJuniores,
	AgeGroupAdolescentesI,
	AgeGroupAdolescentes2,
	AgeGroupAmiguinho,
}

// Age eligibility bounds, inclusive.
const (
	MinAge = 2
	MaxAge = 17
)

// Domain errors
var (
	ErrEmptyChildName    = errors.New("child name cannot be empty")
	ErrEmptyGuardianName = errors.New("guardian name cannot be empty")
	ErrInvalidStatus     = errors.New("status must be 'confirmado', 'pendente', or 'cancelado'")
	ErrInvalidPayment    = errors.New("payment status must be 'pending_payment', 'paid', or 'waived'")
	ErrInvalidAgeGroup   = errors.New("age group is not a valid turma")
	ErrInvalidDietary    = errors.New("dietary restriction answer must be 'sim' or 'nao'")
	ErrMissingDetails    = errors.New("dietary restriction details are required when the answer is 'sim'")
	ErrPaymentWaived     = errors.New("payment status is waived and cannot be toggled")
)

// Registration holds one attendee signup record.
type Registration struct {
	ID                        string
	ChildName                 string
	BirthDate                 time.Time
	GuardianName              string
	GuardianWhatsapp          string
	AgeGroup                  string
	HasDietaryRestriction     string
	DietaryRestrictionDetails string
	InfoConsent               bool
	SupervisionConsent        bool
	Status                    string
	PaymentStatus             string
	SubmissionDate            time.Time
}

// Validate checks if the Registration has valid data.
// PRE: Registration struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: Details must be present iff HasDietaryRestriction is "sim"
func (r *Registration) Validate() error {
	if strings.TrimSpace(r.ChildName) == "" {
		return ErrEmptyChildName
	}
	if strings.TrimSpace(r.GuardianName) == "" {
		return ErrEmptyGuardianName
	}
	if r.Status != StatusConfirmado && r.Status != StatusPendente && r.Status != StatusCancelado {
		return ErrInvalidStatus
	}
	if r.PaymentStatus != PaymentPending && r.PaymentStatus != PaymentPaid && r.PaymentStatus != PaymentWaived {
		return ErrInvalidPayment
	}
	if !ValidAgeGroup(r.AgeGroup) {
		return ErrInvalidAgeGroup
	}
	if r.HasDietaryRestriction != DietarySim && r.HasDietaryRestriction != DietaryNao {
		return ErrInvalidDietary
	}
	if r.HasDietaryRestriction == DietarySim && strings.TrimSpace(r.DietaryRestrictionDetails) == "" {
		return ErrMissingDetails
	}
	return nil
}

// ValidAgeGroup reports whether g is one of the fixed turma values.
func ValidAgeGroup(g string) bool {
	for _, ag := range AgeGroups {
		if ag == g {
			return true
		}
	}
	return false
}

// AgeAt computes the display age in whole years at the given instant.
// It deliberately uses the epoch-difference approximation (the elapsed
// duration interpreted as a UTC date, minus 1970) rather than a
// calendar-accurate subtraction, so the dashboard and the validator
// always agree on the same number.
func (r *Registration) AgeAt(now time.Time) int {
	return AgeOf(r.BirthDate, now)
}

// AgeOf is AgeAt for a bare birth date.
func AgeOf(birthDate, now time.Time) int {
	diff := now.Sub(birthDate)
	age := time.Unix(0, diff.Nanoseconds()).UTC().Year() - 1970
	if age < 0 {
		age = -age
	}
	return age
}

// AgeExempt reports whether the record's turma skips the age-range check.
func (r *Registration) AgeExempt() bool {
	return r.AgeGroup == AgeGroupAmiguinho
}

// MarkPaid sets the fee as paid and confirms the registration.
// PRE: PaymentStatus is not waived
// POST: PaymentStatus=paid, Status=confirmado
func (r *Registration) MarkPaid() error {
	if r.PaymentStatus == PaymentWaived {
		return ErrPaymentWaived
	}
	r.PaymentStatus = PaymentPaid
	r.Status = StatusConfirmado
	return nil
}

// MarkUnpaid reverts the fee to pending and the registration to pendente.
// PRE: PaymentStatus is not waived
// POST: PaymentStatus=pending_payment, Status=pendente
func (r *Registration) MarkUnpaid() error {
	if r.PaymentStatus == PaymentWaived {
		return ErrPaymentWaived
	}
	r.PaymentStatus = PaymentPending
	r.Status = StatusPendente
	return nil
}

// RestrictionDisplay returns the details text for listing, or "N/A" when
// the guardian answered "nao". Details entered alongside a "nao" answer
// are disregarded.
func (r *Registration) RestrictionDisplay() string {
	if r.HasDietaryRestriction == DietarySim {
		return r.DietaryRestrictionDetails
	}
	return "N/A"
}
