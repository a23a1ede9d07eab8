package projections

import (
	"context"
	"strings"
	"time"

	"sabadototal/internal/domain/registration"
)

// RegistrationStore defines the store interface needed by dashboard queries.
type RegistrationStore interface {
	List(ctx context.Context) ([]registration.Registration, error)
}

// GetDashboardQuery carries query parameters.
type GetDashboardQuery struct {
	Search string
	Now    time.Time
}

// DashboardRow is one registration as the admin table shows it.
type DashboardRow struct {
	ID               string
	ChildName        string
	BirthDate        string
	Age              int
	GuardianName     string
	GuardianWhatsapp string
	AgeGroup         string
	Restriction      string
	Status           string
	PaymentStatus    string
	Paid             bool
	PaymentLocked    bool
	SubmissionDate   time.Time
}

// GetDashboardResult carries the query result.
type GetDashboardResult struct {
	Rows             []DashboardRow
	Total            int
	RestrictionCount int
}

// GetDashboardDeps holds dependencies for GetDashboard.
type GetDashboardDeps struct {
	RegistrationStore RegistrationStore
}

// QueryGetDashboard builds the admin table rows, optionally filtered by
// a case-insensitive search over child and guardian names.
// PRE: query.Now is the instant used for age calculation
// POST: Rows keep the store's newest-first order; Total and
// RestrictionCount describe the filtered set
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (GetDashboardResult, error) {
	regs, err := deps.RegistrationStore.List(ctx)
	if err != nil {
		return GetDashboardResult{}, err
	}

	search := strings.ToLower(strings.TrimSpace(query.Search))

	result := GetDashboardResult{}
	for _, r := range regs {
		if search != "" &&
			!strings.Contains(strings.ToLower(r.ChildName), search) &&
			!strings.Contains(strings.ToLower(r.GuardianName), search) {
			continue
		}

		row := DashboardRow{
			ID:               r.ID,
			ChildName:        r.ChildName,
			BirthDate:        r.BirthDate.Format("02/01/2006"),
			Age:              r.AgeAt(query.Now),
			GuardianName:     r.GuardianName,
			GuardianWhatsapp: r.GuardianWhatsapp,
			AgeGroup:         r.AgeGroup,
			Restriction:      r.RestrictionDisplay(),
			Status:           r.Status,
			PaymentStatus:    r.PaymentStatus,
			Paid:             r.PaymentStatus == registration.PaymentPaid,
			PaymentLocked:    r.PaymentStatus == registration.PaymentWaived,
			SubmissionDate:   r.SubmissionDate,
		}

		result.Rows = append(result.Rows, row)
		result.Total++
		if r.HasDietaryRestriction == registration.DietarySim {
			result.RestrictionCount++
		}
	}

	return result, nil
}
