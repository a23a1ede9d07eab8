package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sabadototal/internal/adapters/ai"
	"sabadototal/internal/domain/registration"
)

// RegistrationStoreForSummary defines the store interface needed by DietarySummary.
type RegistrationStoreForSummary interface {
	List(ctx context.Context) ([]registration.Registration, error)
}

// DietarySummaryDeps holds dependencies for DietarySummary.
type DietarySummaryDeps struct {
	RegistrationStore RegistrationStoreForSummary
	Summarizer        ai.Summarizer
}

// NoRestrictionsMessage is returned without consulting the model when
// no participant declared a restriction.
const NoRestrictionsMessage = "Nenhuma restrição alimentar foi informada pelos participantes."

// ErrSummaryFailed wraps model failures so the handler can show a
// friendly message.
var ErrSummaryFailed = errors.New("não foi possível gerar o resumo")

// ExecuteDietarySummary collects the declared dietary restrictions and
// asks the model for a kitchen-team summary.
// PRE: Summarizer is configured
// POST: Returns the Markdown summary, or NoRestrictionsMessage when the
// restriction list is empty
func ExecuteDietarySummary(ctx context.Context, deps DietarySummaryDeps) (string, error) {
	regs, err := deps.RegistrationStore.List(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummaryFailed, err)
	}

	var restrictions []string
	for _, r := range regs {
		if r.HasDietaryRestriction != registration.DietarySim {
			continue
		}
		if details := strings.TrimSpace(r.DietaryRestrictionDetails); details != "" {
			restrictions = append(restrictions, details)
		}
	}

	if len(restrictions) == 0 {
		slog.Info("dietary_summary_empty")
		return NoRestrictionsMessage, nil
	}

	summary, err := deps.Summarizer.Summarize(ctx, restrictions)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummaryFailed, err)
	}

	slog.Info("dietary_summary_generated", "restrictions", len(restrictions))
	return summary, nil
}
