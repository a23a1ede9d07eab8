package orchestrators

import (
	"context"
	"errors"
	"testing"

	"sabadototal/internal/domain/registration"
)

// mockSummarizer records summarize calls.
type mockSummarizer struct {
	got    []string
	result string
	err    error
	calls  int
}

func (m *mockSummarizer) Summarize(_ context.Context, restrictions []string) (string, error) {
	m.calls++
	m.got = restrictions
	if m.err != nil {
		return "", m.err
	}
	return m.result, nil
}

// TestExecuteDietarySummary tests restriction collection and summarization.
func TestExecuteDietarySummary(t *testing.T) {
	store := newMockRegistrationStore()
	store.byID["r1"] = registration.Registration{
		ID:                        "r1",
		HasDietaryRestriction:     registration.DietarySim,
		DietaryRestrictionDetails: "Alergia a amendoim",
	}
	store.byID["r2"] = registration.Registration{
		ID:                    "r2",
		HasDietaryRestriction: registration.DietaryNao,
	}
	store.byID["r3"] = registration.Registration{
		ID:                        "r3",
		HasDietaryRestriction:     registration.DietarySim,
		DietaryRestrictionDetails: "   ",
	}

	sum := &mockSummarizer{result: "## Resumo\n\n- Alergias: amendoim"}
	deps := DietarySummaryDeps{RegistrationStore: store, Summarizer: sum}

	got, err := ExecuteDietarySummary(context.Background(), deps)
	if err != nil {
		t.Fatalf("ExecuteDietarySummary() error: %v", err)
	}
	if got != sum.result {
		t.Errorf("summary = %q", got)
	}
	if len(sum.got) != 1 || sum.got[0] != "Alergia a amendoim" {
		t.Errorf("summarizer received %v, want only the non-blank sim details", sum.got)
	}
}

// TestExecuteDietarySummary_Empty tests the fixed message shortcut.
func TestExecuteDietarySummary_Empty(t *testing.T) {
	sum := &mockSummarizer{}
	deps := DietarySummaryDeps{RegistrationStore: newMockRegistrationStore(), Summarizer: sum}

	got, err := ExecuteDietarySummary(context.Background(), deps)
	if err != nil {
		t.Fatalf("ExecuteDietarySummary() error: %v", err)
	}
	if got != NoRestrictionsMessage {
		t.Errorf("summary = %q, want NoRestrictionsMessage", got)
	}
	if sum.calls != 0 {
		t.Error("summarizer was called for an empty restriction list")
	}
}

// TestExecuteDietarySummary_ModelFailure tests the wrapped failure.
func TestExecuteDietarySummary_ModelFailure(t *testing.T) {
	store := newMockRegistrationStore()
	store.byID["r1"] = registration.Registration{
		ID:                        "r1",
		HasDietaryRestriction:     registration.DietarySim,
		DietaryRestrictionDetails: "Sem lactose",
	}
	sum := &mockSummarizer{err: errors.New("model timeout")}
	deps := DietarySummaryDeps{RegistrationStore: store, Summarizer: sum}

	if _, err := ExecuteDietarySummary(context.Background(), deps); !errors.Is(err, ErrSummaryFailed) {
		t.Errorf("error = %v, want ErrSummaryFailed", err)
	}
}
