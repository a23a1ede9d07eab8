package ai

import (
	"context"
	"log/slog"
	"strings"
)

// NoopSummarizer is a stand-in summarizer for development and testing.
// It logs the request and returns a canned listing instead of calling
// an external model.
type NoopSummarizer struct{}

// NewNoopSummarizer creates a new NoopSummarizer.
func NewNoopSummarizer() *NoopSummarizer {
	return &NoopSummarizer{}
}

// Summarize logs the request and echoes the restrictions back.
// PRE: restrictions is non-empty
// POST: Returns a deterministic listing without external calls
func (s *NoopSummarizer) Summarize(_ context.Context, restrictions []string) (string, error) {
	slog.Info("noop_summary", "count", len(restrictions))
	var b strings.Builder
	b.WriteString("**Resumo indisponível no ambiente de desenvolvimento.** Restrições informadas:\n\n")
	for _, r := range restrictions {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteString("\n")
	}
	return b.String(), nil
}
