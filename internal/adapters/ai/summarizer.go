package ai

import "context"

// Summarizer condenses the dietary restriction texts collected from the
// registration forms into a short report for the kitchen team.
type Summarizer interface {
	Summarize(ctx context.Context, restrictions []string) (string, error)
}
