package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const systemPrompt = "Você é um assistente da equipe organizadora de um evento infantil. " +
	"Receberá uma lista de restrições alimentares informadas pelos responsáveis na inscrição. " +
	"Escreva um resumo curto em português destacando pontos em comum, alergias graves que " +
	"exigem atenção e recomendações práticas para o preparo das refeições. Use Markdown."

// OpenAISummarizer produces dietary summaries via the OpenAI chat API.
type OpenAISummarizer struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAISummarizer creates a summarizer backed by the given model.
// PRE: apiKey is a valid OpenAI API key; model is non-empty
// POST: Returns a ready-to-use summarizer
func NewOpenAISummarizer(apiKey, model string) *OpenAISummarizer {
	return &OpenAISummarizer{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModel(model),
	}
}

// Summarize sends the restriction list to the model and returns its summary.
// PRE: restrictions is non-empty; blanks were filtered by the caller
// POST: Returns the Markdown summary text
func (s *OpenAISummarizer) Summarize(ctx context.Context, restrictions []string) (string, error) {
	var b strings.Builder
	b.WriteString("Restrições alimentares informadas:\n")
	for _, r := range restrictions {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteString("\n")
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(b.String()),
		},
	})
	if err != nil {
		slog.Error("openai_summary_failed", "error", err, "count", len(restrictions))
		return "", fmt.Errorf("openai summary failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai summary failed: empty response")
	}

	slog.Info("openai_summary_generated", "count", len(restrictions))
	return resp.Choices[0].Message.Content, nil
}
