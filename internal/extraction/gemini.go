// Package extraction turns cleaned statement batches into structured
// transactions by prompting a generative model, with a failure taxonomy
// and retry policy tuned to how the Gemini API actually fails.
package extraction

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Generator is the minimal surface of the model client: one prompt in,
// raw text out. The pipeline depends on this interface so tests can
// substitute a fake without network access.
type Generator interface {
	GenerateText(ctx context.Context, system, user string) (string, error)
}

// GeminiGenerator is the Gemini-backed Generator.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiGenerator creates a generator bound to one model. apiKey
// must be non-empty; the caller surfaces a missing key as a
// KindCredentialMissing failure before ever constructing one.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, temperature float32) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model, temperature: temperature}, nil
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, system, user string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: user}},
		},
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Temperature: genai.Ptr(g.temperature),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// scrubModelOutput strips Markdown fences the model sometimes adds
// despite instructions, leaving the bare row text.
func scrubModelOutput(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
