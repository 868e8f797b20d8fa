package advisory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiAdvisor asks a Gemini model for commentary.
type GeminiAdvisor struct {
	client *genai.Client
	model  string
}

func NewGeminiAdvisor(ctx context.Context, apiKey, model string) (*GeminiAdvisor, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	return &GeminiAdvisor{
		client: cl,
		model:  strings.TrimSpace(model),
	}, nil
}

func (g *GeminiAdvisor) Name() string { return "gemini" }

func (g *GeminiAdvisor) Comment(ctx context.Context, s Summary) ([]string, error) {
	m := g.client.GenerativeModel(g.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0.3),
	}

	resp, err := m.GenerateContent(ctx, genai.Text(BuildPrompt(s)))
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}
	return PlainLines(firstText(resp)), nil
}

func (g *GeminiAdvisor) Close() error {
	return g.client.Close()
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
