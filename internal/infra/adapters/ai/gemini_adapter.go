// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"aria-support-chat/internal/domain"
	"aria-support-chat/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*GeminiAdapter)(nil)

// GeminiAdapter implements adapter.AIServiceAdapter using the official genai SDK.
type GeminiAdapter struct {
	apiKey   string
	baseURL  string
	model    string
	sampling adapter.Sampling

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiAdapter(apiKey, baseURL, model string, sampling adapter.Sampling) *GeminiAdapter {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiAdapter{
		apiKey:   strings.TrimSpace(apiKey),
		baseURL:  strings.TrimSpace(baseURL),
		model:    model,
		sampling: sampling,
	}
}

func (g *GeminiAdapter) Provider() string { return "gemini" }
func (g *GeminiAdapter) Model() string    { return g.model }
func (g *GeminiAdapter) Configured() bool { return g.apiKey != "" }

func (g *GeminiAdapter) sdk(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: g.baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	g.client = c
	return c, nil
}

func (g *GeminiAdapter) Chat(ctx context.Context, messages []adapter.Message) (string, error) {
	if !g.Configured() {
		return "", domain.ErrUpstreamUnavailable
	}
	client, err := g.sdk(ctx)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	system, history := splitSystem(messages)
	if len(history) == 0 {
		return "", fmt.Errorf("%w: gemini: no messages", domain.ErrUpstreamError)
	}
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(g.sampling.MaxTokens),
		Temperature:      genai.Ptr(float32(g.sampling.Temperature)),
		PresencePenalty:  genai.Ptr(float32(g.sampling.PresencePenalty)),
		FrequencyPenalty: genai.Ptr(float32(g.sampling.FrequencyPenalty)),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, toGenAIHistory(history), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}

	var sb strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, p := range resp.Candidates[0].Content.Parts {
			if p != nil {
				sb.WriteString(p.Text)
			}
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: gemini: empty candidate", domain.ErrUpstreamError)
	}
	return sb.String(), nil
}

// splitSystem pulls system messages out; Gemini takes them as a config field.
func splitSystem(msgs []adapter.Message) (string, []adapter.Message) {
	var system []string
	rest := make([]adapter.Message, 0, len(msgs))
	for _, m := range msgs {
		if strings.EqualFold(m.Role, "system") {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}

func toGenAIHistory(msgs []adapter.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := string(genai.RoleUser)
		if strings.EqualFold(m.Role, "assistant") {
			role = string(genai.RoleModel)
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}
