package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"aria-support-chat/internal/domain"
	"aria-support-chat/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var (
	_ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)
	_ adapter.TokenCounter     = (*OpenAIAdapter)(nil)
)

// OpenAIAdapter implements adapter.AIServiceAdapter using the Chat Completions API.
// The SDK client is built on first use, so a missing key only surfaces per call.
type OpenAIAdapter struct {
	apiKey   string
	base     string // empty: SDK default (https://api.openai.com/v1)
	model    string
	sampling adapter.Sampling

	clientOnce sync.Once
	client     openai.Client

	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
}

func NewOpenAIAdapter(apiKey, model, base string, sampling adapter.Sampling) *OpenAIAdapter {
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	return &OpenAIAdapter{
		apiKey:   strings.TrimSpace(apiKey),
		base:     strings.TrimSpace(base),
		model:    model,
		sampling: sampling,
	}
}

func (o *OpenAIAdapter) Provider() string { return "openai" }
func (o *OpenAIAdapter) Model() string    { return o.model }
func (o *OpenAIAdapter) Configured() bool { return o.apiKey != "" }

func (o *OpenAIAdapter) sdk() *openai.Client {
	o.clientOnce.Do(func() {
		opts := []option.RequestOption{
			option.WithAPIKey(o.apiKey),
			// Retrying is the user's decision, not ours.
			option.WithMaxRetries(0),
		}
		if o.base != "" {
			opts = append(opts, option.WithBaseURL(o.base))
		}
		o.client = openai.NewClient(opts...)
	})
	return &o.client
}

func (o *OpenAIAdapter) Chat(ctx context.Context, messages []adapter.Message) (string, error) {
	if !o.Configured() {
		return "", domain.ErrUpstreamUnavailable
	}

	params := openai.ChatCompletionNewParams{
		Model:            openai.ChatModel(o.model),
		Messages:         toOpenAIMessages(messages),
		MaxTokens:        openai.Int(int64(o.sampling.MaxTokens)),
		Temperature:      openai.Float(o.sampling.Temperature),
		PresencePenalty:  openai.Float(o.sampling.PresencePenalty),
		FrequencyPenalty: openai.Float(o.sampling.FrequencyPenalty),
	}

	completion, err := o.sdk().Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: openai http %d", domain.ErrUpstreamError, apiErr.StatusCode)
		}
		return "", fmt.Errorf("openai request: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: no choice content", domain.ErrUpstreamError)
	}
	return completion.Choices[0].Message.Content, nil
}

// CountTokens estimates prompt tokens the way the Chat Completions API
// bills them: content tokens plus a small per-message overhead.
func (o *OpenAIAdapter) CountTokens(messages []adapter.Message) (int, error) {
	o.encOnce.Do(func() {
		o.enc, o.encErr = tiktoken.EncodingForModel(o.model)
		if o.encErr != nil {
			o.enc, o.encErr = tiktoken.GetEncoding("cl100k_base")
		}
	})
	if o.encErr != nil {
		return 0, o.encErr
	}
	total := 3
	for _, m := range messages {
		total += 4 + len(o.enc.Encode(m.Content, nil, nil))
	}
	return total, nil
}

func toOpenAIMessages(msgs []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
