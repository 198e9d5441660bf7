// Package openai adapts the OpenAI chat completions API to the dispatcher's Invoker
// interface. It also serves OpenAI-compatible endpoints (vLLM, Ollama, LM Studio,
// gateways) through BaseURL.
package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/cecil-the-coder/ai-contingency/pkg/providers/common"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// DefaultModel is used when the registry names no model.
const DefaultModel = "gpt-4o-mini"

// Config holds configuration for the OpenAI invoker.
type Config struct {
	Key        string
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Invoker calls the chat completions endpoint once per Invoke.
type Invoker struct {
	key    string
	client openai.Client
	model  string
}

// New creates an OpenAI invoker. SDK-level retries are disabled; retrying is the
// dispatcher's job.
func New(cfg Config) *Invoker {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	key := cfg.Key
	if key == "" {
		key = "openai"
	}

	return &Invoker{
		key:    key,
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Model returns the model requests are sent to.
func (p *Invoker) Model() string { return p.model }

// Invoke sends req as a single-turn chat completion.
func (p *Invoker) Invoke(ctx context.Context, req types.Request) (*types.Result, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.Context != "" {
		messages = append(messages, openai.SystemMessage(req.Context))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, p.classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, types.NewMalformedResponseError(p.key, "no choices")
	}

	model := resp.Model
	if model == "" {
		model = p.model
	}
	return &types.Result{
		Content:    resp.Choices[0].Message.Content,
		TokensUsed: int(resp.Usage.TotalTokens),
		Model:      model,
	}, nil
}

func (p *Invoker) classifyError(err error) *types.ProviderError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return common.ClassifyStatus(p.key, apiErr.StatusCode, err.Error()).WithOriginalErr(err)
	}
	return common.ClassifyError(p.key, err)
}
