// Package anthropic adapts the Anthropic Messages API to the dispatcher's Invoker
// interface.
package anthropic

import (
	"context"
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/cecil-the-coder/ai-contingency/pkg/providers/common"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

const (
	// DefaultModel is used when the registry names no model.
	DefaultModel = "claude-3-5-haiku-latest"

	// DefaultMaxTokens is sent when the request leaves MaxTokens unset; the API requires one.
	DefaultMaxTokens = 1024
)

// Config holds configuration for the Anthropic invoker.
type Config struct {
	Key        string
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Invoker calls the messages endpoint once per Invoke.
type Invoker struct {
	key    string
	client anthropic.Client
	model  string
}

// New creates an Anthropic invoker with SDK retries disabled.
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
		key = "anthropic"
	}

	return &Invoker{
		key:    key,
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Model returns the model requests are sent to.
func (p *Invoker) Model() string { return p.model }

// Invoke sends req as a single user message. Request.Context becomes the system prompt.
func (p *Invoker) Invoke(ctx context.Context, req types.Request) (*types.Result, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Context != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Context}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, p.classifyError(err)
	}

	var content string
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += text.Text
		}
	}

	model := string(resp.Model)
	if model == "" {
		model = p.model
	}
	return &types.Result{
		Content:    content,
		TokensUsed: int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		Model:      model,
	}, nil
}

func (p *Invoker) classifyError(err error) *types.ProviderError {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		// 529 is Anthropic's "overloaded" status.
		return common.ClassifyStatus(p.key, apiErr.StatusCode, err.Error()).WithOriginalErr(err)
	}
	return common.ClassifyError(p.key, err)
}
