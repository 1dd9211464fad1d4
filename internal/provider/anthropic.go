package provider

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/chain-tools/chain"
)

// DefaultModel drives the agent itself. Prompt tools default to
// chain.DefaultModel.
const DefaultModel = anthropic.ModelClaude3_7SonnetLatest

// DefaultMaxTokens caps a single prompt-tool completion.
const DefaultMaxTokens = 1024

// NewAnthropicClient returns a client for the Messages API. An empty apiKey
// leaves the SDK to read ANTHROPIC_API_KEY; an empty baseURL keeps the SDK
// default.
func NewAnthropicClient(apiKey, baseURL string, opts ...option.RequestOption) *anthropic.Client {
	var o []option.RequestOption
	if apiKey != "" {
		o = append(o, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		o = append(o, option.WithBaseURL(baseURL))
	}
	c := anthropic.NewClient(append(o, opts...)...)
	return &c
}

var _ chain.Completer = (*Completer)(nil)

// Completer sends one user message per request and returns the concatenated
// text blocks of the reply. Requests are never retried.
type Completer struct {
	client    *anthropic.Client
	maxTokens int64
}

func NewCompleter(client *anthropic.Client, maxTokens int) *Completer {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Completer{client: client, maxTokens: int64(maxTokens)}
}

func (c *Completer) Complete(ctx context.Context, req chain.Request) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}, option.WithMaxRetries(0))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	return sb.String(), nil
}
