// Package llm is the model transport layer. It exposes a narrow Client
// port that every agent phase and the context summarizer call, and a
// gollm-backed implementation of it.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/teilomillet/gollm"
)

// Client sends one prompt to the model and returns its raw text response.
// An empty response is an error; callers treat it as fatal for the active
// phase and never retry it.
type Client interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GollmClient implements Client on top of a gollm.LLM instance.
type GollmClient struct {
	llm    gollm.LLM
	policy RetryPolicy
}

// Option configures a GollmClient.
type Option func(*clientConfig)

type clientConfig struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	policy      RetryPolicy
	extraOpts   []gollm.ConfigOption
}

// WithAPIKey sets the API key. If empty, gollm reads it from the
// provider's environment variable.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithMaxTokens sets the response token cap.
func WithMaxTokens(n int) Option {
	return func(c *clientConfig) { c.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *clientConfig) { c.temperature = t }
}

// WithRetryPolicy overrides the default transport retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *clientConfig) { c.policy = p }
}

// WithGollmOptions appends extra gollm configuration options.
func WithGollmOptions(opts ...gollm.ConfigOption) Option {
	return func(c *clientConfig) { c.extraOpts = append(c.extraOpts, opts...) }
}

// NewGollmClient creates a client for the given provider ("openai",
// "anthropic", "ollama", ...).
func NewGollmClient(provider string, opts ...Option) (*GollmClient, error) {
	cfg := &clientConfig{
		maxTokens:   4096,
		temperature: 0.7,
		policy:      DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	model := cfg.model
	if model == "" {
		switch provider {
		case "anthropic":
			model = "claude-sonnet-4-5"
		case "ollama":
			model = "llama3"
		default:
			model = "gpt-4o-mini"
		}
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetModel(model),
		gollm.SetMaxTokens(cfg.maxTokens),
		gollm.SetTemperature(cfg.temperature),
		gollm.SetMaxRetries(0), // retries handled by our own policy
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if cfg.apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(cfg.apiKey))
	}
	gollmOpts = append(gollmOpts, cfg.extraOpts...)

	instance, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gollm LLM for provider %s: %w", provider, err)
	}

	return &GollmClient{llm: instance, policy: cfg.policy}, nil
}

// NewGollmClientFromLLM wraps an existing gollm.LLM instance.
func NewGollmClientFromLLM(instance gollm.LLM) *GollmClient {
	return &GollmClient{llm: instance, policy: DefaultRetryPolicy()}
}

// Generate sends a blocking request and returns the model's text. Transient
// provider errors are retried per the client's policy; an empty response is
// returned as an EmptyResponseError.
func (c *GollmClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	promptOpts := []gollm.PromptOption{}
	if systemPrompt != "" {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(strings.TrimSpace(systemPrompt), gollm.CacheTypeEphemeral))
	}
	prompt := gollm.NewPrompt(strings.TrimSpace(userPrompt), promptOpts...)

	text, err := Retry(ctx, c.policy, func(ctx context.Context) (string, error) {
		out, genErr := c.llm.Generate(ctx, prompt)
		if genErr != nil {
			return "", classifyError(genErr)
		}
		return out, nil
	})
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", &EmptyResponseError{TransportError{Message: "model returned an empty response"}}
	}
	return text, nil
}
