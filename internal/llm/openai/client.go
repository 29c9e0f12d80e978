package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"lifeway-backend/internal/llm"
	"lifeway-backend/internal/shared/metrics"
	"lifeway-backend/internal/shared/telemetry"
)

const defaultTimeout = 120 * time.Second

// Options configures the completion parameters applied to every request.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	// BaseURL overrides the API endpoint; tests point it at httptest.
	BaseURL string
}

// Client implements llm.Completer using OpenAI Chat Completions.
type Client struct {
	api  *goopenai.Client
	opts Options
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}

	return &Client{api: goopenai.NewClientWithConfig(cfg), opts: opts}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.opts.Model
}

// Complete sends a system+user chat request and returns the first choice.
func (c *Client) Complete(ctx context.Context, prompt llm.Prompt) (llm.Completion, error) {
	req := c.buildRequest(prompt)

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	elapsed := float64(time.Since(start).Milliseconds())
	metrics.ObserveLLMDurationMs(elapsed)
	if err != nil {
		return llm.Completion{}, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return llm.Completion{}, llm.ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return llm.Completion{}, llm.ErrEmptyResponse
	}

	model := resp.Model
	if model == "" {
		model = c.opts.Model
	}
	telemetry.Info("llm.response", map[string]any{
		"model":             model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"duration_ms":       elapsed,
	})
	return llm.Completion{
		Text:             text,
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (c *Client) buildRequest(prompt llm.Prompt) goopenai.ChatCompletionRequest {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(prompt.System) != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: prompt.System})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: prompt.User})

	req := goopenai.ChatCompletionRequest{
		Model:    c.opts.Model,
		Messages: messages,
	}
	// gpt-5 family rejects max_tokens and any non-default temperature.
	if isGPT5(c.opts.Model) {
		req.MaxCompletionTokens = c.opts.MaxTokens
		return req
	}
	req.MaxTokens = c.opts.MaxTokens
	req.Temperature = c.opts.Temperature
	return req
}

func classifyError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: openai http status %d: %s", llm.ErrTransient, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return fmt.Errorf("openai http status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode >= 500 {
		return fmt.Errorf("%w: openai http status %d", llm.ErrTransient, reqErr.HTTPStatusCode)
	}
	return fmt.Errorf("openai request: %w", err)
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Completer = (*Client)(nil)
