package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"fileorg/internal/services"
)

const (
	defaultHTTPTimeout    = 120 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 5
	defaultMaxTokens      = 256
	defaultImageWidth     = 1024
)

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	BaseURL        string
	TextModel      string
	VisionModel    string
	TimeoutSeconds int
	MaxImageWidth  int
	MaxTokens      int
	Temperature    float64
}

// Client wraps the chat completion API of an OpenAI-compatible server.
type Client struct {
	cfg        Config
	api        *openai.Client
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 5).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs an LLM client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			TextModel:      strings.TrimSpace(cfg.TextModel),
			VisionModel:    strings.TrimSpace(cfg.VisionModel),
			TimeoutSeconds: cfg.TimeoutSeconds,
			MaxImageWidth:  cfg.MaxImageWidth,
			MaxTokens:      cfg.MaxTokens,
			Temperature:    cfg.Temperature,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.VisionModel == "" {
		client.cfg.VisionModel = client.cfg.TextModel
	}
	if client.cfg.MaxImageWidth <= 0 {
		client.cfg.MaxImageWidth = defaultImageWidth
	}
	if client.cfg.MaxTokens <= 0 {
		client.cfg.MaxTokens = defaultMaxTokens
	}

	apiCfg := openai.DefaultConfig(client.cfg.APIKey)
	if client.cfg.BaseURL != "" {
		apiCfg.BaseURL = client.cfg.BaseURL
	}
	apiCfg.HTTPClient = client.httpClient
	client.api = openai.NewClientWithConfig(apiCfg)
	return client
}

type emptyContentError struct {
	Op           string
	FinishReason string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("%s: empty content (finish_reason=%q)", e.Op, e.FinishReason)
}

// Complete sends prompt to the text model and returns the reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("llm complete: prompt required")
	}
	if c.cfg.TextModel == "" {
		return "", services.Wrap(services.ErrConfiguration, "llm", "complete", "text model not configured", nil)
	}
	req := c.newRequest(c.cfg.TextModel, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
	return c.completionContentWithRetry(ctx, req, "llm complete")
}

// Describe sends prompt together with the image at imagePath to the vision
// model and returns the reply.
func (c *Client) Describe(ctx context.Context, prompt, imagePath string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("llm describe: prompt required")
	}
	dataURI, err := imageDataURI(imagePath, c.cfg.MaxImageWidth)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "llm", "describe", "prepare image", err)
	}
	req := c.newRequest(c.cfg.VisionModel, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: prompt},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURI,
					Detail: openai.ImageURLDetailAuto,
				},
			},
		},
	})
	return c.completionContentWithRetry(ctx, req, "llm describe")
}

// HealthCheck issues a short prompt to verify the endpoint and text model.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.Complete(ctx, "Reply with the single word OK.")
	if err != nil {
		return fmt.Errorf("llm health: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return errors.New("llm health: unexpected response")
	}
	return nil
}

func (c *Client) newRequest(model string, msg openai.ChatCompletionMessage) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    []openai.ChatCompletionMessage{msg},
		Temperature: float32(c.cfg.Temperature),
		MaxTokens:   c.cfg.MaxTokens,
	}
}

func (c *Client) completionContentWithRetry(ctx context.Context, req openai.ChatCompletionRequest, op string) (string, error) {
	attempts := max(c.retryMaxAttempts, 1)
	for attempt := 1; ; attempt++ {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			content, finishReason := extractCompletionPayload(resp)
			if content != "" {
				return content, nil
			}
			err = &emptyContentError{Op: op, FinishReason: finishReason}
		}

		if ctx.Err() != nil || !retryable(err) {
			return "", classifyError(op, err)
		}
		if attempt >= attempts {
			return "", services.Wrap(services.ErrExternalTool, "llm", op,
				fmt.Sprintf("failed after %d attempts", attempts), err)
		}
		if err := c.sleep(ctx, c.backoffDelay(attempt)); err != nil {
			return "", err
		}
	}
}

func extractCompletionPayload(resp openai.ChatCompletionResponse) (string, string) {
	var finishReason string
	for _, choice := range resp.Choices {
		if finishReason == "" {
			finishReason = string(choice.FinishReason)
		}
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, finishReason
		}
	}
	return "", finishReason
}

func classifyError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if status, ok := statusCode(err); ok && (status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusNotFound) {
		return services.Wrap(services.ErrConfiguration, "llm", op, fmt.Sprintf("http %d", status), err)
	}
	return services.Wrap(services.ErrExternalTool, "llm", op, "", err)
}

func statusCode(err error) (int, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return apiErr.HTTPStatusCode, true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return reqErr.HTTPStatusCode, true
	}
	return 0, false
}

// retryable reports whether another attempt may succeed: rate limits,
// server errors, timeouts and empty replies.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var empty *emptyContentError
	if errors.As(err, &empty) {
		return true
	}
	if status, ok := statusCode(err); ok {
		return status == http.StatusRequestTimeout ||
			status == http.StatusTooManyRequests ||
			status >= http.StatusInternalServerError
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// backoffDelay is the wait after the given 1-based attempt: base, 2*base,
// 4*base and so on, never above the configured maximum.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.retryBaseDelay
	if delay <= 0 {
		return 0
	}
	for i := 1; i < attempt && delay < c.retryMaxDelay; i++ {
		delay *= 2
	}
	if c.retryMaxDelay > 0 && delay > c.retryMaxDelay {
		delay = c.retryMaxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
