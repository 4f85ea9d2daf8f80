// Package ai wraps the Anthropic Messages API for key validation and
// repository summaries.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/Meet0105/repoza-sub001/internal/core/config"
	"github.com/Meet0105/repoza-sub001/internal/core/github"
)

// ErrMissingKey is returned when no API key is configured.
var ErrMissingKey = errors.New("ANTHROPIC_API_KEY is not set")

const (
	validatePrompt    = "Reply with OK"
	validateMaxTokens = 16
	readmeExcerpt     = 6000
)

// Result is the outcome of a key validation. It is always returned, never an
// error, so callers can render it directly.
type Result struct {
	Valid   bool          `json:"valid"`
	Model   string        `json:"model"`
	Detail  string        `json:"detail"`
	Latency time.Duration `json:"latency"`
}

// Client issues requests against the Messages API.
type Client struct {
	cfg    config.AIConfig
	client anthropic.Client
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	requestOpts []option.RequestOption
	logger      zerolog.Logger
}

// WithHTTPClient routes SDK traffic through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.requestOpts = append(o.requestOpts, option.WithHTTPClient(hc)) }
}

// WithMaxRetries overrides the SDK retry count.
func WithMaxRetries(n int) Option {
	return func(o *clientOptions) { o.requestOpts = append(o.requestOpts, option.WithMaxRetries(n)) }
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// New creates a client from the ai section of the config.
func New(cfg config.AIConfig, opts ...Option) *Client {
	o := clientOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, o.requestOpts...)

	return &Client{
		cfg:    cfg,
		client: anthropic.NewClient(reqOpts...),
		logger: o.logger,
	}
}

// Validate sends a minimal prompt to confirm the key and model work. Any
// successful response counts as valid; the content is not inspected.
func (c *Client) Validate(ctx context.Context) Result {
	res := Result{Model: c.cfg.Model}
	if c.cfg.APIKey == "" {
		res.Detail = ErrMissingKey.Error()
		return res
	}

	start := time.Now()
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: validateMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(validatePrompt)),
		},
	})
	res.Latency = time.Since(start)

	if err != nil {
		res.Detail = describeError(err)
		c.logger.Warn().Err(err).Str("model", c.cfg.Model).Msg("ai validation failed")
		return res
	}

	res.Valid = true
	res.Model = string(msg.Model)
	res.Detail = fmt.Sprintf("model responded in %s", res.Latency.Round(time.Millisecond))
	return res
}

// Summarize asks the model for a short overview of an analyzed repository.
func (c *Client) Summarize(ctx context.Context, a github.Analysis) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrMissingKey
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: c.cfg.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: "You summarize GitHub repositories for developers evaluating them. Answer in concise markdown: one paragraph, then up to five bullet points covering purpose, stack and maturity."},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(summaryPrompt(a))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarize %s: %s", a.Ref, describeError(err))
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("summarize %s: empty response", a.Ref)
	}
	return out, nil
}

func summaryPrompt(a github.Analysis) string {
	r := a.Repository
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", r.FullName)
	if r.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", r.Description)
	}
	if r.Language != "" {
		fmt.Fprintf(&b, "Primary language: %s\n", r.Language)
	}
	fmt.Fprintf(&b, "Stars: %d, forks: %d, open issues: %d\n", r.Stars, r.Forks, r.OpenIssues)
	if len(r.Topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(r.Topics, ", "))
	}
	if a.Tree != nil {
		fmt.Fprintf(&b, "Files in tree: %d\n", len(a.Tree.Entries))
	}
	if a.Readme != nil {
		content := a.Readme.Content
		if len(content) > readmeExcerpt {
			content = content[:readmeExcerpt]
		}
		fmt.Fprintf(&b, "\nREADME excerpt:\n%s\n", content)
	}
	return b.String()
}

// describeError turns SDK errors into a short human detail string.
func describeError(err error) string {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return "API key rejected (401)"
		case http.StatusForbidden:
			return "API key lacks permission (403)"
		case http.StatusNotFound:
			return "model not found (404)"
		case http.StatusTooManyRequests:
			return "rate limited (429)"
		default:
			return fmt.Sprintf("API error (%d)", apiErr.StatusCode)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return err.Error()
}
