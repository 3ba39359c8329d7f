// Package groq is a minimal client for Groq's OpenAI-compatible chat
// completions endpoint, covering plain text and vision (image_url) messages.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/guttosm/mandipulse/internal/logger"
	"github.com/guttosm/mandipulse/internal/upstream"
)

const (
	serviceName = "groq"

	DefaultAPIURL      = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel       = "llama-3.1-8b-instant"
	DefaultVisionModel = "llama-3.2-11b-vision-preview"

	CredentialEnv = "GROQ_API_KEY"

	maxErrorBytes = 64 << 10
)

// Config is injected at construction.
type Config struct {
	APIKey  string
	APIURL  string
	Timeout time.Duration
}

// Part is one element of a multi-part user message.
type Part struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL points at an image by URL or data: URI.
type ImageURL struct {
	URL string `json:"url"`
}

// Message is a chat message. Content is either a string or []Part.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// TextMessage builds a plain-text message.
func TextMessage(role, text string) Message {
	return Message{Role: role, Content: text}
}

// ImageMessage builds a user message carrying a prompt and one image.
func ImageMessage(text, imageURL string) Message {
	return Message{Role: "user", Content: []Part{
		{Type: "text", Text: text},
		{Type: "image_url", ImageURL: &ImageURL{URL: imageURL}},
	}}
}

// ChatRequest is the completion request body.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content any `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Completer is the contract consumed by the assistant service.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// Client sends chat completions. Safe for concurrent use.
type Client struct {
	apiKey string
	apiURL string
	client *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.client = c }
}

// NewClient builds a client. A missing key is reported by Complete.
func NewClient(cfg Config, opts ...Option) *Client {
	apiURL := strings.TrimSpace(cfg.APIURL)
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &Client{
		apiKey: strings.TrimSpace(cfg.APIKey),
		apiURL: apiURL,
		client: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete returns the trimmed text of the first choice, or "" when the model
// produced nothing usable. Errors follow the upstream taxonomy.
func (c *Client) Complete(ctx context.Context, in ChatRequest) (string, error) {
	if c.apiKey == "" {
		return "", &upstream.MissingCredentialError{Service: serviceName, Key: CredentialEnv}
	}

	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("%s: marshal request: %w", serviceName, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%s: build request: %w", serviceName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", upstream.FromDoError(ctx, serviceName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !upstream.IsSuccess(resp.StatusCode) {
		upErr := upstream.FromResponse(serviceName, resp, maxErrorBytes)
		logger.L().Error().
			Str("service", serviceName).
			Str("model", in.Model).
			Int("status", upErr.Status).
			Str("body", upErr.Body).
			Msg("upstream error")
		return "", upErr
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &upstream.Error{Service: serviceName, Status: resp.StatusCode, Body: upstream.MalformedBody}
	}

	logger.L().Debug().
		Str("service", serviceName).
		Str("model", in.Model).
		Dur("elapsed", time.Since(start)).
		Msg("completion received")

	if len(out.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(contentText(out.Choices[0].Message.Content)), nil
}

// contentText flattens a message content that may be a string or an array
// of text parts.
func contentText(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case []any:
		var b strings.Builder
		for _, p := range c {
			m, ok := p.(map[string]any)
			if !ok {
				continue
			}
			if s, ok := m["text"].(string); ok {
				b.WriteString(s)
			}
		}
		return b.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(c)
	}
}
