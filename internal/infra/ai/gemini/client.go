package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/bryanwahyu/finsight/internal/domain/ai"
)

// Client wraps the Gemini API. The underlying genai client is created once.
type Client struct {
	genai *genai.Client
	Model string
}

// Options tweak the transport; zero values keep the SDK defaults.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(ctx context.Context, apiKey, model string, opt Options) (*Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opt.HTTPClient,
	}
	if opt.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opt.BaseURL}
	}
	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Client{genai: c, Model: model}, nil
}

var _ ai.Completer = (*Client)(nil)

func (c *Client) Complete(ctx context.Context, in ai.Request) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(in.Temperature)),
	}
	if in.MaxTokens > 0 {
		config.MaxOutputTokens = int32(in.MaxTokens)
	}
	if in.JSON {
		config.ResponseMIMEType = "application/json"
	}

	result, err := c.genai.Models.GenerateContent(ctx, c.Model, genai.Text(in.Prompt), config)
	if err != nil {
		if quota(err) {
			return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", ai.ErrEmptyCompletion
	}
	return text, nil
}

func quota(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "Error 429")
}
