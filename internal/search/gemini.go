package search

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiConfig configures the Gemini-backed query oracle. The config is
// passed explicitly at construction so tests can swap the oracle out.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiClient implements QueryOracle against the Gemini generateContent
// REST API.
type GeminiClient struct {
	client *resty.Client
	model  string
	apiKey string
	logger *zap.Logger
}

// NewGeminiClient returns a client, or nil when no API key is configured so
// the parser falls straight through to the deterministic fallback.
func NewGeminiClient(cfg GeminiConfig, logger *zap.Logger) *GeminiClient {
	if cfg.APIKey == "" {
		return nil
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &GeminiClient{
		client: client,
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Complete sends the prompt and returns the first candidate's text.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	var out geminiResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(geminiRequest{
			Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		}).
		SetResult(&out).
		Post(fmt.Sprintf("/models/%s:generateContent", c.model))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp.IsError() {
		c.logger.Debug("gemini non-2xx response",
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("body", resp.Body()))
		return "", fmt.Errorf("gemini request failed with status %d", resp.StatusCode())
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response contained no candidates")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
