package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tvnrapp/relationship-os/internal/config"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

var (
	// ErrNotConfigured means no API key was supplied; callers degrade to
	// placeholder text.
	ErrNotConfigured = errors.New("ai provider not configured")
	// ErrUpstream covers transport failures and non-2xx completion responses.
	ErrUpstream = errors.New("ai provider request failed")
)

// Client calls the OpenAI chat completions endpoint.
type Client struct {
	log     *zap.Logger
	http    *http.Client
	apiKey  string
	baseURL string
	model   string
}

func NewClient(cfg config.Config, log *zap.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.OpenAI.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Client{
		log:     log.Named("providers.ai"),
		http:    &http.Client{Timeout: requestTimeout},
		apiKey:  cfg.OpenAI.APIKey,
		baseURL: baseURL,
		model:   cfg.OpenAI.Model,
	}
}

func (c *Client) Configured() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends a system+user prompt pair and returns the first choice.
func (c *Client) Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("completion request failed", zap.Error(err))
		return "", ErrUpstream
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("completion request rejected", zap.Int("status_code", resp.StatusCode))
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", ErrUpstream
	}
	if len(parsed.Choices) == 0 {
		return "", ErrUpstream
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
