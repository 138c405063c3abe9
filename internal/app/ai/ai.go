/*
Package ai talks to an OpenAI-compatible chat completions endpoint for the
in-app assistant. The provider is optional: when no API key is configured the
service stays nil and callers surface an unavailable error.
*/
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pairchat/internal/pkg/logx"
)

const (
	requestTimeout = 30 * time.Second

	// maxPromptBytes bounds user input forwarded upstream.
	maxPromptBytes = 4000

	systemPrompt = "You are a friendly assistant inside a chat application. Keep replies short and conversational."
)

// Config holds the upstream endpoint settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Provider sends prompts to the configured completion endpoint.
type Provider struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
}

// NewProvider returns a Provider, or nil when no API key is configured.
func NewProvider(cfg Config) *Provider {
	if cfg.APIKey == "" {
		return nil
	}

	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: requestTimeout},
		logger: logx.Logger().With().Str("component", "AiProvider").Logger(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends the prompt upstream and returns the assistant's reply text.
func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("empty prompt")
	}
	if len(prompt) > maxPromptBytes {
		prompt = prompt[:maxPromptBytes]
	}

	body, err := json.Marshal(completionRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(p.cfg.BaseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Error().Err(err).Msg("Completion request failed")
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		p.logger.Error().Err(err).Int("status", resp.StatusCode).Msg("Completion response not parseable")
		return "", fmt.Errorf("unexpected completion response (status %d)", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "upstream error"
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		p.logger.Error().Int("status", resp.StatusCode).Str("upstream_error", msg).Msg("Completion rejected")
		return "", fmt.Errorf("completion failed (status %d): %s", resp.StatusCode, msg)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
