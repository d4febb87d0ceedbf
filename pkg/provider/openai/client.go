// Package openai implements both capabilities against the OpenAI REST API.
// Setting BaseURL points the same backend at any OpenAI-compatible service
// (Groq, OpenRouter, a local gateway).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/castforge/castforge/pkg/provider"
)

const (
	defaultBaseURL      = "https://api.openai.com/v1"
	defaultModel        = "gpt-4o-mini"
	defaultSpeechModel  = "tts-1"
	defaultVoice        = "alloy"
	defaultChatTimeout  = 120 * time.Second
	defaultSpeakTimeout = 300 * time.Second
)

// Config captures the runtime settings required to talk to the API.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	SpeechModel string
	Voice       string
	ChatTimeout time.Duration
	// SpeakTimeout bounds one synthesis call; speech endpoints are slower
	// than chat endpoints for long sections.
	SpeakTimeout time.Duration
}

type client struct {
	cfg  Config
	http *http.Client
}

// Option customizes the backend.
type Option func(*client)

// WithHTTPClient overrides the default HTTP client (used by tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *client) {
		if h != nil {
			c.http = h
		}
	}
}

func newClient(cfg Config, opts ...Option) *client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = defaultSpeechModel
	}
	if cfg.Voice == "" {
		cfg.Voice = defaultVoice
	}
	if cfg.ChatTimeout <= 0 {
		cfg.ChatTimeout = defaultChatTimeout
	}
	if cfg.SpeakTimeout <= 0 {
		cfg.SpeakTimeout = defaultSpeakTimeout
	}

	c := &client{cfg: cfg, http: &http.Client{Timeout: cfg.SpeakTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) requireKey(backend string) error {
	if c.cfg.APIKey == "" {
		return &provider.ConfigError{Provider: backend, Reason: "API key is not configured"}
	}
	return nil
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// complete issues one chat completion and returns the content plus usage.
func (c *client) complete(ctx context.Context, system, user string, jsonOnly bool) (string, *provider.Usage, error) {
	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
	}
	if jsonOnly {
		payload.ResponseFormat = map[string]string{"type": "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, fmt.Errorf("marshal chat request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ChatTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("chat request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<22))
	if err != nil {
		return "", nil, fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("chat request: http %d: %s", resp.StatusCode, snippet(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", nil, fmt.Errorf("parse chat response: %w", err)
	}
	if parsed.Error != nil {
		return "", nil, fmt.Errorf("chat request: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", nil, fmt.Errorf("chat request: empty completion (finish_reason=%q)", finishReason(parsed))
	}

	var usage *provider.Usage
	if parsed.Usage != nil {
		usage = &provider.Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
			TotalTokens:  parsed.Usage.TotalTokens,
			Provider:     generatorName,
			Model:        c.cfg.Model,
		}
	}
	return parsed.Choices[0].Message.Content, usage, nil
}

func finishReason(r chatResponse) string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].FinishReason
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// decodeModelJSON tolerates models that wrap JSON in Markdown fences.
func decodeModelJSON(content string, out any) error {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return json.Unmarshal([]byte(strings.TrimSpace(trimmed)), out)
}
