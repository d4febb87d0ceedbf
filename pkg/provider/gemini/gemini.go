// Package gemini implements the generator capability against the Google
// Gemini REST API (generateContent).
package gemini

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
	name           = "gemini"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 120 * time.Second
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Generator produces outlines and scripts through generateContent calls.
type Generator struct {
	cfg  Config
	http *http.Client
}

var _ provider.Generator = (*Generator)(nil)

type Option func(*Generator)

func WithHTTPClient(h *http.Client) Option {
	return func(g *Generator) {
		if h != nil {
			g.http = h
		}
	}
}

func NewGenerator(cfg Config, opts ...Option) *Generator {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	g := &Generator{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Name() string { return name }

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *Generator) GenerateOutline(ctx context.Context, req provider.OutlineRequest) (*provider.OutlineResult, error) {
	if g.cfg.APIKey == "" {
		return nil, &provider.ConfigError{Provider: name, Reason: "API key is not configured"}
	}

	input := req.Input
	prompt := fmt.Sprintf(`Plan a podcast episode. Respond with JSON only, shaped as
{"title": string, "sections": [{"heading": string, "bullets": [string]}]}.
Plan 3 to 6 sections with short headings.

Topic: %s
Language: %s
Tone: %s
Style: %s
Target audience: %s
Show format: %s
Target duration: %d minutes`,
		input.Topic, input.Language, input.Tone, input.ContentType,
		input.TargetAudience, input.Format, input.DurationMinutes)

	text, usage, err := g.generate(ctx, prompt, true)
	if err != nil {
		return nil, fmt.Errorf("generate outline: %w", err)
	}

	var outline provider.Outline
	if err := json.Unmarshal([]byte(stripFences(text)), &outline); err != nil {
		return nil, fmt.Errorf("generate outline: parse payload: %w", err)
	}
	if outline.Title == "" || len(outline.Sections) == 0 {
		return nil, fmt.Errorf("generate outline: model returned an empty outline")
	}
	return &provider.OutlineResult{Outline: outline, Usage: usage}, nil
}

func (g *Generator) GenerateScript(ctx context.Context, req provider.ScriptRequest) (*provider.ScriptResult, error) {
	if g.cfg.APIKey == "" {
		return nil, &provider.ConfigError{Provider: name, Reason: "API key is not configured"}
	}

	outlineJSON, err := json.Marshal(req.Outline)
	if err != nil {
		return nil, fmt.Errorf("generate script: marshal outline: %w", err)
	}

	input := req.Input
	prompt := fmt.Sprintf(`Write a full podcast episode script in Markdown for this outline.
Use one level-2 heading (##) per outline section with the spoken text
below it. No stage directions or speaker labels.

Outline: %s
Language: %s
Tone: %s
Target audience: %s
Target duration: %d minutes (about %d words).`,
		outlineJSON, input.Language, input.Tone, input.TargetAudience,
		input.DurationMinutes, input.DurationMinutes*140)

	text, usage, err := g.generate(ctx, prompt, false)
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}
	return &provider.ScriptResult{Markdown: text, Usage: usage}, nil
}

func (g *Generator) generate(ctx context.Context, prompt string, jsonOnly bool) (string, *provider.Usage, error) {
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	if jsonOnly {
		payload.GenerationConfig = &generationConfig{ResponseMIMEType: "application/json"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s:generateContent", g.cfg.BaseURL, g.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("generate request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<22))
	if err != nil {
		return "", nil, fmt.Errorf("read generate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("generate request: http %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", nil, fmt.Errorf("parse generate response: %w", err)
	}
	if parsed.Error != nil {
		return "", nil, fmt.Errorf("generate request: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", nil, fmt.Errorf("generate request: empty candidates")
	}

	var usage *provider.Usage
	if parsed.UsageMetadata != nil {
		usage = &provider.Usage{
			InputTokens:  parsed.UsageMetadata.PromptTokenCount,
			OutputTokens: parsed.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  parsed.UsageMetadata.TotalTokenCount,
			Provider:     name,
			Model:        g.cfg.Model,
		}
	}
	return parsed.Candidates[0].Content.Parts[0].Text, usage, nil
}

func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
