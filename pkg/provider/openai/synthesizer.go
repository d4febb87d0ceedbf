package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/castforge/castforge/pkg/provider"
)

const synthesizerName = "openai"

// Synthesizer speaks text via the /audio/speech endpoint. Output is MP3.
type Synthesizer struct {
	client *client
}

var _ provider.Synthesizer = (*Synthesizer)(nil)

func NewSynthesizer(cfg Config, opts ...Option) *Synthesizer {
	return &Synthesizer{client: newClient(cfg, opts...)}
}

func (s *Synthesizer) Name() string { return synthesizerName }

type speechAPIRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed,omitempty"`
}

func (s *Synthesizer) Speak(ctx context.Context, req provider.SpeechRequest) (*provider.SpeechResult, error) {
	if err := s.client.requireKey(synthesizerName); err != nil {
		return nil, err
	}

	voice := req.Voice
	if voice == "" {
		voice = s.client.cfg.Voice
	}
	payload := speechAPIRequest{
		Model:          s.client.cfg.SpeechModel,
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: "mp3",
		Speed:          req.SpeakingRate,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal speech request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.client.cfg.SpeakTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.cfg.BaseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.client.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Final audio can be large; cap reads well above any realistic section.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<26))
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech request: http %d: %s", resp.StatusCode, snippet(raw))
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("speech request: empty audio response")
	}

	return &provider.SpeechResult{
		Audio:    raw,
		MIMEType: "audio/mpeg",
		Usage: &provider.Usage{
			Provider: synthesizerName,
			Model:    s.client.cfg.SpeechModel,
		},
	}, nil
}
