// Package provider defines the two capabilities the job pipeline consumes:
// outline/script generation and speech synthesis.
//
// Each capability has multiple interchangeable backends plus an
// ordered-fallback composition. The pipeline calls "the generator" and
// "the synthesizer" without knowing whether fallback is active.
package provider

import (
	"context"

	"github.com/castforge/castforge/pkg/podcast"
)

// Outline is the structured skeleton produced before full script
// generation.
type Outline struct {
	Title    string           `json:"title"`
	Sections []OutlineSection `json:"sections"`
}

// OutlineSection is one planned segment of the episode.
type OutlineSection struct {
	Heading string   `json:"heading"`
	Bullets []string `json:"bullets"`
}

// OutlineRequest asks a generator for an episode outline.
type OutlineRequest struct {
	Input podcast.Input
}

// ScriptRequest asks a generator for the full Markdown script.
type ScriptRequest struct {
	Outline Outline
	Input   podcast.Input
}

// SpeechRequest asks a synthesizer to speak one section of text.
type SpeechRequest struct {
	Text         string
	Language     string
	Voice        string
	Format       string // preferred container: "wav" or "mp3"; backends may ignore
	SpeakingRate float64
}

// Usage records what one backend call consumed, for per-job aggregation.
type Usage struct {
	InputTokens     int     `json:"inputTokens,omitempty"`
	OutputTokens    int     `json:"outputTokens,omitempty"`
	TotalTokens     int     `json:"totalTokens,omitempty"`
	AudioSecondsOut float64 `json:"audioSecondsOut,omitempty"`
	Provider        string  `json:"provider,omitempty"`
	Model           string  `json:"model,omitempty"`
}

// OutlineResult carries a generated outline.
type OutlineResult struct {
	Outline Outline
	Usage   *Usage
}

// ScriptResult carries the generated script Markdown.
type ScriptResult struct {
	Markdown string
	Usage    *Usage
}

// SpeechResult carries synthesized audio for one section.
type SpeechResult struct {
	Audio       []byte
	MIMEType    string
	DurationSec float64
	Usage       *Usage
}

// Generator produces outline and script text.
//
// Implementations should be safe for concurrent use; the pipeline may run
// multiple jobs against one instance.
type Generator interface {
	// Name identifies the backend in logs, metadata, and failure lists.
	Name() string

	GenerateOutline(ctx context.Context, req OutlineRequest) (*OutlineResult, error)
	GenerateScript(ctx context.Context, req ScriptRequest) (*ScriptResult, error)
}

// Synthesizer converts text to speech audio.
type Synthesizer interface {
	Name() string

	Speak(ctx context.Context, req SpeechRequest) (*SpeechResult, error)
}
