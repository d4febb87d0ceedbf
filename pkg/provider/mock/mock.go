// Package mock provides deterministic offline backends for both
// capabilities. They are the default in development and the workhorse of
// the test suite: no network, no credentials, stable output for a given
// input.
package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/castforge/castforge/pkg/audio"
	"github.com/castforge/castforge/pkg/provider"
)

const name = "mock"

// Generator produces a fixed-shape outline and script derived from the
// request topic.
type Generator struct{}

var _ provider.Generator = (*Generator)(nil)

func NewGenerator() *Generator { return &Generator{} }

func (g *Generator) Name() string { return name }

func (g *Generator) GenerateOutline(ctx context.Context, req provider.OutlineRequest) (*provider.OutlineResult, error) {
	topic := strings.TrimSpace(req.Input.Topic)
	if topic == "" {
		topic = "an unknown topic"
	}

	outline := provider.Outline{
		Title: fmt.Sprintf("%s: a %s conversation", topic, req.Input.Format),
		Sections: []provider.OutlineSection{
			{
				Heading: "Intro hook",
				Bullets: []string{
					fmt.Sprintf("Open with a surprising fact about %s.", topic),
					fmt.Sprintf("Promise of value for %s listeners.", req.Input.TargetAudience),
				},
			},
			{
				Heading: "Essential context",
				Bullets: []string{
					fmt.Sprintf("A clear definition of %s.", topic),
					"Why it matters today.",
					"Common mistakes to avoid.",
				},
			},
			{
				Heading: "Key ideas",
				Bullets: []string{
					fmt.Sprintf("The main strategy around %s.", topic),
					"Short examples and cases.",
					"Practical advice to apply.",
				},
			},
			{
				Heading: "Closing",
				Bullets: []string{
					"Recap of what we learned.",
					"Recommended next steps.",
				},
			},
		},
	}

	usage := tokenUsage(topic, outline.Title)
	return &provider.OutlineResult{Outline: outline, Usage: usage}, nil
}

func (g *Generator) GenerateScript(ctx context.Context, req provider.ScriptRequest) (*provider.ScriptResult, error) {
	input := req.Input
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", req.Outline.Title)
	fmt.Fprintf(&b, "**Language:** %s\n**Tone:** %s\n**Duration:** %d minutes\n\n",
		input.Language, input.Tone, input.DurationMinutes)

	for _, section := range req.Outline.Sections {
		fmt.Fprintf(&b, "## %s\n", section.Heading)
		for _, bullet := range section.Bullets {
			fmt.Fprintf(&b, "%s ", bullet)
		}
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "## Outro\nThanks for listening. If this episode helped, share it and subscribe for more on %s.\n", input.Topic)

	markdown := strings.TrimSpace(b.String())
	usage := tokenUsage(req.Outline.Title, markdown)
	return &provider.ScriptResult{Markdown: markdown, Usage: usage}, nil
}

// Synthesizer emits silence sized to the spoken length of the text.
type Synthesizer struct{}

var _ provider.Synthesizer = (*Synthesizer)(nil)

func NewSynthesizer() *Synthesizer { return &Synthesizer{} }

func (s *Synthesizer) Name() string { return name }

func (s *Synthesizer) Speak(ctx context.Context, req provider.SpeechRequest) (*provider.SpeechResult, error) {
	seconds := estimateSpokenSeconds(req.Text, req.SpeakingRate)
	return &provider.SpeechResult{
		Audio:       audio.SilentWAV(seconds),
		MIMEType:    "audio/wav",
		DurationSec: seconds,
		Usage:       &provider.Usage{AudioSecondsOut: seconds, Provider: name, Model: "mock-tts"},
	}, nil
}

// estimateSpokenSeconds assumes roughly two words per second at rate 1.0.
func estimateSpokenSeconds(text string, rate float64) float64 {
	if rate <= 0 {
		rate = 1
	}
	words := len(strings.Fields(text))
	seconds := float64(words) / (2 * rate)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

func tokenUsage(in, out string) *provider.Usage {
	usage := &provider.Usage{
		InputTokens:  estimateTokens(in),
		OutputTokens: estimateTokens(out),
		Provider:     name,
		Model:        "mock-llm",
	}
	usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	return usage
}

func estimateTokens(text string) int {
	n := (len(text) + 3) / 4
	if n < 1 {
		n = 1
	}
	return n
}
