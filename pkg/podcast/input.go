// Package podcast defines the episode request model shared by the HTTP
// surface, the providers, and the job pipeline.
package podcast

import (
	"fmt"
	"strings"
)

// Tone is the requested speaking tone for the episode.
type Tone string

const (
	ToneInformative  Tone = "informative"
	ToneFriendly     Tone = "friendly"
	ToneProfessional Tone = "professional"
	ToneEnergetic    Tone = "energetic"
	ToneCalm         Tone = "calm"
)

// ContentType is the editorial style of the episode.
type ContentType string

const (
	ContentEducational   ContentType = "educational"
	ContentNews          ContentType = "news"
	ContentStorytelling  ContentType = "storytelling"
	ContentEntertainment ContentType = "entertainment"
)

// Format is the show format the script is written for.
type Format string

const (
	FormatSoloHost   Format = "solo-host"
	FormatInterview  Format = "interview"
	FormatNarrative  Format = "narrative"
	FormatRoundtable Format = "roundtable"
)

const (
	DefaultDurationMinutes = 5
	MinDurationMinutes     = 2
	MaxDurationMinutes     = 20
	DefaultLanguage        = "en"
)

var supportedLanguages = map[string]bool{
	"en": true,
	"es": true,
	"fr": true,
	"de": true,
	"it": true,
	"pt": true,
	"ja": true,
}

var tones = map[Tone]bool{
	ToneInformative:  true,
	ToneFriendly:     true,
	ToneProfessional: true,
	ToneEnergetic:    true,
	ToneCalm:         true,
}

var contentTypes = map[ContentType]bool{
	ContentEducational:   true,
	ContentNews:          true,
	ContentStorytelling:  true,
	ContentEntertainment: true,
}

var formats = map[Format]bool{
	FormatSoloHost:   true,
	FormatInterview:  true,
	FormatNarrative:  true,
	FormatRoundtable: true,
}

// Input is a validated episode request. Immutable once a job is created.
type Input struct {
	Topic           string      `json:"topic"`
	DurationMinutes int         `json:"durationMinutes"`
	Language        string      `json:"language"`
	Tone            Tone        `json:"tone"`
	ContentType     ContentType `json:"contentType"`
	TargetAudience  string      `json:"targetAudience"`
	Format          Format      `json:"format"`
}

// FieldErrors maps a field name to its validation failures.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, message string) {
	e[field] = append(e[field], message)
}

// Error implements error so a FieldErrors can propagate as one.
func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msgs := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, "; ")))
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

// RawInput is the unvalidated request payload as received over the wire.
type RawInput struct {
	Topic           string  `json:"topic"`
	DurationMinutes float64 `json:"durationMinutes"`
	Language        string  `json:"language"`
	Tone            string  `json:"tone"`
	ContentType     string  `json:"contentType"`
	TargetAudience  string  `json:"targetAudience"`
	Format          string  `json:"format"`
}

// Validate checks a raw payload and returns the normalized Input.
//
// Topic is required. Duration must fall within the supported range and
// defaults when zero. Language must come from the supported set. Tone,
// content type, and format silently fall back to their defaults when the
// value is unrecognized.
func Validate(raw RawInput) (Input, FieldErrors) {
	errs := FieldErrors{}

	topic := strings.TrimSpace(raw.Topic)
	if topic == "" {
		errs.add("topic", "topic is required")
	}

	duration := int(raw.DurationMinutes)
	if duration == 0 {
		duration = DefaultDurationMinutes
	}
	if duration < MinDurationMinutes || duration > MaxDurationMinutes {
		errs.add("durationMinutes", fmt.Sprintf("duration must be between %d and %d minutes", MinDurationMinutes, MaxDurationMinutes))
	}

	language := strings.ToLower(strings.TrimSpace(raw.Language))
	if language == "" {
		language = DefaultLanguage
	}
	if !supportedLanguages[language] {
		errs.add("language", fmt.Sprintf("unsupported language: %s", language))
	}

	tone := Tone(strings.ToLower(strings.TrimSpace(raw.Tone)))
	if !tones[tone] {
		tone = ToneInformative
	}

	contentType := ContentType(strings.ToLower(strings.TrimSpace(raw.ContentType)))
	if !contentTypes[contentType] {
		contentType = ContentEducational
	}

	format := Format(strings.ToLower(strings.TrimSpace(raw.Format)))
	if !formats[format] {
		format = FormatSoloHost
	}

	audience := strings.TrimSpace(raw.TargetAudience)
	if audience == "" {
		audience = "general"
	}

	if len(errs) > 0 {
		return Input{}, errs
	}

	return Input{
		Topic:           topic,
		DurationMinutes: duration,
		Language:        language,
		Tone:            tone,
		ContentType:     contentType,
		TargetAudience:  audience,
		Format:          format,
	}, nil
}
