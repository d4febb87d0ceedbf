package script

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/castforge/castforge/pkg/podcast"
)

// Chapter is a derived, time-stamped summary of one section. Chapters
// partition time contiguously starting at zero, in section order.
type Chapter struct {
	Title    string `json:"title"`
	StartSec int    `json:"startSec"`
	EndSec   int    `json:"endSec"`
	Summary  string `json:"summary"`
}

const (
	// DefaultWordsPerMinute is the assumed spoken pace.
	DefaultWordsPerMinute = 140

	// minChapterSeconds floors very short sections so chapters stay usable
	// for navigation.
	minChapterSeconds = 30

	summaryMaxWords = 18
)

// EstimateChapters derives the chapter list for a script. Durations come
// from word count at wpm (DefaultWordsPerMinute when wpm <= 0); a running
// cursor keeps start/end contiguous from zero.
func EstimateChapters(markdown string, input podcast.Input, wpm int) []Chapter {
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}

	sections := ParseSections(markdown)
	chapters := make([]Chapter, 0, len(sections))
	cursor := 0

	for _, section := range sections {
		words := countWords(section.Content)
		seconds := int(math.Ceil(float64(words) / float64(wpm) * 60))
		if seconds < minChapterSeconds {
			seconds = minChapterSeconds
		}

		summary := summarize(section.Content)
		if summary == "" {
			summary = fmt.Sprintf("A segment about %s.", input.Topic)
		}

		chapters = append(chapters, Chapter{
			Title:    section.Title,
			StartSec: cursor,
			EndSec:   cursor + seconds,
			Summary:  summary,
		})
		cursor += seconds
	}

	return chapters
}

// MarshalChapters encodes the chapter list as indented JSON for
// storage as an artifact.
func MarshalChapters(chapters []Chapter) ([]byte, error) {
	return json.MarshalIndent(chapters, "", "  ")
}

// summarize returns the first sentence of the text, or its first few words
// with an ellipsis when no sentence boundary exists.
func summarize(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	if sentence := firstSentence(trimmed); sentence != "" {
		return sentence
	}

	words := strings.Fields(trimmed)
	if len(words) > summaryMaxWords {
		words = words[:summaryMaxWords]
	}
	if len(words) == 0 {
		return ""
	}
	return strings.Join(words, " ") + "..."
}

// firstSentence finds the first run ending in sentence punctuation followed
// by whitespace (or end of text).
func firstSentence(text string) string {
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i == len(runes)-1 || isSpace(runes[i+1]) {
			return strings.TrimSpace(string(runes[:i+1]))
		}
	}
	return ""
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
