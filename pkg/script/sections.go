// Package script splits generated Markdown into speakable sections and
// derives a time-stamped chapter list from them.
package script

import (
	"regexp"
	"strings"
)

// Section is a contiguous slice of the script between one level-2 heading
// and the next. Sections are transient: they feed chapter estimation and
// per-section speech synthesis but are never persisted.
type Section struct {
	Title   string
	Content string
}

// FallbackTitle names the single synthetic section used when a script has
// no level-2 headings at all.
const FallbackTitle = "Full Script"

var headingPattern = regexp.MustCompile(`^##\s+(.*)`)

// ParseSections scans the Markdown line by line. A `## ` heading opens a
// new section titled by the heading text; every following line up to the
// next heading is kept verbatim (blank lines included). Whitespace-only
// sections are dropped. A script with no usable sections yields one
// synthetic section wrapping the whole document.
func ParseSections(markdown string) []Section {
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")

	var sections []Section
	var current *Section

	for _, line := range lines {
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &Section{Title: strings.TrimSpace(m[1])}
			continue
		}
		if current != nil {
			current.Content += line + "\n"
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}

	filtered := sections[:0]
	for _, s := range sections {
		if strings.TrimSpace(s.Content) != "" {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		return []Section{{Title: FallbackTitle, Content: markdown}}
	}
	return filtered
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
