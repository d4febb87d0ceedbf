// Package audio stitches per-section speech synthesis output into one
// playable track. It works at the byte level: WAV containers are re-headed,
// MP3 frames are concatenated after stripping redundant metadata tags. No
// resampling or transcoding happens here; inputs must already share one
// format.
package audio

import (
	"errors"
	"fmt"
)

// Format names a supported container format.
type Format string

const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
)

// ErrNoAudio is returned when there is nothing to concatenate.
var ErrNoAudio = errors.New("no audio to concatenate")

// FormatMismatchError reports buffers whose formats do not agree.
type FormatMismatchError struct {
	Index  int
	Detail string
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf("audio format mismatch at section %d: %s", e.Index, e.Detail)
}

// FormatFromMIME maps a synthesizer MIME type to a Format. The bool reports
// whether the type is supported.
func FormatFromMIME(mimeType string) (Format, bool) {
	switch mimeType {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return FormatWAV, true
	case "audio/mpeg", "audio/mp3":
		return FormatMP3, true
	default:
		return "", false
	}
}

// MIMEType returns the canonical MIME type for a format.
func (f Format) MIMEType() string {
	if f == FormatMP3 {
		return "audio/mpeg"
	}
	return "audio/wav"
}

// Extension returns the file extension for a format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Concat joins ordered per-section buffers into one playable buffer.
func Concat(buffers [][]byte, format Format) ([]byte, error) {
	if len(buffers) == 0 {
		return nil, ErrNoAudio
	}
	switch format {
	case FormatWAV:
		return concatWAV(buffers)
	case FormatMP3:
		return concatMP3(buffers)
	default:
		return nil, fmt.Errorf("unsupported audio format: %q", format)
	}
}
