package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// wavHeader holds the fields of a parsed RIFF/WAVE header that matter for
// concatenation, plus the location of the payload.
type wavHeader struct {
	audioFormat   uint16
	numChannels   uint16
	sampleRate    uint32
	bitsPerSample uint16
	dataStart     int
	dataSize      int
}

func parseWAVHeader(buf []byte) (wavHeader, error) {
	var h wavHeader
	if len(buf) < 12 || string(buf[0:4]) != "RIFF" || string(buf[8:12]) != "WAVE" {
		return h, fmt.Errorf("invalid WAV header")
	}

	fmtIdx := bytes.Index(buf, []byte("fmt "))
	if fmtIdx < 0 || fmtIdx+24 > len(buf) {
		return h, fmt.Errorf("missing fmt chunk")
	}
	h.audioFormat = binary.LittleEndian.Uint16(buf[fmtIdx+8:])
	h.numChannels = binary.LittleEndian.Uint16(buf[fmtIdx+10:])
	h.sampleRate = binary.LittleEndian.Uint32(buf[fmtIdx+12:])
	h.bitsPerSample = binary.LittleEndian.Uint16(buf[fmtIdx+22:])

	dataIdx := bytes.Index(buf, []byte("data"))
	if dataIdx < 0 || dataIdx+8 > len(buf) {
		return h, fmt.Errorf("missing data chunk")
	}
	h.dataSize = int(binary.LittleEndian.Uint32(buf[dataIdx+4:]))
	h.dataStart = dataIdx + 8

	if h.dataStart+h.dataSize > len(buf) {
		// Some encoders write a data size larger than the actual payload;
		// clamp to what is really there.
		h.dataSize = len(buf) - h.dataStart
	}
	return h, nil
}

// buildWAV emits a canonical 44-byte header followed by the payload.
func buildWAV(h wavHeader, data []byte) []byte {
	blockAlign := h.numChannels * h.bitsPerSample / 8
	byteRate := h.sampleRate * uint32(blockAlign)
	dataSize := uint32(len(data))

	out := make([]byte, 44+len(data))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], 36+dataSize)
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], h.audioFormat)
	binary.LittleEndian.PutUint16(out[22:], h.numChannels)
	binary.LittleEndian.PutUint32(out[24:], h.sampleRate)
	binary.LittleEndian.PutUint32(out[28:], byteRate)
	binary.LittleEndian.PutUint16(out[32:], blockAlign)
	binary.LittleEndian.PutUint16(out[34:], h.bitsPerSample)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:], dataSize)
	copy(out[44:], data)
	return out
}

// SilentWAV returns a playable 16 kHz mono 16-bit PCM buffer containing
// silence. Used by offline synthesizer backends and tests.
func SilentWAV(seconds float64) []byte {
	const sampleRate = 16000
	const bytesPerSample = 2

	samples := int(seconds * sampleRate)
	if samples < 1 {
		samples = 1
	}
	h := wavHeader{
		audioFormat:   1,
		numChannels:   1,
		sampleRate:    sampleRate,
		bitsPerSample: 16,
	}
	return buildWAV(h, make([]byte, samples*bytesPerSample))
}

// concatWAV validates that every buffer matches the first buffer's format
// exactly, then joins the raw payloads under one rebuilt header.
func concatWAV(buffers [][]byte) ([]byte, error) {
	first, err := parseWAVHeader(buffers[0])
	if err != nil {
		return nil, fmt.Errorf("section 0: %w", err)
	}

	payloads := make([][]byte, 0, len(buffers))
	total := 0
	for i, buf := range buffers {
		h, err := parseWAVHeader(buf)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		if h.audioFormat != first.audioFormat ||
			h.numChannels != first.numChannels ||
			h.sampleRate != first.sampleRate ||
			h.bitsPerSample != first.bitsPerSample {
			return nil, &FormatMismatchError{
				Index: i,
				Detail: fmt.Sprintf("got %dHz/%dch/%dbit, want %dHz/%dch/%dbit",
					h.sampleRate, h.numChannels, h.bitsPerSample,
					first.sampleRate, first.numChannels, first.bitsPerSample),
			}
		}
		payloads = append(payloads, buf[h.dataStart:h.dataStart+h.dataSize])
		total += h.dataSize
	}

	combined := make([]byte, 0, total)
	for _, p := range payloads {
		combined = append(combined, p...)
	}
	return buildWAV(first, combined), nil
}
