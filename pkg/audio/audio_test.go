package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeWAV builds a valid PCM WAV buffer with the given shape and a silent
// payload of payloadBytes bytes.
func makeWAV(t *testing.T, sampleRate uint32, channels, bits uint16, payloadBytes int) []byte {
	t.Helper()
	h := wavHeader{
		audioFormat:   1,
		numChannels:   channels,
		sampleRate:    sampleRate,
		bitsPerSample: bits,
	}
	return buildWAV(h, make([]byte, payloadBytes))
}

func TestConcat_EmptyInput(t *testing.T) {
	_, err := Concat(nil, FormatWAV)
	assert.ErrorIs(t, err, ErrNoAudio)
}

func TestConcat_UnsupportedFormat(t *testing.T) {
	_, err := Concat([][]byte{{1}}, Format("ogg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ogg")
}

func TestConcatWAV_RoundTrip(t *testing.T) {
	// Two one-second silent buffers: 16kHz mono 16-bit = 32000 bytes/sec.
	a := makeWAV(t, 16000, 1, 16, 32000)
	b := makeWAV(t, 16000, 1, 16, 32000)

	out, err := Concat([][]byte{a, b}, FormatWAV)
	require.NoError(t, err)

	h, err := parseWAVHeader(out)
	require.NoError(t, err)

	assert.Equal(t, uint32(16000), h.sampleRate)
	assert.Equal(t, uint16(1), h.numChannels)
	assert.Equal(t, uint16(16), h.bitsPerSample)
	assert.Equal(t, 64000, h.dataSize, "payload size must equal the sum of the inputs")
	assert.Equal(t, 44+64000, len(out))

	// Declared RIFF size covers the whole file minus 8 bytes.
	assert.Equal(t, uint32(len(out)-8), binary.LittleEndian.Uint32(out[4:8]))
}

func TestConcatWAV_SampleRateMismatch(t *testing.T) {
	a := makeWAV(t, 16000, 1, 16, 1000)
	b := makeWAV(t, 22050, 1, 16, 1000)

	out, err := Concat([][]byte{a, b}, FormatWAV)
	assert.Nil(t, out)

	var mismatch *FormatMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 1, mismatch.Index)
}

func TestConcatWAV_ChannelMismatch(t *testing.T) {
	a := makeWAV(t, 16000, 1, 16, 1000)
	b := makeWAV(t, 16000, 2, 16, 1000)

	_, err := Concat([][]byte{a, b}, FormatWAV)
	var mismatch *FormatMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestConcatWAV_MalformedHeader(t *testing.T) {
	a := makeWAV(t, 16000, 1, 16, 100)

	_, err := Concat([][]byte{a, []byte("not a wav at all")}, FormatWAV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "section 1")
}

func TestParseWAVHeader_MissingChunks(t *testing.T) {
	buf := make([]byte, 16)
	copy(buf[0:4], "RIFF")
	copy(buf[8:12], "WAVE")

	_, err := parseWAVHeader(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fmt")
}

// makeID3 builds an ID3v2 tag of the given body size.
func makeID3(bodySize int) []byte {
	tag := make([]byte, id3HeaderSize+bodySize)
	copy(tag, "ID3")
	tag[3] = 4 // version
	tag[6] = byte(bodySize >> 21 & 0x7f)
	tag[7] = byte(bodySize >> 14 & 0x7f)
	tag[8] = byte(bodySize >> 7 & 0x7f)
	tag[9] = byte(bodySize & 0x7f)
	return tag
}

func TestConcatMP3_StripsSubsequentTags(t *testing.T) {
	frames1 := []byte{0xff, 0xfb, 0x90, 0x01, 0x02}
	frames2 := []byte{0xff, 0xfb, 0x90, 0x03, 0x04}

	a := append(makeID3(20), frames1...)
	b := append(makeID3(20), frames2...)

	out, err := Concat([][]byte{a, b}, FormatMP3)
	require.NoError(t, err)

	// First buffer intact (tag included), second buffer tag stripped.
	assert.Equal(t, append(append([]byte{}, a...), frames2...), out)
}

func TestConcatMP3_NoTagPassthrough(t *testing.T) {
	a := []byte{0xff, 0xfb, 0x01}
	b := []byte{0xff, 0xfb, 0x02}

	out, err := Concat([][]byte{a, b}, FormatMP3)
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, a...), b...), out)
}

func TestID3TagLength(t *testing.T) {
	assert.Equal(t, 0, id3TagLength([]byte("short")))
	assert.Equal(t, 30, id3TagLength(makeID3(20)))

	// Truncated tag claims more bytes than exist; treated as no tag rather
	// than slicing out of range.
	truncated := makeID3(20)[:15]
	assert.Equal(t, 0, id3TagLength(truncated))
}

func TestFormatFromMIME(t *testing.T) {
	tests := []struct {
		mime   string
		want   Format
		wantOK bool
	}{
		{"audio/wav", FormatWAV, true},
		{"audio/x-wav", FormatWAV, true},
		{"audio/mpeg", FormatMP3, true},
		{"audio/mp3", FormatMP3, true},
		{"audio/ogg", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatFromMIME(tt.mime)
		assert.Equal(t, tt.wantOK, ok, tt.mime)
		assert.Equal(t, tt.want, got, tt.mime)
	}
}
