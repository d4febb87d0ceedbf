package audio

// MP3 frame data can be concatenated directly without re-encoding. The only
// cleanup needed is dropping the ID3v2 tag that most encoders prepend to
// each file: keeping the first one preserves track metadata, repeating it
// mid-stream confuses players.

const id3HeaderSize = 10

// id3TagLength returns the total byte length of a leading ID3v2 tag, or 0
// when the buffer does not start with one. Tag size is stored as four
// synchsafe bytes (7 significant bits each) following the 3-byte marker,
// version, and flags.
func id3TagLength(buf []byte) int {
	if len(buf) < id3HeaderSize || buf[0] != 'I' || buf[1] != 'D' || buf[2] != '3' {
		return 0
	}
	size := 0
	for _, b := range buf[6:10] {
		size = size<<7 | int(b&0x7f)
	}
	total := id3HeaderSize + size
	if total > len(buf) {
		return 0
	}
	return total
}

// concatMP3 keeps the first buffer whole and strips the leading ID3 tag
// from every subsequent buffer before joining.
func concatMP3(buffers [][]byte) ([]byte, error) {
	total := 0
	for _, b := range buffers {
		total += len(b)
	}

	out := make([]byte, 0, total)
	for i, buf := range buffers {
		if i > 0 {
			buf = buf[id3TagLength(buf):]
		}
		out = append(out, buf...)
	}
	return out, nil
}
