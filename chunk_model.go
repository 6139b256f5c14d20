package wac

// RawChunk is a RIFF chunk written after the data chunk.
type RawChunk struct {
	ID   [4]byte
	Data []byte
}

// encodedSize returns the bytes the chunk occupies, header and pad included.
func (c RawChunk) encodedSize() int {
	n := 8 + len(c.Data)
	if len(c.Data)%2 == 1 {
		n++
	}

	return n
}
