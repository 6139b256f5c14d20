package wactest

import "encoding/binary"

// BitWriter packs bit fields most significant bit first into little-endian
// 16-bit words, the layout read by wac.Reader.
type BitWriter struct {
	buf   []byte
	word  uint16
	nbits uint
}

// WriteBits appends the low n bits of v.
func (w *BitWriter) WriteBits(v uint32, n uint) {
	for i := int(n) - 1; i >= 0; i-- {
		bit := uint16(v>>uint(i)) & 1
		w.word |= bit << (15 - w.nbits)
		w.nbits++

		if w.nbits == 16 {
			w.flush()
		}
	}
}

// Align pads the current word with zero bits.
func (w *BitWriter) Align() {
	if w.nbits > 0 {
		w.flush()
	}
}

// WriteUint32 aligns and appends v in little-endian order.
func (w *BitWriter) WriteUint32(v uint32) {
	w.Align()
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// Len returns the number of complete bytes written.
func (w *BitWriter) Len() int { return len(w.buf) }

// Bytes aligns and returns the written bytes.
func (w *BitWriter) Bytes() []byte {
	w.Align()

	return w.buf
}

func (w *BitWriter) flush() {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, w.word)
	w.word = 0
	w.nbits = 0
}

// WriteGolomb appends u as an alternating-bit quotient and a k-bit remainder.
func (w *BitWriter) WriteGolomb(u uint32, k uint) {
	q := u >> k
	bit := uint32(1)

	for range q {
		w.WriteBits(bit, 1)
		bit ^= 1
	}

	// terminator breaks the alternation
	w.WriteBits(bit^1, 1)
	w.WriteBits(u&(1<<k-1), k)
}

// GolombLen returns the number of bits WriteGolomb uses for u.
func GolombLen(u uint32, k uint) int {
	return int(u>>k) + 1 + int(k)
}
