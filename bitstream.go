package wac

import (
	"encoding/binary"
	"fmt"
)

// Reader is a bounds-checked cursor over a WAC byte buffer. It serves both
// byte-aligned reads (header, seek table, block headers) and the
// variable-length bit fields of the compressed frames. Bit fields are taken
// most significant bit first from consecutive little-endian 16-bit words.
//
// A byte-aligned read discards the bits left in the current word.
type Reader struct {
	buf   []byte
	pos   int
	word  uint16
	nbits uint
}

// NewReader returns a Reader positioned at the start of b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Len returns the size of the underlying buffer.
func (r *Reader) Len() int { return len(r.buf) }

// Offset returns the byte offset of the next unread byte, or of the 16-bit
// word currently being consumed by ReadBits.
func (r *Reader) Offset() int64 {
	if r.nbits > 0 {
		return int64(r.pos - 2)
	}

	return int64(r.pos)
}

// Remaining returns the number of bytes after the cursor. Bits pending in a
// partially consumed word are not counted.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Seek moves the cursor to an absolute byte offset.
func (r *Reader) Seek(off int64) error {
	if off < 0 || off > int64(len(r.buf)) {
		return newError(ErrTruncatedInput, off, "seek outside of %d byte input", len(r.buf))
	}

	r.pos = int(off)
	r.nbits = 0

	return nil
}

// Align drops the unread bits of the current word so the next read starts on
// a 16-bit boundary.
func (r *Reader) Align() {
	r.nbits = 0
}

func (r *Reader) take(n int) ([]byte, error) {
	r.Align()

	if n < 0 || r.Remaining() < n {
		return nil, newError(ErrTruncatedInput, int64(r.pos), "need %d bytes, have %d", n, r.Remaining())
	}

	b := r.buf[r.pos : r.pos+n : r.pos+n]
	r.pos += n

	return b, nil
}

// Uint8 reads one byte.
func (r *Reader) Uint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// Uint16 reads a 16-bit integer in the given byte order.
func (r *Reader) Uint16(order binary.ByteOrder) (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}

	return order.Uint16(b), nil
}

// Uint32 reads a 32-bit integer in the given byte order.
func (r *Reader) Uint32(order binary.ByteOrder) (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}

	return order.Uint32(b), nil
}

// Bytes returns the next n bytes. The returned slice aliases the input
// buffer and must not be modified.
func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.take(n)
}

// ReadBits reads an n-bit unsigned field, 0 <= n <= 32.
func (r *Reader) ReadBits(n uint) (uint32, error) {
	if n > 32 {
		return 0, fmt.Errorf("can't read %d bits at once", n)
	}

	var v uint32

	for n > 0 {
		if r.nbits == 0 {
			if r.Remaining() < 2 {
				return 0, newError(ErrTruncatedInput, int64(r.pos), "bit field needs %d more bits", n)
			}

			r.word = binary.LittleEndian.Uint16(r.buf[r.pos:])
			r.pos += 2
			r.nbits = 16
		}

		take := min(n, r.nbits)
		bits := uint32(r.word>>(r.nbits-take)) & (1<<take - 1)
		v = v<<take | bits
		r.nbits -= take
		n -= take
	}

	return v, nil
}

// ReadBit reads a single bit.
func (r *Reader) ReadBit() (uint32, error) {
	return r.ReadBits(1)
}

// ReadSigned reads an n-bit two's complement field.
func (r *Reader) ReadSigned(n uint) (int32, error) {
	v, err := r.ReadBits(n)
	if err != nil {
		return 0, err
	}

	if n == 0 {
		return 0, nil
	}

	shift := 32 - n

	return int32(v<<shift) >> shift, nil
}
