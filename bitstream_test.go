package wac

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestReaderReadBits(t *testing.T) {
	// words 0x209f and 0x1060
	r := NewReader([]byte{0x9f, 0x20, 0x60, 0x10})

	tests := []struct {
		n    uint
		want uint32
	}{
		{4, 0x2},
		{1, 0},
		{2, 0},
		{12, 0x4f8},
		{13, 0x1060},
	}

	for i, tt := range tests {
		got, err := r.ReadBits(tt.n)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}

		if got != tt.want {
			t.Fatalf("read %d: ReadBits(%d)=0x%x, want 0x%x", i, tt.n, got, tt.want)
		}
	}

	if _, err := r.ReadBits(1); !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("read past end: err=%v, want ErrTruncatedInput", err)
	}
}

func TestReaderTypedReads(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09})

	v8, err := r.Uint8()
	if err != nil || v8 != 0x01 {
		t.Fatalf("Uint8()=%x, %v", v8, err)
	}

	le, err := r.Uint16(binary.LittleEndian)
	if err != nil || le != 0x0302 {
		t.Fatalf("Uint16(LE)=%x, %v", le, err)
	}

	be, err := r.Uint32(binary.BigEndian)
	if err != nil || be != 0x04050607 {
		t.Fatalf("Uint32(BE)=%x, %v", be, err)
	}

	if r.Remaining() != 2 {
		t.Fatalf("Remaining()=%d, want 2", r.Remaining())
	}

	_, err = r.Uint32(binary.LittleEndian)

	var werr *Error
	if !errors.As(err, &werr) || !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("short read err=%v, want *Error with ErrTruncatedInput", err)
	}

	if werr.Offset != 7 {
		t.Fatalf("error offset=%d, want 7", werr.Offset)
	}

	b, err := r.Bytes(2)
	if err != nil || len(b) != 2 || b[1] != 0x09 {
		t.Fatalf("Bytes(2)=%v, %v", b, err)
	}
}

func TestReaderAlign(t *testing.T) {
	r := NewReader([]byte{0x00, 0x80, 0x34, 0x12})

	bit, err := r.ReadBit()
	if err != nil || bit != 1 {
		t.Fatalf("ReadBit()=%d, %v", bit, err)
	}

	if r.Offset() != 0 {
		t.Fatalf("Offset() mid-word=%d, want 0", r.Offset())
	}

	v, err := r.Uint16(binary.LittleEndian)
	if err != nil || v != 0x1234 {
		t.Fatalf("aligned Uint16=%x, %v", v, err)
	}
}

func TestReaderReadSigned(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		n    uint
		want int32
	}{
		{"positive", []byte{0x00, 0x40}, 4, 4},
		{"minus one", []byte{0x00, 0xf0}, 4, -1},
		{"most negative", []byte{0x00, 0x80}, 4, -8},
		{"zero width", []byte{0x00, 0x00}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewReader(tt.in).ReadSigned(tt.n)
			if err != nil {
				t.Fatal(err)
			}

			if got != tt.want {
				t.Fatalf("ReadSigned(%d)=%d, want %d", tt.n, got, tt.want)
			}
		})
	}
}

func TestReaderSeek(t *testing.T) {
	r := NewReader(make([]byte, 8))

	if err := r.Seek(8); err != nil {
		t.Fatalf("seek to end: %v", err)
	}

	if err := r.Seek(9); !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("seek past end err=%v", err)
	}

	if err := r.Seek(-1); !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("negative seek err=%v", err)
	}
}

func TestReaderReadBitsTooWide(t *testing.T) {
	if _, err := NewReader(make([]byte, 8)).ReadBits(33); err == nil {
		t.Fatal("expected error for a 33 bit read")
	}
}
