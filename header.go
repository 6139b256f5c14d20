package wac

import (
	"bytes"
	"encoding/binary"
	"time"
)

// HeaderSize is the size of the fixed WAC header.
const HeaderSize = 24

// maxChannels bounds the channel count accepted from a header.
const maxChannels = 8

// Magic identifies a WAC file.
var Magic = [4]byte{'W', 'A', 'a', 'c'}

// Header flag bits.
const (
	FlagLossyMask = 0x0f
	FlagTriggered = 0x10
	FlagGPS       = 0x20
	FlagTags      = 0x40
)

// versionFormat holds the per-version constants of the compressed stream.
type versionFormat struct {
	bitDepth     int
	codeSizeBits uint
}

// versionFormats lists the known WAC versions. Every version up to 4 shares
// the same frame coding; later versions are rejected rather than guessed.
var versionFormats = map[uint8]versionFormat{
	0: {bitDepth: 16, codeSizeBits: 4},
	1: {bitDepth: 16, codeSizeBits: 4},
	2: {bitDepth: 16, codeSizeBits: 4},
	3: {bitDepth: 16, codeSizeBits: 4},
	4: {bitDepth: 16, codeSizeBits: 4},
}

// Header is the parsed WAC header. It is not modified after ParseHeader
// returns.
type Header struct {
	Version    uint8
	NumChans   int
	FrameSize  int // samples per channel per frame
	BlockSize  int // frames per block
	Flags      uint16
	SampleRate int
	// SampleCount is the number of samples per channel.
	SampleCount int
	// SeekSize is the number of blocks covered by one seek table entry.
	SeekSize int
	// SeekTable holds the offsets, in 16-bit words, of every SeekSize-th block.
	SeekTable []uint32
	BitDepth  int

	// DataOffset and DataLength delimit the block stream in the source.
	DataOffset int64
	DataLength int64

	format versionFormat
}

// LossyBits returns the number of least significant bits dropped by the
// recorder (0 for lossless WAC0).
func (h *Header) LossyBits() uint { return uint(h.Flags & FlagLossyMask) }

// Triggered reports whether the file may contain zero frames between
// triggered recordings.
func (h *Header) Triggered() bool { return h.Flags&FlagTriggered != 0 }

// HasGPS reports whether GPS fixes are interleaved with block headers.
func (h *Header) HasGPS() bool { return h.Flags&FlagGPS != 0 }

// HasTags reports whether every block header carries a tag field.
func (h *Header) HasTags() bool { return h.Flags&FlagTags != 0 }

// SamplesPerBlock returns the number of samples per channel in a full block.
func (h *Header) SamplesPerBlock() int { return h.FrameSize * h.BlockSize }

// NumBlocks returns the number of blocks needed to hold SampleCount samples.
func (h *Header) NumBlocks() int {
	spb := h.SamplesPerBlock()
	if spb == 0 {
		return 0
	}

	return (h.SampleCount + spb - 1) / spb
}

// Duration returns the length of the recording.
func (h *Header) Duration() time.Duration {
	if h.SampleRate == 0 {
		return 0
	}

	return time.Duration(h.SampleCount) * time.Second / time.Duration(h.SampleRate)
}

// SeekOffset returns the byte offset of the block at index block*SeekSize.
func (h *Header) SeekOffset(entry int) (int64, bool) {
	if entry < 0 || entry >= len(h.SeekTable) {
		return 0, false
	}

	return int64(h.SeekTable[entry]) * 2, true
}

// rawHeader mirrors the 24 byte little-endian header.
type rawHeader struct {
	Magic       [4]byte
	Version     uint8
	NumChans    uint8
	FrameSize   uint16
	BlockSize   uint16
	Flags       uint16
	SampleRate  uint32
	SampleCount uint32
	SeekSize    uint16
	SeekEntries uint16
}

// ParseHeader reads the fixed header and the seek table at the reader's
// position and leaves r at the first block. Offsets in the Header and in
// errors are absolute positions in the reader's buffer.
func ParseHeader(r *Reader) (*Header, error) {
	r.Align()
	start := r.Offset()

	if r.Remaining() >= len(Magic) && [4]byte(r.buf[r.pos:r.pos+4]) != Magic {
		return nil, newError(ErrInvalidFormat, start, "bad magic %q", r.buf[r.pos:r.pos+4])
	}

	if r.Remaining() < HeaderSize {
		return nil, newError(ErrTruncatedInput, int64(r.Len()), "header needs %d bytes, have %d", HeaderSize, r.Remaining())
	}

	b, err := r.Bytes(HeaderSize)
	if err != nil {
		return nil, err
	}

	var raw rawHeader
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &raw); err != nil {
		return nil, newError(ErrTruncatedInput, start, "read header: %v", err)
	}

	if raw.Magic != Magic {
		return nil, newError(ErrInvalidFormat, start, "bad magic %q", raw.Magic[:])
	}

	format, ok := versionFormats[raw.Version]
	if !ok {
		return nil, newError(ErrUnsupportedVersion, start+4, "version %d", raw.Version)
	}

	h := &Header{
		Version:     raw.Version,
		NumChans:    int(raw.NumChans),
		FrameSize:   int(raw.FrameSize),
		BlockSize:   int(raw.BlockSize),
		Flags:       raw.Flags,
		SampleRate:  int(raw.SampleRate),
		SampleCount: int(raw.SampleCount),
		SeekSize:    int(raw.SeekSize),
		BitDepth:    format.bitDepth,
		format:      format,
	}

	if err := h.validate(start); err != nil {
		return nil, err
	}

	h.SeekTable = make([]uint32, raw.SeekEntries)
	for i := range h.SeekTable {
		h.SeekTable[i], err = r.Uint32(binary.LittleEndian)
		if err != nil {
			return nil, err
		}
	}

	h.DataOffset = r.Offset()
	h.DataLength = int64(r.Len()) - h.DataOffset

	return h, nil
}

// validate checks the header fields; start is the offset of the header.
func (h *Header) validate(start int64) error {
	switch {
	case h.NumChans == 0:
		return newError(ErrInvalidFormat, start+5, "zero channels")
	case h.NumChans > maxChannels:
		return newError(ErrInvalidFormat, start+5, "%d channels, at most %d supported", h.NumChans, maxChannels)
	case h.FrameSize == 0:
		return newError(ErrInvalidFormat, start+6, "zero frame size")
	case h.BlockSize == 0:
		return newError(ErrInvalidFormat, start+8, "zero block size")
	case h.SampleRate == 0:
		return newError(ErrInvalidFormat, start+12, "zero sample rate")
	case h.HasGPS() && h.SeekSize == 0:
		return newError(ErrInvalidFormat, start+20, "GPS data without a seek size")
	case int(h.LossyBits()) >= h.BitDepth:
		return newError(ErrInvalidFormat, start+10, "%d lossy bits for %d-bit audio", h.LossyBits(), h.BitDepth)
	}

	return nil
}
