package wac

import (
	"context"
	"encoding/binary"
	"math"
)

const (
	// blockMarker starts every block.
	blockMarker = 0x00018000

	gpsLatBits = 25
	gpsLonBits = 26
	tagBits    = 4

	// maxQuotient bounds the unary part of a Golomb code. A longer run can
	// only come from a damaged stream.
	maxQuotient = 1 << 16
)

// decoderState is the predictor history threaded through the block and frame
// decoders. Each step takes a state and returns the next one.
type decoderState struct {
	prev [maxChannels]int64
	// block is the index expected in the next block header.
	block int
	// done is the number of samples per channel decoded so far.
	done int
}

// Decode decompresses the block stream described by h. The reader is
// repositioned at h.DataOffset.
func Decode(r *Reader, h *Header) (*PCMBuffer, error) {
	return DecodeContext(context.Background(), r, h)
}

// DecodeContext is like Decode and stops between blocks when ctx is done.
// The partial buffer is discarded in that case.
func DecodeContext(ctx context.Context, r *Reader, h *Header) (*PCMBuffer, error) {
	if err := r.Seek(h.DataOffset); err != nil {
		return nil, err
	}

	if need := minStreamBytes(h); need > h.DataLength {
		return nil, newError(ErrTruncatedInput, h.DataOffset+h.DataLength,
			"%d samples need at least %d bytes of blocks, have %d", h.SampleCount, need, h.DataLength)
	}

	out := newPCMBuffer(h)

	var (
		st  decoderState
		err error
	)

	for st.done < h.SampleCount {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		st, err = decodeBlock(r, h, st, out)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// decodeBlock reads one block header with its optional GPS and tag fields,
// then up to BlockSize frames.
func decodeBlock(r *Reader, h *Header, st decoderState, out *PCMBuffer) (decoderState, error) {
	r.Align()
	off := r.Offset()

	marker, err := r.Uint32(binary.LittleEndian)
	if err != nil {
		return st, corruptFrame(off, err)
	}

	if marker != blockMarker {
		return st, newError(ErrCorruptFrame, off, "block marker 0x%08x, want 0x%08x", marker, blockMarker)
	}

	index, err := r.Uint32(binary.LittleEndian)
	if err != nil {
		return st, corruptFrame(off, err)
	}

	if int64(index) != int64(st.block) {
		return st, newError(ErrCorruptFrame, off+4, "block index %d, want %d", index, st.block)
	}

	if h.HasGPS() && st.block%h.SeekSize == 0 {
		lat, err := r.ReadSigned(gpsLatBits)
		if err != nil {
			return st, corruptFrame(off, err)
		}

		lon, err := r.ReadSigned(gpsLonBits)
		if err != nil {
			return st, corruptFrame(off, err)
		}

		out.Annotations.GPS = append(out.Annotations.GPS, newGPSFix(st.block, st.done, lat, lon))
	}

	if h.HasTags() {
		tag, err := r.ReadBits(tagBits)
		if err != nil {
			return st, corruptFrame(off, err)
		}

		out.Annotations.addTag(st.block, st.done, uint8(tag))
	}

	for f := 0; f < h.BlockSize && st.done < h.SampleCount; f++ {
		n := min(h.FrameSize, h.SampleCount-st.done)
		out.grow(st.done + n)

		st, err = decodeFrame(r, h, st, n, out.Data)
		if err != nil {
			return st, err
		}
	}

	st.block++

	return st, nil
}

// minStreamBytes returns a lower bound for the size of the block stream h
// declares: every block header with its GPS and tag fields, and one code size
// field per channel per frame.
func minStreamBytes(h *Header) int64 {
	blocks := int64(h.NumBlocks())
	frames := (int64(h.SampleCount) + int64(h.FrameSize) - 1) / int64(h.FrameSize)
	bits := frames * int64(h.NumChans) * int64(h.format.codeSizeBits)

	if h.HasGPS() {
		fixes := (blocks + int64(h.SeekSize) - 1) / int64(h.SeekSize)
		bits += fixes * (gpsLatBits + gpsLonBits)
	}

	if h.HasTags() {
		bits += blocks * tagBits
	}

	return blocks*8 + bits/8
}

// decodeFrame reads the per-channel code sizes and n interleaved samples per
// channel into dst, starting at sample st.done. A code size of zero marks a
// silent channel frame and resets that channel's predictor.
func decodeFrame(r *Reader, h *Header, st decoderState, n int, dst []int) (decoderState, error) {
	off := r.Offset()

	var k [maxChannels]uint

	for c := range h.NumChans {
		v, err := r.ReadBits(h.format.codeSizeBits)
		if err != nil {
			return st, corruptFrame(off, err)
		}

		k[c] = uint(v)
	}

	next := st

	for c := range h.NumChans {
		if k[c] == 0 {
			next.prev[c] = 0
		}
	}

	lossy := h.LossyBits()
	lo, hi := sampleRange(h.BitDepth)
	base := st.done * h.NumChans

	for i := range n {
		for c := range h.NumChans {
			pos := base + i*h.NumChans + c

			if k[c] == 0 {
				dst[pos] = 0
				continue
			}

			u, err := readGolomb(r, k[c])
			if err != nil {
				return st, corruptFrame(off, err)
			}

			s := next.prev[c] + unzigzag(u)

			v := s << lossy
			if v < lo || v > hi {
				return st, corruptFrame(off, newError(ErrDecodeRange, r.Offset(),
					"channel %d sample %d decodes to %d", c, st.done+i, v))
			}

			next.prev[c] = s
			dst[pos] = int(v)
		}
	}

	next.done += n

	return next, nil
}

// readGolomb reads one Golomb code with a k-bit remainder. The quotient is a
// run of alternating bits starting with 1; the first bit that breaks the
// alternation ends it.
func readGolomb(r *Reader, k uint) (uint64, error) {
	var q uint64

	want := uint32(1)

	for {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}

		if bit != want {
			break
		}

		q++
		want ^= 1

		if q > maxQuotient {
			return 0, newError(ErrCorruptFrame, r.Offset(), "unterminated Golomb quotient")
		}
	}

	rem, err := r.ReadBits(k)
	if err != nil {
		return 0, err
	}

	return q<<k | uint64(rem), nil
}

// unzigzag maps 0, 1, 2, 3, 4 to 0, -1, 1, -2, 2.
func unzigzag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

func sampleRange(bitDepth int) (int64, int64) {
	switch bitDepth {
	case 8:
		return math.MinInt8, math.MaxInt8
	case 24:
		return -1 << 23, 1<<23 - 1
	case 32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt16, math.MaxInt16
	}
}
