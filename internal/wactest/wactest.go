// Package wactest builds WAC files from PCM samples. It exists to produce
// fixtures for tests and for the gen-wac tool; it is not a production encoder.
package wactest

import (
	"encoding/binary"
	"fmt"
)

const (
	headerSize  = 24
	blockMarker = 0x00018000
	maxCodeSize = 15
)

// Fix is a raw GPS block field: 1/100000 degree units, latitude positive
// north, longitude positive west.
type Fix struct {
	Lat int32
	Lon int32
}

// Params describes the file to build.
type Params struct {
	Version    uint8
	NumChans   int
	FrameSize  int
	BlockSize  int
	SampleRate int
	LossyBits  uint
	// Triggered enables zero frames for silent channel frames.
	Triggered bool
	// SeekSize is the number of blocks per seek table entry. Zero means 1.
	SeekSize int
	// GPS, when not nil, is written every SeekSize blocks. Entry i is used
	// for block i*SeekSize; the last entry repeats.
	GPS []Fix
	// Tags, when not nil, holds the tag of each block. Missing entries are 0.
	Tags []uint8
}

// Default returns mono 16 kHz parameters with small frames and blocks.
func Default() Params {
	return Params{
		Version:    1,
		NumChans:   1,
		FrameSize:  32,
		BlockSize:  4,
		SampleRate: 16000,
		SeekSize:   1,
	}
}

func (p Params) flags() uint16 {
	f := uint16(p.LossyBits & 0x0f)
	if p.Triggered {
		f |= 0x10
	}

	if p.GPS != nil {
		f |= 0x20
	}

	if p.Tags != nil {
		f |= 0x40
	}

	return f
}

// Encode compresses interleaved samples. Each sample is shifted right by
// LossyBits before coding, so the decoder returns it with those bits cleared.
func Encode(p Params, samples []int16) ([]byte, error) {
	if p.NumChans <= 0 || p.FrameSize <= 0 || p.BlockSize <= 0 {
		return nil, fmt.Errorf("invalid layout %d channels, frame %d, block %d", p.NumChans, p.FrameSize, p.BlockSize)
	}

	if len(samples)%p.NumChans != 0 {
		return nil, fmt.Errorf("%d samples is not a multiple of %d channels", len(samples), p.NumChans)
	}

	if p.SeekSize == 0 {
		p.SeekSize = 1
	}

	count := len(samples) / p.NumChans
	spb := p.FrameSize * p.BlockSize
	numBlocks := (count + spb - 1) / spb
	seekEntries := (numBlocks + p.SeekSize - 1) / p.SeekSize
	dataOffset := headerSize + 4*seekEntries

	hdr := make([]byte, 0, dataOffset)
	hdr = append(hdr, 'W', 'A', 'a', 'c', p.Version, uint8(p.NumChans))
	hdr = binary.LittleEndian.AppendUint16(hdr, uint16(p.FrameSize))
	hdr = binary.LittleEndian.AppendUint16(hdr, uint16(p.BlockSize))
	hdr = binary.LittleEndian.AppendUint16(hdr, p.flags())
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(p.SampleRate))
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(count))
	hdr = binary.LittleEndian.AppendUint16(hdr, uint16(p.SeekSize))
	hdr = binary.LittleEndian.AppendUint16(hdr, uint16(seekEntries))

	seek := make([]uint32, 0, seekEntries)
	prev := make([]int32, p.NumChans)
	w := &BitWriter{}
	done := 0

	for block := 0; done < count; block++ {
		w.Align()

		if block%p.SeekSize == 0 {
			seek = append(seek, uint32((dataOffset+w.Len())/2))
		}

		w.WriteUint32(blockMarker)
		w.WriteUint32(uint32(block))

		if p.GPS != nil && block%p.SeekSize == 0 {
			fix := Fix{}
			if len(p.GPS) > 0 {
				fix = p.GPS[min(block/p.SeekSize, len(p.GPS)-1)]
			}

			w.WriteBits(uint32(fix.Lat), 25)
			w.WriteBits(uint32(fix.Lon), 26)
		}

		if p.Tags != nil {
			var tag uint8
			if block < len(p.Tags) {
				tag = p.Tags[block]
			}

			w.WriteBits(uint32(tag), 4)
		}

		for f := 0; f < p.BlockSize && done < count; f++ {
			n := min(p.FrameSize, count-done)
			encodeFrame(w, p, samples[done*p.NumChans:(done+n)*p.NumChans], prev)
			done += n
		}
	}

	for _, off := range seek {
		hdr = binary.LittleEndian.AppendUint32(hdr, off)
	}

	return append(hdr, w.Bytes()...), nil
}

// encodeFrame writes one frame of interleaved samples and updates prev.
func encodeFrame(w *BitWriter, p Params, frame []int16, prev []int32) {
	nc := p.NumChans
	n := len(frame) / nc
	codes := make([][]uint32, nc)
	sizes := make([]uint, nc)

	for c := range nc {
		codes[c] = make([]uint32, n)
		silent := true
		last := prev[c]

		for i := range n {
			v := int32(frame[i*nc+c]) >> p.LossyBits
			if v != 0 {
				silent = false
			}

			codes[c][i] = zigzag(v - last)
			last = v
		}

		if p.Triggered && silent {
			sizes[c] = 0
			prev[c] = 0

			continue
		}

		sizes[c] = bestCodeSize(codes[c])
		prev[c] = last
	}

	for c := range nc {
		w.WriteBits(uint32(sizes[c]), 4)
	}

	for i := range n {
		for c := range nc {
			if sizes[c] == 0 {
				continue
			}

			w.WriteGolomb(codes[c][i], sizes[c])
		}
	}
}

// bestCodeSize picks the remainder width with the fewest total bits.
func bestCodeSize(codes []uint32) uint {
	best, bestLen := uint(1), -1

	for k := uint(1); k <= maxCodeSize; k++ {
		total := 0
		for _, u := range codes {
			total += GolombLen(u, k)
		}

		if bestLen < 0 || total < bestLen {
			best, bestLen = k, total
		}
	}

	return best
}

func zigzag(d int32) uint32 {
	return uint32(d<<1) ^ uint32(d>>31)
}
