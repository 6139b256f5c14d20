package wac

import "encoding/binary"

const (
	wavFormatPCM = 1

	// fmtChunkSize is the payload size of a plain PCM fmt chunk.
	fmtChunkSize = 16
)

// FmtChunk stores the fields of a PCM WAV fmt chunk.
type FmtChunk struct {
	FormatTag      uint16
	NumChannels    uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
}

// newFmtChunk derives the fmt fields for integer PCM.
func newFmtChunk(sampleRate, bitDepth, numChans int) FmtChunk {
	blockAlign := numChans * bytesPerSample(bitDepth)

	return FmtChunk{
		FormatTag:      wavFormatPCM,
		NumChannels:    uint16(numChans),
		SampleRate:     uint32(sampleRate),
		AvgBytesPerSec: uint32(sampleRate * blockAlign),
		BlockAlign:     uint16(blockAlign),
		BitsPerSample:  uint16(bitDepth),
	}
}

// appendTo serializes the chunk payload.
func (f FmtChunk) appendTo(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, f.FormatTag)
	b = binary.LittleEndian.AppendUint16(b, f.NumChannels)
	b = binary.LittleEndian.AppendUint32(b, f.SampleRate)
	b = binary.LittleEndian.AppendUint32(b, f.AvgBytesPerSec)
	b = binary.LittleEndian.AppendUint16(b, f.BlockAlign)

	return binary.LittleEndian.AppendUint16(b, f.BitsPerSample)
}

func bytesPerSample(bitDepth int) int {
	return (bitDepth + 7) / 8
}
