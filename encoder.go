package wac

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

// encodeBlockFrames is the number of frames serialized per write.
const encodeBlockFrames = 4096

var (
	errNilBuffer          = errors.New("can't add a nil buffer")
	errNilWriter          = errors.New("can't write to a nil writer")
	errChannelMismatch    = errors.New("buffer channel count does not match encoder")
	errTooManyFrames      = errors.New("more frames than declared")
	errFrameCountMismatch = errors.New("frame count does not match declaration")
	errUnsupportedDepth   = errors.New("unsupported bit depth")
	errNoChannels         = errors.New("encoder needs at least one channel")
	errDataTooLarge       = errors.New("audio data exceeds the 4 GiB RIFF limit")
	errSampleOutOfRange   = errors.New("sample out of range for bit depth")
	errAlreadyClosed      = errors.New("encoder already closed")
)

// Encoder writes LPCM data into a WAV container. The number of frames is
// declared up front so the header carries final sizes and the writer never
// needs to seek; w can be a pipe or a network stream.
type Encoder struct {
	w   io.Writer
	buf []byte

	SampleRate int
	BitDepth   int
	NumChans   int
	// NumFrames is the number of frames (samples per channel) that will be
	// written before Close.
	NumFrames int

	// Metadata, when set before the first Write, is stored in a LIST/INFO
	// chunk after the audio data.
	Metadata *Metadata

	WrittenBytes int
	frames       int
	list         *RawChunk
	wroteHeader  bool
	closed       bool
}

// NewEncoder creates an encoder for numFrames frames of integer PCM.
func NewEncoder(w io.Writer, sampleRate, bitDepth, numChans, numFrames int) *Encoder {
	return &Encoder{
		w:          w,
		SampleRate: sampleRate,
		BitDepth:   bitDepth,
		NumChans:   numChans,
		NumFrames:  numFrames,
	}
}

// DataSize returns the size of the data chunk payload.
func (e *Encoder) DataSize() int {
	return e.NumFrames * e.NumChans * bytesPerSample(e.BitDepth)
}

// FileSize returns the total size of the WAV stream the encoder produces.
func (e *Encoder) FileSize() int {
	return 8 + e.riffSize()
}

func (e *Encoder) riffSize() int {
	data := e.DataSize()
	size := 4 + 8 + fmtChunkSize + 8 + data + data%2

	if e.list != nil {
		size += e.list.encodedSize()
	}

	return size
}

// AddLE serializes and adds the passed value using little endian.
func (e *Encoder) AddLE(src any) error {
	e.WrittenBytes += binary.Size(src)

	err := binary.Write(e.w, binary.LittleEndian, src)
	if err != nil {
		return sinkWrite("little endian value", err)
	}

	return nil
}

// AddBE serializes and adds the passed value using big endian.
func (e *Encoder) AddBE(src any) error {
	e.WrittenBytes += binary.Size(src)

	err := binary.Write(e.w, binary.BigEndian, src)
	if err != nil {
		return sinkWrite("big endian value", err)
	}

	return nil
}

func (e *Encoder) writeBytes(b []byte, what string) error {
	n, err := e.w.Write(b)
	e.WrittenBytes += n

	if err != nil {
		return sinkWrite(what, err)
	}

	if n != len(b) {
		return sinkWrite(what, io.ErrShortWrite)
	}

	return nil
}

func (e *Encoder) writeHeader() error {
	if e.w == nil {
		return errNilWriter
	}

	switch e.BitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d", errUnsupportedDepth, e.BitDepth)
	}

	if e.NumChans < 1 {
		return fmt.Errorf("%w: %d", errNoChannels, e.NumChans)
	}

	if info := encodeInfoChunk(e.Metadata); info != nil {
		e.list = &RawChunk{ID: CIDList, Data: info}
	}

	if size := e.riffSize(); int64(size) > math.MaxUint32 {
		return fmt.Errorf("%w: RIFF size %d", errDataTooLarge, size)
	}

	e.wroteHeader = true

	hdr := make([]byte, 0, 44)
	hdr = append(hdr, riff.RiffID[:]...)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(e.riffSize()))
	hdr = append(hdr, riff.WavFormatID[:]...)
	hdr = append(hdr, riff.FmtID[:]...)
	hdr = binary.LittleEndian.AppendUint32(hdr, fmtChunkSize)
	hdr = newFmtChunk(e.SampleRate, e.BitDepth, e.NumChans).appendTo(hdr)
	hdr = append(hdr, riff.DataFormatID[:]...)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(e.DataSize()))

	return e.writeBytes(hdr, "header")
}

// Write encodes and writes the passed buffer to the underlying writer.
// Don't forget to Close() the encoder or the file won't be valid.
func (e *Encoder) Write(buf *audio.IntBuffer) error {
	if buf == nil {
		return errNilBuffer
	}

	if e.closed {
		return errAlreadyClosed
	}

	if buf.Format != nil && buf.Format.NumChannels != e.NumChans {
		return fmt.Errorf("%w: %d != %d", errChannelMismatch, buf.Format.NumChannels, e.NumChans)
	}

	if !e.wroteHeader {
		if err := e.writeHeader(); err != nil {
			return err
		}
	}

	frames := len(buf.Data) / e.NumChans
	if e.frames+frames > e.NumFrames {
		return fmt.Errorf("%w: %d > %d", errTooManyFrames, e.frames+frames, e.NumFrames)
	}

	lo, hi := sampleRange(e.BitDepth)
	step := encodeBlockFrames * e.NumChans
	data := buf.Data[:frames*e.NumChans]

	for start := 0; start < len(data); start += step {
		block := data[start:min(start+step, len(data))]

		e.buf = e.buf[:0]
		for _, v := range block {
			if int64(v) < lo || int64(v) > hi {
				return fmt.Errorf("%w: %d at %d bits", errSampleOutOfRange, v, e.BitDepth)
			}

			e.buf = appendSample(e.buf, v, e.BitDepth)
		}

		if err := e.writeBytes(e.buf, "audio data"); err != nil {
			return err
		}
	}

	e.frames += frames

	return nil
}

func appendSample(b []byte, v, bitDepth int) []byte {
	switch bitDepth {
	case 8:
		// 8-bit WAV samples are unsigned.
		return append(b, uint8(v+128))
	case 16:
		return binary.LittleEndian.AppendUint16(b, uint16(int16(v)))
	case 24:
		return append(b, audio.Int32toInt24LEBytes(int32(v))...)
	default:
		return binary.LittleEndian.AppendUint32(b, uint32(int32(v)))
	}
}

func (e *Encoder) writeRawChunk(chunk RawChunk) error {
	err := e.AddBE(chunk.ID)
	if err != nil {
		return fmt.Errorf("failed to write chunk id %q: %w", chunk.ID, err)
	}

	err = e.AddLE(uint32(len(chunk.Data)))
	if err != nil {
		return fmt.Errorf("failed to write chunk size %q: %w", chunk.ID, err)
	}

	if len(chunk.Data) > 0 {
		if err := e.writeBytes(chunk.Data, "chunk payload"); err != nil {
			return fmt.Errorf("failed to write chunk payload %q: %w", chunk.ID, err)
		}
	}

	if len(chunk.Data)%2 == 1 {
		if err := e.writeBytes([]byte{0}, "chunk padding"); err != nil {
			return fmt.Errorf("failed to write chunk padding %q: %w", chunk.ID, err)
		}
	}

	return nil
}

// Close checks the declared frame count, pads the data chunk and writes the
// metadata chunk. The underlying writer is NOT closed.
func (e *Encoder) Close() error {
	if e == nil || e.w == nil {
		return nil
	}

	if e.closed {
		return nil
	}

	if !e.wroteHeader {
		if err := e.writeHeader(); err != nil {
			return err
		}
	}

	e.closed = true

	if e.frames != e.NumFrames {
		return fmt.Errorf("%w: wrote %d, declared %d", errFrameCountMismatch, e.frames, e.NumFrames)
	}

	if e.DataSize()%2 == 1 {
		if err := e.writeBytes([]byte{0}, "data padding"); err != nil {
			return err
		}
	}

	// metadata goes last so readers that stop at the data chunk are not
	// tripped by it
	if e.list != nil {
		if err := e.writeRawChunk(*e.list); err != nil {
			return fmt.Errorf("failed to write metadata - %w", err)
		}
	}

	return nil
}
