package wac

import (
	"fmt"
	"slices"

	"github.com/go-audio/audio"
)

// gpsScale converts the fixed-point GPS fields to degrees.
const gpsScale = 100000

// initialSamples caps the per-channel capacity reserved before decoding.
const initialSamples = 1 << 16

// PCMBuffer is the decoded content of a WAC file: interleaved integer samples
// and the annotations carried by block headers.
type PCMBuffer struct {
	*audio.IntBuffer
	Annotations Annotations
}

func newPCMBuffer(h *Header) *PCMBuffer {
	return &PCMBuffer{
		IntBuffer: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: h.NumChans,
				SampleRate:  h.SampleRate,
			},
			Data:           make([]int, 0, min(h.SampleCount, initialSamples)*h.NumChans),
			SourceBitDepth: h.BitDepth,
		},
	}
}

// grow extends Data to hold n samples per channel. The buffer follows the
// decoded frames instead of trusting the header's sample count.
func (b *PCMBuffer) grow(n int) {
	want := n * b.Format.NumChannels
	if want > len(b.Data) {
		b.Data = slices.Grow(b.Data, want-len(b.Data))[:want]
	}
}

// Annotations holds GPS fixes and button tags found in block headers.
type Annotations struct {
	GPS  []GPSFix
	Tags []Tag
}

// GPSFix is a position recorded in the header of a block.
type GPSFix struct {
	Block int
	// SampleOffset is the first sample per channel of Block.
	SampleOffset int
	// Latitude is in degrees, positive north.
	Latitude float64
	// Longitude is in degrees, positive east.
	Longitude float64
}

func (g GPSFix) String() string {
	ns, ew := 'N', 'E'
	lat, lon := g.Latitude, g.Longitude

	if lat < 0 {
		ns, lat = 'S', -lat
	}

	if lon < 0 {
		ew, lon = 'W', -lon
	}

	return fmt.Sprintf("%.5f%c %.5f%c", lat, ns, lon, ew)
}

// newGPSFix converts the raw block header fields. The recorder stores
// longitude positive west.
func newGPSFix(block, sampleOffset int, lat, lon int32) GPSFix {
	return GPSFix{
		Block:        block,
		SampleOffset: sampleOffset,
		Latitude:     float64(lat) / gpsScale,
		Longitude:    -float64(lon) / gpsScale,
	}
}

// Tag is a run of consecutive blocks written while a recorder button was held.
type Tag struct {
	// Button is 1 to 4 for buttons A to D.
	Button     uint8
	FirstBlock int
	LastBlock  int
	// SampleOffset is the first sample per channel of FirstBlock.
	SampleOffset int
}

// Label returns the button letter.
func (t Tag) Label() string {
	if t.Button < 1 || t.Button > 4 {
		return "?"
	}

	return string(rune('A' + t.Button - 1))
}

// addTag records the tag field of block. Consecutive blocks with the same
// button extend the current run.
func (a *Annotations) addTag(block, sampleOffset int, button uint8) {
	if button == 0 {
		return
	}

	if n := len(a.Tags); n > 0 {
		last := &a.Tags[n-1]
		if last.Button == button && last.LastBlock == block-1 {
			last.LastBlock = block

			return
		}
	}

	a.Tags = append(a.Tags, Tag{
		Button:       button,
		FirstBlock:   block,
		LastBlock:    block,
		SampleOffset: sampleOffset,
	})
}

// NumSamples returns the number of samples per channel.
func (b *PCMBuffer) NumSamples() int {
	if b == nil || b.IntBuffer == nil {
		return 0
	}

	return b.NumFrames()
}
