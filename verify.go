package wac

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

// VerifyParams is what a produced WAV file must declare.
type VerifyParams struct {
	SampleRate int
	BitDepth   int
	NumChans   int
	NumFrames  int
}

// VerifyWAV reads a WAV stream back with an independent decoder and checks
// its format and data size. A mismatch means the sink did not keep what was
// written and is reported as ErrSinkWrite.
func VerifyWAV(r io.ReadSeeker, want VerifyParams) error {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return sinkWrite("rewind for verification", err)
	}

	dec := wav.NewDecoder(r)
	dec.ReadInfo()

	if err := dec.Err(); err != nil {
		return sinkWrite("read back header", err)
	}

	if err := dec.FwdToPCM(); err != nil {
		return sinkWrite("read back data chunk", err)
	}

	wantSize := want.NumFrames * want.NumChans * bytesPerSample(want.BitDepth)

	checks := []struct {
		name      string
		got, want int
	}{
		{"format tag", int(dec.WavAudioFormat), wavFormatPCM},
		{"channels", int(dec.NumChans), want.NumChans},
		{"sample rate", int(dec.SampleRate), want.SampleRate},
		{"bit depth", int(dec.BitDepth), want.BitDepth},
		{"data size", int(dec.PCMSize), wantSize},
	}

	for _, c := range checks {
		if c.got != c.want {
			return sinkWrite("verify", fmt.Errorf("%s is %d, want %d", c.name, c.got, c.want))
		}
	}

	return nil
}
