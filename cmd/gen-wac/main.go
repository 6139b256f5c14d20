// This tool writes a sine tone as a WAC file, for trying out wac2wav without
// a recorder at hand.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/cwbudde/wac/internal/wactest"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("gen-wac", flag.ContinueOnError)

	output := flagSet.String("output", "output.wac", "filename to write to")
	frequency := flagSet.Float64("frequency", 440, "frequency in hertz to generate")
	length := flagSet.Float64("length", 5, "length in seconds of output file")
	sampleRate := flagSet.Int("rate", 24000, "sample rate in hertz")
	channels := flagSet.Int("channels", 1, "number of channels")
	lossy := flagSet.Uint("lossy", 0, "least significant bits to drop (0-15)")
	gps := flagSet.Bool("gps", false, "store a fixed GPS position every block")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if *channels < 1 || *channels > 8 {
		return fmt.Errorf("channels must be 1 to 8, got %d", *channels)
	}

	if *lossy > 15 {
		return fmt.Errorf("lossy must be 0 to 15, got %d", *lossy)
	}

	log.Printf("generating a %f sec sine wac at %f hz", *length, *frequency)

	numSamples := int(float64(*sampleRate) * *length)
	samples := make([]int16, numSamples**channels)

	for i := range numSamples {
		fv := math.Sin(float64(i) / float64(*sampleRate) * *frequency * 2 * math.Pi)

		for ch := range *channels {
			// later channels are attenuated so they can be told apart
			samples[i**channels+ch] = int16(fv * math.MaxInt16 / float64(ch+1))
		}
	}

	p := wactest.Default()
	p.NumChans = *channels
	p.SampleRate = *sampleRate
	p.LossyBits = *lossy
	p.FrameSize, p.BlockSize = 512, 8

	if *gps {
		p.GPS = []wactest.Fix{{Lat: 4542000, Lon: 7569000}}
	}

	src, err := wactest.Encode(p, samples)
	if err != nil {
		return err
	}

	err = os.WriteFile(*output, src, 0o644)
	if err != nil {
		return fmt.Errorf("error writing %s: %w", *output, err)
	}

	return nil
}
