// This tool prints the header of a WAC file together with the GPS fixes and
// button tags stored in its blocks.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cwbudde/wac"
)

const missingPathMessage = "You must pass the path of the WAC file to inspect"

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

var errMissingPath = errors.New("missing path argument")

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("wacinfo", flag.ContinueOnError)

	headerOnly := flagSet.Bool("header", false, "only print the header, do not decode the blocks")
	seek := flagSet.Bool("seek", false, "print every seek table entry")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if flagSet.NArg() < 1 {
		return errMissingPath
	}

	src, err := os.ReadFile(flagSet.Arg(0))
	if err != nil {
		return err
	}

	h, err := wac.ParseHeader(wac.NewReader(src))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Version: %d\n", h.Version)
	fmt.Fprintf(out, "Channels: %d\n", h.NumChans)
	fmt.Fprintf(out, "SampleRate: %d\n", h.SampleRate)
	fmt.Fprintf(out, "Samples: %d\n", h.SampleCount)
	fmt.Fprintf(out, "Duration: %s\n", h.Duration())
	fmt.Fprintf(out, "BitDepth: %d\n", h.BitDepth)
	fmt.Fprintf(out, "FrameSize: %d\n", h.FrameSize)
	fmt.Fprintf(out, "BlockSize: %d\n", h.BlockSize)
	fmt.Fprintf(out, "Blocks: %d\n", h.NumBlocks())
	fmt.Fprintf(out, "Flags: 0x%02x (lossy %d, triggered %t, gps %t, tags %t)\n",
		h.Flags, h.LossyBits(), h.Triggered(), h.HasGPS(), h.HasTags())
	fmt.Fprintf(out, "SeekTable: %d entries every %d blocks\n", len(h.SeekTable), h.SeekSize)

	if *seek {
		for i := range h.SeekTable {
			off, _ := h.SeekOffset(i)
			fmt.Fprintf(out, "\tblock %d at byte %d\n", i*h.SeekSize, off)
		}
	}

	if *headerOnly {
		return nil
	}

	pcm, err := wac.Decode(wac.NewReader(src), h)
	if err != nil {
		return err
	}

	if h.HasGPS() {
		fmt.Fprintf(out, "GPS: %d fixes\n", len(pcm.Annotations.GPS))

		for _, g := range pcm.Annotations.GPS {
			fmt.Fprintf(out, "\tblock %d sample %d: %s\n", g.Block, g.SampleOffset, g)
		}
	}

	if h.HasTags() {
		fmt.Fprintf(out, "Tags: %d\n", len(pcm.Annotations.Tags))

		for _, tag := range pcm.Annotations.Tags {
			fmt.Fprintf(out, "\t%s blocks %d-%d sample %d\n", tag.Label(), tag.FirstBlock, tag.LastBlock, tag.SampleOffset)
		}
	}

	return nil
}
