package wac

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/go-audio/audio"
)

func ExampleConvert() {
	src, err := hex.DecodeString(handWAC)
	if err != nil {
		log.Fatal(err)
	}

	var out bytes.Buffer
	if err := Convert(bytes.NewReader(src), &out); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%d byte WAC -> %d byte WAV\n", len(src), out.Len())
	// Output: 40 byte WAC -> 56 byte WAV
}

func ExampleParseHeader() {
	src, err := hex.DecodeString(handWAC)
	if err != nil {
		log.Fatal(err)
	}

	h, err := ParseHeader(NewReader(src))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("v%d %d Hz, %d channel, %d samples in %d block(s)\n",
		h.Version, h.SampleRate, h.NumChans, h.SampleCount, h.NumBlocks())
	// Output: v1 8000 Hz, 1 channel, 6 samples in 1 block(s)
}

func ExampleDecode() {
	src, err := hex.DecodeString(handWAC)
	if err != nil {
		log.Fatal(err)
	}

	h, err := ParseHeader(NewReader(src))
	if err != nil {
		log.Fatal(err)
	}

	buf, err := Decode(NewReader(src), h)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(buf.Data)
	// Output: [0 1 -1 2 2 0]
}

func ExampleEncoder_Write() {
	var out bytes.Buffer

	enc := NewEncoder(&out, 48000, 24, 2, 2)

	err := enc.Write(&audio.IntBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: 48000},
		Data:   []int{1, -1, 8388607, -8388608},
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := enc.Close(); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("% x\n", out.Bytes()[44:])
	// Output: 01 00 00 ff ff ff ff ff 7f 00 00 80
}
