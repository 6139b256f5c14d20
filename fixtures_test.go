package wac

import (
	"encoding/hex"
	"math"
	"math/rand"
	"strings"
	"testing"
)

// handWAC is a mono 8 kHz recording of six samples, assembled bit by bit:
// frame size 4, block size 2, one block, one seek entry pointing at word 14.
// Each code is written as quotient run, terminator and remainder: the first
// frame uses k=2 and 0|00 0|10 0|11 11|10, the second k=2 and 0|00 0|11.
const handWAC = "57416163" + "01" + "01" + "0400" + "0200" + "0000" + "401f0000" + "06000000" + "0100" + "0100" +
	"0e000000" +
	"0080010000000000" +
	"9f206010"

var handSamples = []int{0, 1, -1, 2, 2, 0}

// handWAV is the expected conversion of handWAC.
const handWAV = "52494646" + "30000000" + "57415645" +
	"666d7420" + "10000000" + "0100" + "0100" + "401f0000" + "803e0000" + "0200" + "1000" +
	"64617461" + "0c000000" +
	"00000100ffff020002000000"

// stereoWAC is a triggered 8 kHz stereo recording of six samples per
// channel: frame size 2, block size 3, one block. Codes are interleaved per
// sample, then per channel. Frame by frame, with code sizes left|right:
//
//	k=2|2  L 0|10  R 0|01  L 1 1|00  R 0|11       L 1 3   R -1 -3
//	k=1|0  L 0|1   L 0|0                          L 2 2   R 0 0 (silent)
//	k=1|2  L 1 1|1 R 1 1|00  L 1 1|0  R 0|00      L 0 1   R 2 2
//
// The right channel of the last frame codes +2 against the predictor reset
// by the silent frame, not against -3.
const stereoWAC = "57416163" + "01" + "02" + "0200" + "0300" + "1000" + "401f0000" + "06000000" + "0100" + "0100" +
	"0e000000" +
	"0080010000000000" +
	"472282187c0900c0"

// stereoSamples is stereoWAC's interleaved content.
var stereoSamples = []int{1, -1, 3, -3, 2, 0, 2, 0, 0, 2, 1, 2}

// stereoWAV is the expected conversion of stereoWAC.
const stereoWAV = "52494646" + "3c000000" + "57415645" +
	"666d7420" + "10000000" + "0100" + "0200" + "401f0000" + "007d0000" + "0400" + "1000" +
	"64617461" + "18000000" +
	"0100ffff" + "0300fdff" + "02000000" + "02000000" + "00000200" + "01000200"

// rangeWAC holds one sample whose code decodes to +32768: k=15, quotient 2,
// remainder 0.
const rangeWAC = "57416163" + "01" + "01" + "0100" + "0100" + "0000" + "401f0000" + "01000000" + "0100" + "0000" +
	"0080010000000000" +
	"00f80000"

// hugeWAC is a bare header declaring 8 channels of 2^28 samples.
const hugeWAC = "57416163" + "01" + "08" + "0400" + "0200" + "0000" + "401f0000" + "00000010" + "0100" + "0000"

func mustHex(t testing.TB, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("bad hex fixture: %v", err)
	}

	return b
}

// testSignal returns n interleaved frames: a sine per channel with a little
// deterministic noise.
func testSignal(n, chans int, amp float64) []int16 {
	rng := rand.New(rand.NewSource(int64(n*31 + chans)))
	out := make([]int16, n*chans)

	for i := range n {
		for c := range chans {
			v := amp*math.Sin(float64(i)*0.05*float64(c+1)) + rng.Float64()*200 - 100
			v = math.Max(math.MinInt16, math.Min(math.MaxInt16, v))
			out[i*chans+c] = int16(v)
		}
	}

	return out
}

// expectedSamples applies the lossy shift the encoder uses.
func expectedSamples(in []int16, lossy uint) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v) >> lossy << lossy
	}

	return out
}
