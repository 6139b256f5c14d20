package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/wac"
)

func TestRunWritesDecodableFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "tone.wac")

	err := run([]string{"-output", out, "-length", "0.1", "-rate", "8000", "-channels", "2", "-lossy", "2", "-gps"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	src, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	h, err := wac.ParseHeader(wac.NewReader(src))
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}

	if h.NumChans != 2 || h.SampleRate != 8000 || h.SampleCount != 800 || h.LossyBits() != 2 || !h.HasGPS() {
		t.Fatalf("unexpected header %+v", h)
	}

	pcm, err := wac.Decode(wac.NewReader(src), h)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(pcm.Annotations.GPS) == 0 || pcm.Annotations.GPS[0].String() != "45.42000N 75.69000W" {
		t.Fatalf("GPS=%+v", pcm.Annotations.GPS)
	}

	for i, v := range pcm.Data {
		if v&3 != 0 {
			t.Fatalf("sample[%d]=%d keeps dropped bits", i, v)
		}
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	dir := t.TempDir()

	tests := [][]string{
		{"-output", filepath.Join(dir, "a.wac"), "-channels", "0"},
		{"-output", filepath.Join(dir, "b.wac"), "-channels", "9"},
		{"-output", filepath.Join(dir, "c.wac"), "-lossy", "16"},
		{"-output", filepath.Join(dir, "missing", "d.wac"), "-length", "0.01"},
	}

	for _, args := range tests {
		if err := run(args); err == nil {
			t.Fatalf("run(%v) succeeded", args)
		}
	}
}
