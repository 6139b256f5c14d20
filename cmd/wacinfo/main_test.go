package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/wac"
	"github.com/cwbudde/wac/internal/wactest"
)

func TestRunMissingPath(t *testing.T) {
	if err := run(nil, &bytes.Buffer{}); !errors.Is(err, errMissingPath) {
		t.Fatalf("run(nil)=%v, want errMissingPath", err)
	}
}

func TestRunPrintsAnnotations(t *testing.T) {
	p := wactest.Default()
	p.NumChans, p.SeekSize = 2, 2
	p.GPS = []wactest.Fix{{Lat: 4512345, Lon: 7512345}}
	p.Tags = []uint8{0, 2, 2}

	src, err := wactest.Encode(p, make([]int16, 2*300))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "rec.wac")
	if err := os.WriteFile(path, src, 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run([]string{"-seek", path}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, want := range []string{
		"Channels: 2",
		"Samples: 300",
		"Blocks: 3",
		"SeekTable: 2 entries every 2 blocks",
		"block 0 at byte 32",
		"GPS: 2 fixes",
		"45.12345N 75.12345W",
		"Tags: 1",
		"B blocks 1-2 sample 128",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output misses %q:\n%s", want, out.String())
		}
	}
}

func TestRunHeaderOnly(t *testing.T) {
	src, err := wactest.Encode(wactest.Default(), make([]int16, 64))
	if err != nil {
		t.Fatal(err)
	}

	// a damaged block is not read with -header
	src = src[:len(src)-2]

	path := filepath.Join(t.TempDir(), "rec.wac")
	if err := os.WriteFile(path, src, 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run([]string{"-header", path}, &out); err != nil {
		t.Fatalf("run -header: %v", err)
	}

	if strings.Contains(out.String(), "GPS") {
		t.Fatalf("unexpected block output:\n%s", out.String())
	}

	if err := run([]string{path}, &bytes.Buffer{}); !wac.IsFormatError(err) {
		t.Fatalf("run=%v, want a format error", err)
	}
}
