package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/wac/internal/wactest"
)

func writeWAC(t *testing.T, path string, n int) []byte {
	t.Helper()

	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(4000 * math.Sin(float64(i)/9))
	}

	src, err := wactest.Encode(wactest.Default(), samples)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, src, 0o644))

	return src
}

func TestRunConvertsDirectory(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "wav")

	writeWAC(t, filepath.Join(dir, "b.wac"), 300)
	writeWAC(t, filepath.Join(dir, "a.WAC"), 100)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	var out bytes.Buffer

	err := run([]string{"-out", outDir, "-j", "2", "-verify", "-level", "error", dir}, &out)
	require.NoError(t, err)

	for name, frames := range map[string]int{"a.wav": 100, "b.wav": 300} {
		f, err := os.Open(filepath.Join(outDir, name))
		require.NoError(t, err)

		dec := wav.NewDecoder(f)
		buf, err := dec.FullPCMBuffer()
		f.Close()
		require.NoError(t, err, name)
		assert.Len(t, buf.Data, frames, name)
		assert.EqualValues(t, 16000, dec.SampleRate)
	}

	assert.Contains(t, out.String(), "a.wav")
	assert.NotContains(t, out.String(), "notes")
}

func TestRunSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "rec.wac")
	dst := filepath.Join(dir, "rec.wav")

	writeWAC(t, src, 50)
	require.NoError(t, os.WriteFile(dst, []byte("keep"), 0o644))

	var out bytes.Buffer

	require.NoError(t, run([]string{"-level", "error", src}, &out))
	assert.Contains(t, out.String(), "skip")

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(got))

	out.Reset()
	require.NoError(t, run([]string{"-force", "-info", "-level", "error", src}, &out))

	got, err = os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(got[:4]))
	assert.Contains(t, string(got), "LIST")
}

func TestRunReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.wac")
	bad := filepath.Join(dir, "bad.wac")

	writeWAC(t, good, 40)
	require.NoError(t, os.WriteFile(bad, []byte("WAac\x09"), 0o644))

	var out bytes.Buffer

	err := run([]string{"-log", filepath.Join(dir, "wac2wav.log"), good, bad}, &out)
	require.ErrorIs(t, err, errConversions)
	assert.Contains(t, out.String(), "FAIL "+bad)

	_, err = os.Stat(filepath.Join(dir, "good.wav"))
	assert.NoError(t, err)

	logs, err := os.ReadFile(filepath.Join(dir, "wac2wav.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logs), "conversion failed")
}

func TestRunStdin(t *testing.T) {
	src, err := wactest.Encode(wactest.Default(), []int16{1, 2, 3})
	require.NoError(t, err)

	old := stdin
	stdin = bytes.NewReader(src)
	t.Cleanup(func() { stdin = old })

	var out bytes.Buffer

	require.NoError(t, run([]string{"-"}, &out))
	assert.Equal(t, 44+6, out.Len())
}

func TestRunArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no input", nil, errNoInput},
		{"bad level", []string{"-level", "loud", "x.wac"}, errBadLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, &bytes.Buffer{})
			require.ErrorIs(t, err, tt.want)
		})
	}

	err := run([]string{filepath.Join(t.TempDir(), "missing.wac")}, &bytes.Buffer{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		src, dir, want string
	}{
		{"rec/a.wac", "", filepath.Join("rec", "a.wav")},
		{"rec/a.WAC", "out", filepath.Join("out", "a.wav")},
		{"b", "", "b.wav"},
	}

	for _, tt := range tests {
		if got := outputPath(tt.src, tt.dir); got != tt.want {
			t.Fatalf("outputPath(%q,%q)=%q, want %q", tt.src, tt.dir, got, tt.want)
		}
	}
}
