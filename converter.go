package wac

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ausocean/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Observer receives the outcome of every conversion. Implementations must be
// safe for concurrent use.
type Observer interface {
	Observe(res *Result, err error, elapsed time.Duration)
}

// Converter turns WAC recordings into WAV files. The zero value is ready to
// use and may be shared by concurrent conversions.
type Converter struct {
	// Log receives progress and diagnostics. Nil discards them.
	Log logging.Logger
	// Info adds a LIST/INFO chunk describing the recording.
	Info bool
	// Verify reads every file written by ConvertFile back before it is
	// renamed into place.
	Verify bool
	// Observer, when set, is notified after each conversion.
	Observer Observer
	// MaxSamples, when positive, rejects recordings declaring more samples
	// over all channels with ErrTooLarge before anything is decoded.
	MaxSamples int
}

// Result describes a successful conversion.
type Result struct {
	Header      *Header
	Annotations Annotations
	InputBytes  int
	OutputBytes int
	// TrailingBytes counts source bytes after the last block needed.
	TrailingBytes int
}

var discardLog = logging.New(logging.Error, io.Discard, true)

func (c *Converter) log() logging.Logger {
	if c == nil || c.Log == nil {
		return discardLog
	}

	return c.Log
}

// Convert reads a whole WAC stream from src and writes the WAV file to dst.
func Convert(src io.Reader, dst io.Writer) error {
	b, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}

	_, err = (&Converter{}).Convert(context.Background(), b, dst)

	return err
}

// Convert decodes src completely before anything is written to dst, so a
// format error leaves dst untouched. A sink error may leave partial output.
func (c *Converter) Convert(ctx context.Context, src []byte, dst io.Writer) (*Result, error) {
	return c.convert(ctx, src, dst, nil)
}

func (c *Converter) convert(ctx context.Context, src []byte, dst io.Writer, md *Metadata) (res *Result, err error) {
	start := time.Now()

	defer func() {
		if c != nil && c.Observer != nil {
			c.Observer.Observe(res, err, time.Since(start))
		}
	}()

	h, err := ParseHeader(NewReader(src))
	if err != nil {
		return nil, err
	}

	if c != nil && c.MaxSamples > 0 && h.SampleCount*h.NumChans > c.MaxSamples {
		return nil, newError(ErrTooLarge, 16, "%d samples over %d channels, limit %d",
			h.SampleCount, h.NumChans, c.MaxSamples)
	}

	c.log().Debug("parsed header",
		"version", h.Version, "channels", h.NumChans, "rate", h.SampleRate,
		"samples", h.SampleCount, "frameSize", h.FrameSize, "blockSize", h.BlockSize,
		"flags", fmt.Sprintf("0x%04x", h.Flags), "seekEntries", len(h.SeekTable))

	r := NewReader(src)

	pcm, err := DecodeContext(ctx, r, h)
	if err != nil {
		return nil, err
	}

	res = &Result{
		Header:        h,
		Annotations:   pcm.Annotations,
		InputBytes:    len(src),
		TrailingBytes: r.Remaining(),
	}

	if res.TrailingBytes > 0 {
		c.log().Warning("trailing bytes after last block", "bytes", res.TrailingBytes, "offset", r.Offset())
	}

	enc := NewEncoder(dst, h.SampleRate, h.BitDepth, h.NumChans, h.SampleCount)

	if c != nil && c.Info {
		full := NewMetadata(h, pcm.Annotations)
		if md != nil {
			full.Title = md.Title
			full.CreationDate = md.CreationDate
		}

		enc.Metadata = full
	}

	if err := enc.Write(pcm.IntBuffer); err != nil {
		return nil, err
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}

	res.OutputBytes = enc.WrittenBytes

	return res, nil
}

// ConvertFile converts srcPath into dstPath. The output is written to a
// temporary file next to dstPath and renamed into place only after it is
// complete, so dstPath never holds a partial file.
func (c *Converter) ConvertFile(ctx context.Context, srcPath, dstPath string) (*Result, error) {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", srcPath, err)
	}

	md := &Metadata{Title: filepath.Base(srcPath)}
	if fi, err := os.Stat(srcPath); err == nil {
		md.CreationDate = fi.ModTime().UTC().Format(time.DateOnly)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dstPath), "."+filepath.Base(dstPath)+".*.tmp")
	if err != nil {
		return nil, sinkWrite("create temporary file", err)
	}

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)

	res, err := c.convert(ctx, src, bw, md)
	if err != nil {
		return nil, err
	}

	if err = bw.Flush(); err != nil {
		return nil, sinkWrite("flush", err)
	}

	if err = tmp.Sync(); err != nil {
		return nil, sinkWrite("sync", err)
	}

	if c != nil && c.Verify {
		err = VerifyWAV(tmp, VerifyParams{
			SampleRate: res.Header.SampleRate,
			BitDepth:   res.Header.BitDepth,
			NumChans:   res.Header.NumChans,
			NumFrames:  res.Header.SampleCount,
		})
		if err != nil {
			return nil, err
		}
	}

	if err = tmp.Close(); err != nil {
		return nil, sinkWrite("close", err)
	}

	if err = os.Rename(tmp.Name(), dstPath); err != nil {
		return nil, sinkWrite("rename into place", err)
	}

	c.log().Info("converted", "src", srcPath, "dst", dstPath,
		"samples", res.Header.SampleCount, "channels", res.Header.NumChans,
		"duration", res.Header.Duration().String(), "bytes", res.OutputBytes)

	return res, nil
}

// Job is one file conversion for ConvertAll.
type Job struct {
	Src string
	Dst string
}

// JobResult is the outcome of a Job.
type JobResult struct {
	Job     Job
	Result  *Result
	Err     error
	Elapsed time.Duration
}

// ConvertAll runs the jobs on at most workers goroutines. A failed job does
// not stop the others; results are returned in job order. Jobs that have not
// started when ctx is done fail with the context error.
func (c *Converter) ConvertAll(ctx context.Context, jobs []Job, workers int) []JobResult {
	if workers < 1 {
		workers = 1
	}

	results := make([]JobResult, len(jobs))

	var g errgroup.Group
	g.SetLimit(workers)

	for i, job := range jobs {
		g.Go(func() error {
			start := time.Now()
			results[i].Job = job

			if err := ctx.Err(); err != nil {
				results[i].Err = err

				return nil
			}

			res, err := c.ConvertFile(ctx, job.Src, job.Dst)
			results[i].Result = res
			results[i].Elapsed = time.Since(start)

			if err != nil {
				results[i].Err = err
				c.log().Error("conversion failed", "src", job.Src, "kind", ErrorKind(err), "error", err.Error())
			}

			return nil
		})
	}

	_ = g.Wait()

	return results
}
