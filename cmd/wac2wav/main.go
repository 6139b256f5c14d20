// This tool converts WAC recordings into WAV files. Each file is written next
// to its source unless -out names a directory. Directories given as
// arguments are scanned for .wac files; "-" converts stdin to stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cwbudde/wac"
)

const usage = "usage: wac2wav [flags] file.wac|dir|- ..."

// Log file rotation.
const (
	logMaxSize   = 50 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
)

var logLevels = map[string]int8{
	"debug":   logging.Debug,
	"info":    logging.Info,
	"warning": logging.Warning,
	"error":   logging.Error,
}

var (
	errNoInput     = errors.New("no input files")
	errBadLevel    = errors.New("unknown log level")
	errConversions = errors.New("conversions failed")
)

// stdin is read when the only argument is "-".
var stdin io.Reader = os.Stdin

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errNoInput) {
		fmt.Println(usage)
		os.Exit(2)
	}

	log.Fatal(err)
}

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("wac2wav", flag.ContinueOnError)

	outDir := flagSet.String("out", "", "directory for the WAV files (default: next to each source)")
	workers := flagSet.Int("j", runtime.NumCPU(), "number of files converted in parallel")
	info := flagSet.Bool("info", false, "add a LIST/INFO chunk with the recording details")
	verify := flagSet.Bool("verify", false, "read every WAV file back before keeping it")
	force := flagSet.Bool("force", false, "overwrite existing WAV files")
	level := flagSet.String("level", "info", "log level: debug, info, warning or error")
	logPath := flagSet.String("log", "", "write logs to this file, with rotation, instead of stderr")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	lvl, ok := logLevels[strings.ToLower(*level)]
	if !ok {
		return fmt.Errorf("%w: %q", errBadLevel, *level)
	}

	var logOut io.Writer = os.Stderr

	if *logPath != "" {
		fileLog := &lumberjack.Logger{
			Filename:   *logPath,
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackup,
			MaxAge:     logMaxAge,
		}
		defer fileLog.Close()

		logOut = fileLog
	}

	logger := logging.New(lvl, logOut, true)

	conv := &wac.Converter{Log: logger, Info: *info, Verify: *verify}

	if flagSet.NArg() == 1 && flagSet.Arg(0) == "-" {
		src, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}

		_, err = conv.Convert(context.Background(), src, out)

		return err
	}

	inputs, err := expandInputs(flagSet.Args())
	if err != nil {
		return err
	}

	if len(inputs) == 0 {
		return errNoInput
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			return fmt.Errorf("error creating %s: %w", *outDir, err)
		}
	}

	var jobs []wac.Job

	for _, src := range inputs {
		dst := outputPath(src, *outDir)

		if !*force {
			if _, err := os.Stat(dst); err == nil {
				fmt.Fprintf(out, "skip %s: %s exists\n", src, dst)
				continue
			}
		}

		jobs = append(jobs, wac.Job{Src: src, Dst: dst})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results := conv.ConvertAll(ctx, jobs, *workers)

	failed := 0

	for _, res := range results {
		if res.Err != nil {
			failed++

			fmt.Fprintf(out, "FAIL %s: %v\n", res.Job.Src, res.Err)

			continue
		}

		h := res.Result.Header
		fmt.Fprintf(out, "%s -> %s (%s, %d ch, %d Hz)\n", res.Job.Src, res.Job.Dst, h.Duration(), h.NumChans, h.SampleRate)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errConversions, failed, len(results))
	}

	return nil
}

// expandInputs replaces directories by the .wac files they contain.
func expandInputs(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !fi.IsDir() {
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}

		var found []string

		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".wac") {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}

		sort.Strings(found)
		files = append(files, found...)
	}

	return files, nil
}

// outputPath swaps the extension for .wav and moves the file into dir when
// dir is set.
func outputPath(src, dir string) string {
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".wav"
	if dir == "" {
		dir = filepath.Dir(src)
	}

	return filepath.Join(dir, name)
}
