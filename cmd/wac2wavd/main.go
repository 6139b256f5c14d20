// wac2wavd is an HTTP service that converts WAC recordings posted to
// /convert into WAV files. Settings come from flags, each of which falls
// back to a WAC2WAVD_* environment variable.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cwbudde/wac"
	"github.com/cwbudde/wac/internal/metrics"
)

// Server defaults.
const (
	defaultAddr     = ":8080"
	defaultMaxBytes = 256 << 20
	// defaultMaxSamples bounds the decoded size of one request, since a
	// small upload of silent frames can declare a very long recording.
	defaultMaxSamples = 1 << 27
	shutdownTimeout = 10 * time.Second
)

// Logging configuration.
const (
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logSuppress  = true
)

var logLevels = map[string]int8{
	"debug":   logging.Debug,
	"info":    logging.Info,
	"warning": logging.Warning,
	"error":   logging.Error,
}

var errBadLevel = errors.New("unknown log level")

type config struct {
	addr       string
	maxBytes   int64
	maxSamples int
	level      int8
	info       bool
	logPath    string
}

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatal(err)
	}

	var logOut io.Writer = os.Stderr

	if cfg.logPath != "" {
		fileLog := &lumberjack.Logger{
			Filename:   cfg.logPath,
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackup,
			MaxAge:     logMaxAge,
		}
		defer fileLog.Close()

		logOut = fileLog
	}

	l := logging.New(cfg.level, logOut, logSuppress)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, l); err != nil {
		l.Fatal("server stopped", "error", err)
	}
}

// serve runs the HTTP server until ctx is done and then shuts it down.
func serve(ctx context.Context, cfg *config, l logging.Logger) error {
	s := newServer(cfg, l)

	srv := &http.Server{
		Addr:              cfg.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)

	go func() {
		l.Info("listening", "addr", cfg.addr, "maxBytes", cfg.maxBytes, "info", cfg.info)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	l.Info("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutCtx)
}

func parseConfig(args []string, getenv func(string) string) (*config, error) {
	envOr := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}

		return def
	}

	maxBytes, err := strconv.ParseInt(envOr("WAC2WAVD_MAX_BYTES", strconv.Itoa(defaultMaxBytes)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WAC2WAVD_MAX_BYTES: %w", err)
	}

	maxSamples, err := strconv.Atoi(envOr("WAC2WAVD_MAX_SAMPLES", strconv.Itoa(defaultMaxSamples)))
	if err != nil {
		return nil, fmt.Errorf("invalid WAC2WAVD_MAX_SAMPLES: %w", err)
	}

	info, err := strconv.ParseBool(envOr("WAC2WAVD_INFO", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid WAC2WAVD_INFO: %w", err)
	}

	flagSet := flag.NewFlagSet("wac2wavd", flag.ContinueOnError)

	addr := flagSet.String("addr", envOr("WAC2WAVD_ADDR", defaultAddr), "address to listen on")
	flagSet.Int64Var(&maxBytes, "max-bytes", maxBytes, "largest accepted WAC upload in bytes")
	flagSet.IntVar(&maxSamples, "max-samples", maxSamples, "most samples, all channels, one upload may decode to")
	level := flagSet.String("level", envOr("WAC2WAVD_LOG_LEVEL", "info"), "log level: debug, info, warning or error")
	flagSet.BoolVar(&info, "info", info, "add a LIST/INFO chunk to every WAV file")
	logPath := flagSet.String("log", envOr("WAC2WAVD_LOG", ""), "write logs to this file, with rotation, instead of stderr")

	err = flagSet.Parse(args)
	if err != nil {
		return nil, err
	}

	lvl, ok := logLevels[strings.ToLower(*level)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errBadLevel, *level)
	}

	if maxBytes <= 0 {
		return nil, fmt.Errorf("max-bytes must be positive, got %d", maxBytes)
	}

	if maxSamples <= 0 {
		return nil, fmt.Errorf("max-samples must be positive, got %d", maxSamples)
	}

	return &config{
		addr:       *addr,
		maxBytes:   maxBytes,
		maxSamples: maxSamples,
		level:      lvl,
		info:       info,
		logPath:    *logPath,
	}, nil
}

func newServer(cfg *config, l logging.Logger) *server {
	return &server{
		log:      l,
		maxBytes: cfg.maxBytes,
		conv: &wac.Converter{
			Log:        l,
			Info:       cfg.info,
			Observer:   metrics.Recorder{},
			MaxSamples: cfg.maxSamples,
		},
	}
}
