package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ausocean/utils/logging"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cwbudde/wac"
	"github.com/cwbudde/wac/internal/metrics"
)

const requestIDHeader = "X-Request-Id"

type server struct {
	log      logging.Logger
	conv     *wac.Converter
	maxBytes int64
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /convert", s.convert)
	mux.HandleFunc("GET /healthz", s.healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	return withRequestID(mux)
}

// withRequestID keeps a valid client supplied request id or assigns a new one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if uuid.Validate(id) != nil {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok\n"))
}

// convert answers with the WAV file for the WAC file in the request body.
func (s *server) convert(w http.ResponseWriter, r *http.Request) {
	metrics.InFlight.Inc()
	defer metrics.InFlight.Dec()

	id := w.Header().Get(requestIDHeader)

	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, id, http.StatusRequestEntityTooLarge, err)
			return
		}

		s.fail(w, id, http.StatusBadRequest, err)

		return
	}

	var out bytes.Buffer

	res, err := s.conv.Convert(r.Context(), src, &out)
	if err != nil {
		status := http.StatusInternalServerError

		switch {
		case wac.IsFormatError(err):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, wac.ErrTooLarge):
			status = http.StatusRequestEntityTooLarge
		}

		s.fail(w, id, status, err)

		return
	}

	s.log.Info("converted", "id", id, "inBytes", res.InputBytes, "outBytes", res.OutputBytes,
		"duration", res.Header.Duration().String())

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(out.Len()))

	if _, err := w.Write(out.Bytes()); err != nil {
		s.log.Warning("could not write response", "id", id, "error", err.Error())
	}
}

func (s *server) fail(w http.ResponseWriter, id string, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("conversion failed", "id", id, "status", status, "error", err.Error())
	} else {
		s.log.Warning("rejected request", "id", id, "status", status, "kind", wac.ErrorKind(err), "error", err.Error())
	}

	http.Error(w, err.Error(), status)
}
