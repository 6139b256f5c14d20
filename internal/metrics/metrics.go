// Package metrics holds the Prometheus collectors of the conversion service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cwbudde/wac"
)

var (
	Conversions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wac_conversions_total",
		Help: "Conversions by result kind",
	}, []string{"result"})

	ConversionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wac_conversion_duration_seconds",
		Help:    "Time to decode and write one file",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	})

	InputBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wac_input_bytes_total",
		Help: "WAC bytes converted",
	})

	OutputBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wac_output_bytes_total",
		Help: "WAV bytes produced",
	})

	DecodedSamples = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wac_decoded_samples_total",
		Help: "Samples decoded, all channels",
	})

	RecordedSeconds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wac_recorded_seconds_total",
		Help: "Audio duration converted",
	})

	InFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wac_conversions_in_flight",
		Help: "Conversions currently running",
	})
)

// Recorder feeds conversion outcomes into the collectors above.
type Recorder struct{}

// Observe implements wac.Observer.
func (Recorder) Observe(res *wac.Result, err error, elapsed time.Duration) {
	Conversions.WithLabelValues(wac.ErrorKind(err)).Inc()
	ConversionDuration.Observe(elapsed.Seconds())

	if err != nil || res == nil {
		return
	}

	InputBytes.Add(float64(res.InputBytes))
	OutputBytes.Add(float64(res.OutputBytes))
	DecodedSamples.Add(float64(res.Header.SampleCount * res.Header.NumChans))
	RecordedSeconds.Add(res.Header.Duration().Seconds())
}
