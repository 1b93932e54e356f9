// Package metrics provides a small constructor-injected gauge sink. The
// concrete sink is chosen at wiring time; domain code only ever sees the
// Sink interface.
package metrics

import (
	"github.com/rs/zerolog"
)

// Sink receives point-in-time gauge values.
type Sink interface {
	Gauge(name string, value float64, tags ...string)
}

// NoopSink discards all measurements.
type NoopSink struct{}

func (NoopSink) Gauge(string, float64, ...string) {}

// LogSink emits gauges as structured log events. It stands in for a real
// metrics backend in environments without one.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Gauge(name string, value float64, tags ...string) {
	s.logger.Info().
		Str("metric", name).
		Float64("value", value).
		Strs("tags", tags).
		Msg("gauge")
}
