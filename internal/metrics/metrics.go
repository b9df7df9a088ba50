// Package metrics defines prometheus metrics to expose
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ModeFull   = "full"
	ModeStream = "stream"

	OutcomeDone     = "done"
	OutcomeCanceled = "canceled"
	OutcomeError    = "error"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_mock_request_count_total",
			Help: "Total number of chat completion requests processed",
		},
		[]string{"transport", "mode", "status"},
	)

	DomainErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_mock_domain_errors_total",
			Help: "Domain errors returned to clients",
		},
		[]string{"transport", "error_type"},
	)

	ChunksEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_mock_chunks_emitted_total",
			Help: "Stream chunks written to clients",
		},
		[]string{"transport"},
	)

	DroppedFrames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_mock_dropped_frames_total",
			Help: "SSE frames dropped because they could not be serialized",
		},
		[]string{"transport"},
	)

	StreamOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_mock_streams_total",
			Help: "Finished streams by outcome",
		},
		[]string{"transport", "outcome"},
	)

	StreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_mock_stream_duration_seconds",
			Help:    "Wall time from stream open to last frame",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"transport", "outcome"},
	)

	InflightStreams = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chat_mock_inflight_streams",
			Help: "Streams currently open",
		},
		[]string{"transport"},
	)
)
