package algo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var (
	oracleCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mapfsat_oracle_calls_total",
		Help: "SAT oracle calls by mode and result",
	}, []string{"mode", "result"})

	oracleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mapfsat_oracle_duration_seconds",
		Help:    "Duration of a single SAT oracle call",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"mode"})

	encodingVariables = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mapfsat_encoding_variables",
		Help:    "Variables per encoding",
		Buckets: prometheus.ExponentialBuckets(16, 4, 10),
	})

	encodingConstraints = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mapfsat_encoding_constraints",
		Help:    "Constraints per encoding",
		Buckets: prometheus.ExponentialBuckets(16, 4, 10),
	})

	solveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mapfsat_solve_duration_seconds",
		Help:    "Duration of a complete solve",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"mode", "outcome"})

	solveDelta = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mapfsat_solve_delta",
		Help:    "Cost slack at which a solve succeeded",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
	}, []string{"mode"})
)

var tracer = otel.Tracer("mapfsat.algo")
