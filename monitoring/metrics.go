package monitoring

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fraudscore/features"
	"fraudscore/scoring"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	scores           *prometheus.CounterVec
	validationErrors *prometheus.CounterVec
	defects          prometheus.Counter
	scoreErrors      prometheus.Counter
	latency          prometheus.Histogram
	artifactChanges  prometheus.Counter
	wsClients        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fraudscore",
			Name:      "scores_total",
			Help:      "Scored applications by risk band.",
		}, []string{"band"}),
		validationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fraudscore",
			Name:      "validation_errors_total",
			Help:      "Rejected feature records by reason.",
		}, []string{"reason"}),
		defects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fraudscore",
			Name:      "score_defects_total",
			Help:      "Scoring calls that failed with a schema or probability defect.",
		}),
		scoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fraudscore",
			Name:      "score_errors_total",
			Help:      "Scoring calls that failed for any other reason, such as a model error.",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fraudscore",
			Name:      "score_duration_seconds",
			Help:      "Time spent validating, inferring and classifying one record.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 14),
		}),
		artifactChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fraudscore",
			Name:      "artifact_changes_total",
			Help:      "Filesystem changes seen on the loaded model artifact.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fraudscore",
			Name:      "ws_clients",
			Help:      "Connected score feed clients.",
		}),
	}
	reg.MustRegister(m.scores, m.validationErrors, m.defects, m.scoreErrors, m.latency, m.artifactChanges, m.wsClients)
	return m
}

// ObserveScore records the outcome of one scoring call.
func (m *Metrics) ObserveScore(res scoring.Result, err error, elapsed time.Duration) {
	m.latency.Observe(elapsed.Seconds())
	switch {
	case err == nil:
		m.scores.WithLabelValues(res.Band.String()).Inc()
	case errors.Is(err, features.ErrValidation):
		m.validationErrors.WithLabelValues(ValidationReason(err)).Inc()
	case scoring.IsDefect(err):
		m.defects.Inc()
	default:
		m.scoreErrors.Inc()
	}
}

func (m *Metrics) ArtifactChanged() {
	m.artifactChanges.Inc()
}

// ValidationReason returns a short label for a validation error.
func ValidationReason(err error) string {
	var (
		missing  *features.MissingFeatureError
		unknown  *features.UnknownFeatureError
		rng      *features.OutOfRangeError
		mismatch *features.TypeMismatchError
	)
	switch {
	case errors.As(err, &missing):
		return "missing_feature"
	case errors.As(err, &unknown):
		return "unknown_feature"
	case errors.As(err, &rng):
		return "out_of_range"
	case errors.As(err, &mismatch):
		return "type_mismatch"
	default:
		return "other"
	}
}
