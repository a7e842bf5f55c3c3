package observability

import (
	"time"

	"github.com/taxbot-india/engine-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	calculations    *prometheus.CounterVec
	predictions     *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	cacheErrors     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taxbot_request_duration_seconds",
				Help:    "Duration of engine operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		calculations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taxbot_calculations_total",
				Help: "Total tax calculations by recommended regime.",
			},
			[]string{"regime"},
		),
		predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taxbot_predictions_total",
				Help: "Total regime predictions by predicted label.",
			},
			[]string{"regime"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taxbot_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taxbot_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		cacheErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taxbot_cache_errors_total",
				Help: "Total cache backend errors.",
			},
			[]string{"cache"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrCalculation counts a completed calculation under its recommended regime.
func (m *Metrics) IncrCalculation(regime string) {
	m.calculations.WithLabelValues(regime).Inc()
}

// IncrPrediction counts a completed prediction under its predicted regime.
func (m *Metrics) IncrPrediction(regime string) {
	m.predictions.WithLabelValues(regime).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrCacheError increments the cache backend error counter.
func (m *Metrics) IncrCacheError(cache string) {
	m.cacheErrors.WithLabelValues(cache).Inc()
}

// GetEngineSnapshot returns a snapshot of engine counters suitable for the
// GET /v1/metrics/engine endpoint.
func (m *Metrics) GetEngineSnapshot() *domain.EngineMetrics {
	oldCalc := getCounterValue(m.calculations, string(domain.RegimeOld))
	newCalc := getCounterValue(m.calculations, string(domain.RegimeNew))
	oldPred := getCounterValue(m.predictions, string(domain.RegimeOld))
	newPred := getCounterValue(m.predictions, string(domain.RegimeNew))
	hits := getCounterValue(m.cacheHits, "prediction")
	misses := getCounterValue(m.cacheMisses, "prediction")

	hitPct := float64(0)
	if hits+misses > 0 {
		hitPct = hits / (hits + misses) * 100
	}

	return &domain.EngineMetrics{
		TotalCalculations:     int64(oldCalc + newCalc),
		OldRegimeRecommended:  int64(oldCalc),
		NewRegimeRecommended:  int64(newCalc),
		TotalPredictions:      int64(oldPred + newPred),
		OldRegimePredicted:    int64(oldPred),
		NewRegimePredicted:    int64(newPred),
		PredictionCacheHitPct: hitPct,
		Period:                "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
