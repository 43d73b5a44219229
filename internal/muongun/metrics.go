package muongun

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lukaszgryglicki/muongun/internal/integrate"
)

// Metrics collects integration and intersection counters on a private
// registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	integrations  *prometheus.CounterVec
	evaluations   *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	intersections *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = MetricNamespace
	}
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.integrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrations_total",
			Help:      "Integrations run, by integrand and outcome",
		},
		[]string{"integrand", "result"},
	)
	m.evaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Integrand evaluations, by integrand",
		},
		[]string{"integrand"},
	)
	m.duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "integration_duration_seconds",
			Help:      "Wall time of a single integration",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10), // 10us to ~2.6s
		},
		[]string{"integrand"},
	)
	m.intersections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intersections_total",
			Help:      "Ray-surface intersection queries, by outcome",
		},
		[]string{"result"},
	)
	m.registry.MustRegister(m.integrations, m.evaluations, m.duration, m.intersections)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// outcome maps an integration error to a metric label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, integrate.ErrNoConvergence):
		return "no_convergence"
	case errors.Is(err, integrate.ErrNonFinite):
		return "non_finite"
	case errors.Is(err, integrate.ErrInvalidBounds), errors.Is(err, integrate.ErrInvalidOptions):
		return "invalid"
	}
	return "error"
}

func (m *Metrics) ObserveIntegration(integrand string, res integrate.Result, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.integrations.WithLabelValues(integrand, outcome(err)).Inc()
	m.evaluations.WithLabelValues(integrand).Add(float64(res.Evals))
	m.duration.WithLabelValues(integrand).Observe(d.Seconds())
}

func (m *Metrics) ObserveIntersection(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.intersections.WithLabelValues(result).Inc()
}

// Log writes every counter sample at debug level.
func (m *Metrics) Log(logger *zap.Logger) {
	if m == nil {
		return
	}
	families, err := m.registry.Gather()
	if err != nil {
		logger.Warn("gathering metrics failed", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			fields := []zap.Field{zap.String("metric", mf.GetName())}
			for _, lp := range metric.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			switch {
			case metric.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", metric.GetCounter().GetValue()))
			case metric.GetHistogram() != nil:
				fields = append(fields,
					zap.Uint64("count", metric.GetHistogram().GetSampleCount()),
					zap.Float64("sum", metric.GetHistogram().GetSampleSum()))
			}
			logger.Debug("metric", fields...)
		}
	}
}
