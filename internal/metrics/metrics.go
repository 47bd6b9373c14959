package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var Observer = &Metrics{
	mutex:      new(sync.RWMutex),
	prometheus: NewPrometheusMetrics(),
}

func init() {
	prometheus.MustRegister(
		Observer.prometheus.Predictions,
		Observer.prometheus.Trainings,
		Observer.prometheus.Failures,
		Observer.prometheus.KL,
		Observer.prometheus.Uncertainty,
	)
}

type Metrics struct {
	mutex      *sync.RWMutex
	prometheus Prometheus
}

// Prediction counts a prediction for the given model and signal.
func (m *Metrics) Prediction(model, signal string) {
	m.prometheus.Predictions.WithLabelValues(model, signal).Inc()
}

// Training counts a completed training run for the given model.
func (m *Metrics) Training(model string) {
	m.prometheus.Trainings.WithLabelValues(model).Inc()
}

// Failure counts a discarded numeric failure for the given model.
func (m *Metrics) Failure(model string) {
	m.prometheus.Failures.WithLabelValues(model).Inc()
}

// Observe tracks the latest uncertainty diagnostics of the given model.
func (m *Metrics) Observe(model string, kl, uncertainty float64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.prometheus.KL.WithLabelValues(model).Set(kl)
	m.prometheus.Uncertainty.WithLabelValues(model).Set(uncertainty)
}
