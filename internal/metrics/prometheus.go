package metrics

import "github.com/prometheus/client_golang/prometheus"

type Prometheus struct {
	Predictions *prometheus.CounterVec
	Trainings   *prometheus.CounterVec
	Failures    *prometheus.CounterVec
	KL          *prometheus.GaugeVec
	Uncertainty *prometheus.GaugeVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stox",
				Name:      "predictions",
			}, []string{"model", "signal"}),
		Trainings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stox",
				Name:      "trainings",
			}, []string{"model"}),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stox",
				Name:      "numeric_failures",
			}, []string{"model"}),
		KL: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "stox",
				Name:      "kl_divergence",
			}, []string{"model"}),
		Uncertainty: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "stox",
				Name:      "uncertainty",
			}, []string{"model"}),
	}
}
