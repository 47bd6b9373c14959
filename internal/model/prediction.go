package model

import "time"

// diagnostic keys exposed with each prediction.
const (
	KLDivergence          = "kl_divergence"
	Entropy               = "entropy"
	Uncertainty           = "uncertainty"
	StochasticEnhancement = "stochastic_enhancement"
)

// Prediction is the outcome of one model inference on a feature window.
// It belongs to the caller once returned and is never mutated by the model.
type Prediction struct {
	Signal     Signal             `json:"signal"`
	Confidence float64            `json:"confidence"`
	Details    map[string]float64 `json:"details"`
	Time       time.Time          `json:"time"`
}

// NewPrediction creates a prediction with the given diagnostics.
func NewPrediction(signal Signal, confidence float64, details map[string]float64) Prediction {
	if details == nil {
		details = make(map[string]float64)
	}
	return Prediction{
		Signal:     signal,
		Confidence: confidence,
		Details:    details,
		Time:       time.Now(),
	}
}

// NoPrediction returns the neutral low confidence prediction,
// used when the model cannot (yet) produce a meaningful signal.
func NoPrediction() Prediction {
	return NewPrediction(Hold, 0.0, map[string]float64{
		KLDivergence:          0.0,
		Entropy:               0.0,
		Uncertainty:           0.0,
		StochasticEnhancement: 0.0,
	})
}
