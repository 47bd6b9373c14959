package ml

import "fmt"

// Config defines the hyperparameters of a stochastic extended lstm.
// InputSize, HiddenSize and LatentSize fix the weight shapes at construction,
// so a config change always requires a new model.
// GatingScale scales the sigmoid input of the exponential gating term.
// Beta is the stochastic regularization weight, applied both to the latent
// noise injection and to the KL term of the training loss.
// Lookback defines how many timesteps a window is unrolled over.
// Threshold is the hold band for the directional signal as well as the
// training loss target.
type Config struct {
	InputSize          int     `json:"input_size"`
	HiddenSize         int     `json:"hidden_size"`
	LatentSize         int     `json:"latent_size"`
	ExponentialGating  bool    `json:"exponential_gating"`
	MemoryMixing       bool    `json:"memory_mixing"`
	LayerNormalization bool    `json:"layer_normalization"`
	GatingScale        float64 `json:"gating_scale"`
	Beta               float64 `json:"beta"`
	Lookback           int     `json:"lookback"`
	LearningRate       float64 `json:"learning_rate"`
	MaxEpochs          int     `json:"max_epochs"`
	Threshold          float64 `json:"threshold"`
	MinWindows         int     `json:"min_windows"`
}

// NewConfig creates a config with the default feature toggles and training knobs.
func NewConfig(inputSize, hiddenSize, latentSize int) Config {
	return Config{
		InputSize:          inputSize,
		HiddenSize:         hiddenSize,
		LatentSize:         latentSize,
		ExponentialGating:  true,
		MemoryMixing:       true,
		LayerNormalization: true,
		GatingScale:        1.0,
		Beta:               0.01,
		Lookback:           10,
		LearningRate:       0.01,
		MaxEpochs:          10,
		Threshold:          0.1,
		MinWindows:         10,
	}
}

// Validate checks the config invariants once, before any weights are sized from it.
func (cfg Config) Validate() error {
	if cfg.InputSize <= 0 || cfg.HiddenSize <= 0 || cfg.LatentSize <= 0 {
		return fmt.Errorf("invalid sizes (%d,%d,%d)", cfg.InputSize, cfg.HiddenSize, cfg.LatentSize)
	}
	if cfg.Beta < 0 {
		return fmt.Errorf("beta must not be negative: %f", cfg.Beta)
	}
	if cfg.Lookback <= 0 {
		return fmt.Errorf("lookback must be positive: %d", cfg.Lookback)
	}
	if cfg.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive: %f", cfg.LearningRate)
	}
	if cfg.MaxEpochs <= 0 {
		return fmt.Errorf("max epochs must be positive: %d", cfg.MaxEpochs)
	}
	return nil
}

// compatible checks that another config produces the same weight shapes.
func (cfg Config) compatible(other Config) bool {
	return cfg.InputSize == other.InputSize &&
		cfg.HiddenSize == other.HiddenSize &&
		cfg.LatentSize == other.LatentSize
}
