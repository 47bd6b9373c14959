package ml

import (
	coinmath "github.com/Suad0/trading4j-sub002/internal/math"
	"github.com/drakos74/go-ex-machina/xmath"
)

// State is the per-sequence memory of the cell for a single step.
// A forward step produces a new State, the previous one stays untouched.
// All matrices have one row per batch sample.
type State struct {
	Hidden       xmath.Matrix
	Cell         xmath.Matrix
	NormCell     xmath.Matrix
	LatentMean   xmath.Matrix
	LatentLogVar xmath.Matrix
	Latent       xmath.Matrix
	// Enhancement is the stochastic contribution added to Hidden at this step,
	// kept for the stochastic_enhancement diagnostic.
	Enhancement xmath.Matrix
}

// NewState creates a zero initialised state for the given batch size.
func NewState(batch, hiddenSize, latentSize int) *State {
	return &State{
		Hidden:       xmath.Mat(batch).Of(hiddenSize),
		Cell:         xmath.Mat(batch).Of(hiddenSize),
		NormCell:     xmath.Mat(batch).Of(hiddenSize),
		LatentMean:   xmath.Mat(batch).Of(latentSize),
		LatentLogVar: xmath.Mat(batch).Of(latentSize),
		Latent:       xmath.Mat(batch).Of(latentSize),
		Enhancement:  xmath.Mat(batch).Of(hiddenSize),
	}
}

// Batch returns the batch size of the state.
func (s *State) Batch() int {
	return len(s.Hidden)
}

// IsFinite checks that the fields feeding the next step are well defined.
func (s *State) IsFinite() bool {
	for _, m := range []xmath.Matrix{s.Hidden, s.Cell, s.LatentMean, s.LatentLogVar, s.Latent} {
		for _, v := range m {
			for _, f := range v {
				if !coinmath.IsFinite(f) {
					return false
				}
			}
		}
	}
	return true
}
