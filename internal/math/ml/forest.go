package ml

import (
	"fmt"

	randomforest "github.com/malaschitz/randomForest"
	"github.com/rs/zerolog/log"
)

// RandomForest is a baseline direction classifier,
// used to benchmark the stochastic lstm against a model free of recurrence.
type RandomForest struct {
	trees  int
	forest *randomforest.Forest
}

// NewForest creates a forest baseline with the given number of trees.
func NewForest(n int) *RandomForest {
	return &RandomForest{
		trees: n,
	}
}

// Train builds the forest from the given samples and class labels.
// It returns the feature importance of the trained forest.
func (rf *RandomForest) Train(xData [][]float64, yData []int) ([]float64, error) {
	if len(xData) == 0 || len(xData) != len(yData) {
		return nil, fmt.Errorf("invalid training set (%d,%d)", len(xData), len(yData))
	}
	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: xData, Class: yData}
	forest.Train(rf.trees)
	rf.forest = forest
	log.Info().
		Int("samples", len(xData)).
		Int("trees", rf.trees).
		Msg("trained forest baseline")
	return forest.FeatureImportance, nil
}

// Predict returns the class votes for the given sample.
func (rf *RandomForest) Predict(xData []float64) ([]float64, error) {
	if rf.forest == nil {
		return nil, fmt.Errorf("forest is not trained")
	}
	return rf.forest.Vote(xData), nil
}

// ForestWindows flattens labeled windows into a forest training set,
// using the final timestep features and the target sign as class.
func ForestWindows(windows []Window) ([][]float64, []int) {
	xx := make([][]float64, 0, len(windows))
	yy := make([]int, 0, len(windows))
	for _, w := range windows {
		if len(w.Features) == 0 {
			continue
		}
		xx = append(xx, w.Features[len(w.Features)-1])
		class := 0
		if w.Target > 0 {
			class = 1
		}
		yy = append(yy, class)
	}
	return xx, yy
}
