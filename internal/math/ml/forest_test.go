package ml

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForest_Untrained(t *testing.T) {
	rf := NewForest(10)
	_, err := rf.Predict([]float64{0.1, 0.2})
	assert.Error(t, err)
}

func TestForest_InvalidData(t *testing.T) {
	rf := NewForest(10)
	_, err := rf.Train(nil, nil)
	assert.Error(t, err)
	_, err = rf.Train([][]float64{{1, 2}}, []int{0, 1})
	assert.Error(t, err)
}

func TestForest_Separable(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	xx := make([][]float64, 0, 200)
	yy := make([]int, 0, 200)
	for i := 0; i < 200; i++ {
		class := i % 2
		offset := float64(class)*2 - 1
		xx = append(xx, []float64{
			offset + rnd.NormFloat64()*0.1,
			offset + rnd.NormFloat64()*0.1,
		})
		yy = append(yy, class)
	}

	rf := NewForest(50)
	importance, err := rf.Train(xx, yy)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(importance))

	votes, err := rf.Predict([]float64{1.0, 1.0})
	assert.NoError(t, err)
	assert.True(t, votes[1] > votes[0])

	votes, err = rf.Predict([]float64{-1.0, -1.0})
	assert.NoError(t, err)
	assert.True(t, votes[0] > votes[1])
}

func TestForestWindows(t *testing.T) {
	windows := []Window{
		{
			Features: [][]float64{{0.1, 0.2}, {0.3, 0.4}},
			Target:   0.05,
		},
		{
			Features: [][]float64{{0.5, 0.6}},
			Target:   -0.02,
		},
		{
			Features: [][]float64{},
			Target:   0.1,
		},
	}

	xx, yy := ForestWindows(windows)
	assert.Equal(t, 2, len(xx))
	assert.Equal(t, []float64{0.3, 0.4}, xx[0])
	assert.Equal(t, []float64{0.5, 0.6}, xx[1])
	assert.Equal(t, []int{1, 0}, yy)
}
