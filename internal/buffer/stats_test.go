package buffer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats_Push(t *testing.T) {

	type test struct {
		values   []float64
		avg      float64
		variance float64
		diff     float64
	}

	tests := map[string]test{
		"constant": {
			values:   []float64{2, 2, 2, 2},
			avg:      2,
			variance: 0,
			diff:     0,
		},
		"linear": {
			values:   []float64{1, 2, 3, 4, 5},
			avg:      3,
			variance: 2,
			diff:     4,
		},
		"alternating": {
			values:   []float64{-1, 1, -1, 1},
			avg:      0,
			variance: 1,
			diff:     2,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			stats := NewStats()
			for _, v := range tt.values {
				stats.Push(v)
			}
			assert.Equal(t, len(tt.values), stats.Count())
			assert.InDelta(t, tt.avg, stats.Avg(), 1e-12)
			assert.InDelta(t, tt.variance, stats.Variance(), 1e-12)
			assert.InDelta(t, tt.diff, stats.Diff(), 1e-12)
		})
	}
}

func TestStats_StDev(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	stats := NewStats()
	for i := 0; i < 10000; i++ {
		stats.Push(rnd.NormFloat64())
	}
	// standard normal sample
	assert.InDelta(t, 0.0, stats.Avg(), 0.05)
	assert.InDelta(t, 1.0, stats.StDev(), 0.05)
}

func TestBuffer_Push(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 5; i++ {
		v, evicted := b.Push(float64(i))
		if i < 3 {
			assert.False(t, evicted)
		} else {
			assert.True(t, evicted)
			assert.Equal(t, float64(i-3), v)
		}
	}
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []float64{2, 3, 4}, b.Get())
	assert.Equal(t, 4.0, b.Last())
}
