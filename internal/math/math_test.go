package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {

	type test struct {
		input  float64
		output string
	}

	tests := map[string]test{
		"0": {
			input:  0,
			output: "0.00",
		},
		"-1": {
			input:  -1,
			output: "-1.00",
		},
		"round-up": {
			input:  1.5555,
			output: "1.56",
		},
		"round-down": {
			input:  1.4444,
			output: "1.44",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := Format(tt.input)
			assert.Equal(t, tt.output, s)
		})
	}
}

func TestFit(t *testing.T) {

	// y = 1 + 2x
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{1, 3, 5, 7, 9}

	cc, err := Fit(x, y, 1)
	assert.NoError(t, err)
	assert.InDelta(t, 1.0, cc[0], 1e-9)
	assert.InDelta(t, 2.0, cc[1], 1e-9)
}

func TestFFT(t *testing.T) {

	// single harmonic should dominate the spectrum
	xx := Sine(1.0, 128, 2*3.14159/16)

	ss := FFT(xx)
	assert.True(t, len(ss.Values) > 0)
	assert.True(t, ss.Values[0].Amplitude >= ss.Values[len(ss.Values)-1].Amplitude)

	top := ss.Top(3)
	assert.Equal(t, 3, len(top))
	assert.True(t, top[0] >= top[1])
}

func TestSigmoid(t *testing.T) {
	assert.InDelta(t, 0.5, Sigmoid(0), 1e-12)
	assert.True(t, Sigmoid(10) > 0.99)
	assert.True(t, Sigmoid(-10) < 0.01)
}
