package math

import "math"

// RSI is an RSI streaming calculator
type RSI struct {
	pos   float64
	neg   float64
	count int
}

// Add adds another value for the RSI calculation and returns the intermediate result.
func (rsi *RSI) Add(f float64) int {
	if f > 0 {
		rsi.pos += f
	} else {
		rsi.neg += f
	}
	rsi.count++

	c := float64(rsi.count)

	si := (rsi.pos / c) / (rsi.neg / c)

	return int(math.Round(100 - (100 / (1 + si))))
}

// Series generates a linear series with the given factor.
func Series(factor float64, limit int) []float64 {
	xx := make([]float64, 0)
	for i := 0; i < limit; i++ {
		xx = append(xx, factor*float64(i))
	}
	return xx
}

// Sine generates a sinusoidal series with the given period factor.
func Sine(factor float64, limit int, v float64) []float64 {
	xx := make([]float64, 0)
	for i := 0; i < limit; i++ {
		xx = append(xx, factor*math.Sin(float64(i)*v))
	}
	return xx
}
