package math

import (
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
)

// FFT decomposes the given series into its spectrum,
// with the harmonics sorted by amplitude.
func FFT(xx []float64) *Spectrum {
	cc := fft.FFTReal(xx)

	ss := newSpectrum()
	for i, n := range cc {
		if i > len(cc)/2 {
			continue
		}
		ss.add(Harmonic{
			Amplitude: cmplx.Abs(n),
			Frequency: i,
		})
	}

	sort.Sort(sort.Reverse(harmonics(ss.Values)))

	return ss
}

// Spectrum is a collection of harmonics
type Spectrum struct {
	Values    []Harmonic
	Amplitude float64
}

func newSpectrum() *Spectrum {
	return &Spectrum{
		Values: make([]Harmonic, 0),
	}
}

func (s *Spectrum) add(h Harmonic) {
	s.Values = append(s.Values, h)
	s.Amplitude += h.Amplitude
}

// Mean returns the mean amplitude of the spectrum.
func (s *Spectrum) Mean() float64 {
	if len(s.Values) == 0 {
		return 0.0
	}
	return s.Amplitude / float64(len(s.Values))
}

// Top returns the amplitudes of the n strongest harmonics,
// zero padded if the spectrum has fewer.
func (s *Spectrum) Top(n int) []float64 {
	aa := make([]float64, n)
	for i := 0; i < n && i < len(s.Values); i++ {
		aa[i] = s.Values[i].Amplitude
	}
	return aa
}

// Harmonic defines a single frequency component of the series.
type Harmonic struct {
	Amplitude float64
	Frequency int
}

type harmonics []Harmonic

func (hh harmonics) Len() int           { return len(hh) }
func (hh harmonics) Less(i, j int) bool { return hh[i].Amplitude < hh[j].Amplitude }
func (hh harmonics) Swap(i, j int)      { hh[i], hh[j] = hh[j], hh[i] }
