package ml

import (
	"math"

	"github.com/drakos74/go-ex-machina/xmath"
)

// KLDivergence is the closed form KL divergence of N(mu, exp(logVar)) against
// the standard normal prior, summed over the latent dimension.
// Small negative results from rounding are treated as zero.
func KLDivergence(mu, logVar xmath.Vector) float64 {
	xmath.MustHaveSameSize(mu, logVar)
	var kl float64
	for i := range mu {
		kl += math.Exp(logVar[i]) + mu[i]*mu[i] - 1 - logVar[i]
	}
	kl *= 0.5
	if kl < 0 {
		kl = 0
	}
	return kl
}

// BinaryEntropy is the entropy of a Bernoulli distribution with probability q.
func BinaryEntropy(q float64) float64 {
	const eps = 1e-12
	if q < eps {
		q = eps
	}
	if q > 1-eps {
		q = 1 - eps
	}
	return -(q*math.Log(q) + (1-q)*math.Log(1-q))
}

// Uncertainty is the mean posterior variance across the latent dimension.
func Uncertainty(logVar xmath.Vector) float64 {
	if len(logVar) == 0 {
		return 0.0
	}
	var sum float64
	for _, lv := range logVar {
		sum += math.Exp(lv)
	}
	return sum / float64(len(logVar))
}
