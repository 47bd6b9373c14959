package ml

import (
	"math"

	"github.com/drakos74/go-ex-machina/xmath"
)

// ClipVecByNorm clips gradients based on their global L2 norm.
func ClipVecByNorm(gradients xmath.Vector, maxNorm float64) {
	totalNorm := 0.0
	for _, grad := range gradients {
		totalNorm += grad * grad
	}
	totalNorm = math.Sqrt(totalNorm)

	if totalNorm > maxNorm {
		scale := maxNorm / totalNorm
		for i := range gradients {
			gradients[i] *= scale
		}
	}
}

// ClipMatByNorm clips gradients based on their global L2 norm.
func ClipMatByNorm(gradients xmath.Matrix, maxNorm float64) {
	totalNorm := 0.0
	for _, grad := range gradients {
		for _, val := range grad {
			totalNorm += val * val
		}
	}
	totalNorm = math.Sqrt(totalNorm)

	if totalNorm > maxNorm {
		scale := maxNorm / totalNorm
		for _, grad := range gradients {
			for i := range grad {
				grad[i] *= scale
			}
		}
	}
}

func finiteMat(m xmath.Matrix) bool {
	for _, v := range m {
		if !finiteVec(v) {
			return false
		}
	}
	return true
}
