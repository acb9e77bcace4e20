package models

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/anombench/internal/diffusion"
)

func checkArgs(g diffusion.Generator, alpha float64, tMax int) error {
	if tMax < 1 {
		return fmt.Errorf("%w: %s: t_max must be positive, got %d", diffusion.ErrConfiguration, g.Name(), tMax)
	}
	if !g.Supports(alpha) {
		return fmt.Errorf("%w: %s: exponent %v out of range", diffusion.ErrConfiguration, g.Name(), alpha)
	}
	return nil
}

// cumulate turns increments into positions starting at zero.
func cumulate(increments []float64, scale float64) diffusion.Trajectory {
	out := make(diffusion.Trajectory, len(increments)+1)
	for i, d := range increments {
		out[i+1] = out[i] + scale*d
	}
	return out
}

// pareto draws from a Pareto distribution with minimum 1 and tail exponent k.
func pareto(rng *rand.Rand, k float64) float64 {
	return math.Pow(1-rng.Float64(), -1/k)
}
