package models

import (
	"math/rand"

	"github.com/san-kum/anombench/internal/diffusion"
)

// CTRW generates a subdiffusive continuous-time random walk: Gaussian jumps
// separated by Pareto waiting times with tail exponent alpha.
type CTRW struct {
	Sigma float64
}

func NewCTRW() *CTRW {
	return &CTRW{Sigma: 1.0}
}

func (c *CTRW) Name() string { return "ctrw" }

func (c *CTRW) Supports(alpha float64) bool { return alpha > 0 && alpha <= 1 }

func (c *CTRW) Generate(rng *rand.Rand, alpha float64, tMax int) (diffusion.Trajectory, error) {
	if err := checkArgs(c, alpha, tMax); err != nil {
		return nil, err
	}

	out := make(diffusion.Trajectory, tMax)
	pos := 0.0
	next := pareto(rng, alpha)
	for i := 1; i < tMax; i++ {
		t := float64(i)
		for next <= t {
			pos += c.Sigma * rng.NormFloat64()
			next += pareto(rng, alpha)
		}
		out[i] = pos
	}
	return out, nil
}
