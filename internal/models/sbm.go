package models

import (
	"math"
	"math/rand"

	"github.com/san-kum/anombench/internal/diffusion"
)

// SBM generates scaled Brownian motion: independent Gaussian increments whose
// variance grows so that the mean squared displacement scales as t^alpha.
type SBM struct {
	Sigma float64
}

func NewSBM() *SBM {
	return &SBM{Sigma: 1.0}
}

func (s *SBM) Name() string { return "sbm" }

func (s *SBM) Supports(alpha float64) bool { return alpha > 0 && alpha <= 2 }

func (s *SBM) Generate(rng *rand.Rand, alpha float64, tMax int) (diffusion.Trajectory, error) {
	if err := checkArgs(s, alpha, tMax); err != nil {
		return nil, err
	}

	inc := make([]float64, tMax-1)
	for i := range inc {
		t := float64(i + 1)
		sd := math.Sqrt(math.Pow(t, alpha) - math.Pow(t-1, alpha))
		inc[i] = sd * rng.NormFloat64()
	}
	return cumulate(inc, s.Sigma), nil
}
