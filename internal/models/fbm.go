package models

import (
	"math"
	"math/rand"

	"github.com/san-kum/anombench/internal/diffusion"
)

// FBM generates fractional Brownian motion with Hurst exponent alpha/2. The
// fractional Gaussian noise is drawn with the Hosking (Durbin-Levinson)
// recursion, exact for any length at O(n^2) cost.
type FBM struct {
	Sigma float64
}

func NewFBM() *FBM {
	return &FBM{Sigma: 1.0}
}

func (f *FBM) Name() string { return "fbm" }

func (f *FBM) Supports(alpha float64) bool { return alpha > 0 && alpha < 2 }

func (f *FBM) Generate(rng *rand.Rand, alpha float64, tMax int) (diffusion.Trajectory, error) {
	if err := checkArgs(f, alpha, tMax); err != nil {
		return nil, err
	}
	return cumulate(fgn(rng, alpha/2, tMax-1), f.Sigma), nil
}

// fgnCov is the autocovariance of unit fractional Gaussian noise at lag k.
func fgnCov(h float64, k int) float64 {
	if k == 0 {
		return 1
	}
	kf, h2 := float64(k), 2*h
	return 0.5 * (math.Pow(kf+1, h2) - 2*math.Pow(kf, h2) + math.Pow(kf-1, h2))
}

func fgn(rng *rand.Rand, h float64, n int) []float64 {
	x := make([]float64, n)
	if n == 0 {
		return x
	}

	cov := make([]float64, n)
	for k := range cov {
		cov[k] = fgnCov(h, k)
	}

	// phi[j-1] holds the j-th partial regression coefficient of step k.
	phi := make([]float64, n)
	prev := make([]float64, n)
	v := 1.0

	x[0] = rng.NormFloat64()
	for k := 1; k < n; k++ {
		num := cov[k]
		for j := 1; j < k; j++ {
			num -= prev[j-1] * cov[k-j]
		}
		pkk := num / v
		for j := 1; j < k; j++ {
			phi[j-1] = prev[j-1] - pkk*prev[k-j-1]
		}
		phi[k-1] = pkk
		v *= 1 - pkk*pkk

		mean := 0.0
		for j := 1; j <= k; j++ {
			mean += phi[j-1] * x[k-j]
		}
		x[k] = mean + math.Sqrt(math.Max(v, 0))*rng.NormFloat64()
		copy(prev[:k], phi[:k])
	}
	return x
}
