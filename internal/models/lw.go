package models

import (
	"math/rand"

	"github.com/san-kum/anombench/internal/diffusion"
)

// LW generates a superdiffusive Levy walk: constant-speed flights in a random
// direction with Pareto durations of tail exponent 3 - alpha.
type LW struct {
	Velocity float64
}

func NewLW() *LW {
	return &LW{Velocity: 1.0}
}

func (l *LW) Name() string { return "lw" }

func (l *LW) Supports(alpha float64) bool { return alpha >= 1 && alpha <= 2 }

func (l *LW) Generate(rng *rand.Rand, alpha float64, tMax int) (diffusion.Trajectory, error) {
	if err := checkArgs(l, alpha, tMax); err != nil {
		return nil, err
	}

	tail := 3 - alpha
	out := make(diffusion.Trajectory, tMax)

	start, startPos := 0.0, 0.0
	dur, dir := l.flight(rng, tail)
	for i := 1; i < tMax; i++ {
		t := float64(i)
		for start+dur < t {
			startPos += dir * l.Velocity * dur
			start += dur
			dur, dir = l.flight(rng, tail)
		}
		out[i] = startPos + dir*l.Velocity*(t-start)
	}
	return out, nil
}

func (l *LW) flight(rng *rand.Rand, tail float64) (float64, float64) {
	dir := 1.0
	if rng.Intn(2) == 0 {
		dir = -1.0
	}
	return pareto(rng, tail), dir
}
