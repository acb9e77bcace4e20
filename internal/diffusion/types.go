package diffusion

import (
	"fmt"
	"math"
	"math/rand"
)

// Trajectory holds the positions x0..x(n-1) of a particle sampled at unit time
// steps. Generators always start at x0 = 0.
type Trajectory []float64

func (t Trajectory) Clone() Trajectory {
	c := make(Trajectory, len(t))
	copy(c, t)
	return c
}

func (t Trajectory) IsValid() bool {
	for _, v := range t {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Increments returns the unit-step displacements x(i+1) - x(i).
func (t Trajectory) Increments() []float64 {
	if len(t) < 2 {
		return nil
	}
	out := make([]float64, len(t)-1)
	for i := 1; i < len(t); i++ {
		out[i-1] = t[i] - t[i-1]
	}
	return out
}

// Generator simulates one physical diffusion model.
type Generator interface {
	Name() string
	// Supports reports whether the model is defined for the exponent.
	Supports(alpha float64) bool
	Generate(rng *rand.Rand, alpha float64, tMax int) (Trajectory, error)
}

// Mode selects the learning task of a run.
type Mode string

const (
	// Discrimination labels a trajectory with the model that generated it.
	Discrimination Mode = "discrimination"
	// Regression labels a trajectory with its anomalous exponent.
	Regression Mode = "regression"
	// Anomaly labels a trajectory as normal (alpha = 1) or anomalous.
	Anomaly Mode = "anomaly"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Discrimination, Regression, Anomaly:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown task mode %q", ErrConfiguration, s)
}

// Categorical reports whether the mode is solved with a classifier.
func (m Mode) Categorical() bool {
	return m == Discrimination || m == Anomaly
}

// NormalAlpha is the exponent of normal (Brownian) diffusion.
const NormalAlpha = 1.0

// AnomalyClasses names the two classes of the anomaly task by label index.
var AnomalyClasses = []string{"normal", "anomalous"}
