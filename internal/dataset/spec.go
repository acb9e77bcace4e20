package dataset

import (
	"runtime"

	"github.com/san-kum/anombench/internal/diffusion"
)

// Registry resolves process names to trajectory generators.
type Registry interface {
	Generator(name string) (diffusion.Generator, error)
}

// Spec describes the dataset of one run.
type Spec struct {
	NumPerClass int
	Exponents   []float64
	Processes   []string
	TMax        int
	Mode        diffusion.Mode
	Lag         int
	SplitRatio  float64
	Seed        int64
	// Workers bounds concurrent bucket generation; 0 means runtime.NumCPU().
	Workers int
}

// Bucket is one (process, exponent) cell of the generation grid.
type Bucket struct {
	Index   int
	Process string
	Alpha   float64
	// Class is the position of Process in Spec.Processes.
	Class int
}

// Buckets expands the grid process-major, exponent-minor.
func (s Spec) Buckets() []Bucket {
	out := make([]Bucket, 0, len(s.Processes)*len(s.Exponents))
	for ci, p := range s.Processes {
		for _, a := range s.Exponents {
			out = append(out, Bucket{Index: len(out), Process: p, Alpha: a, Class: ci})
		}
	}
	return out
}

// BucketSeed is the generator seed of bucket k.
func (s Spec) BucketSeed(k int) int64 {
	return s.Seed + int64(k)
}

// splitSalt separates the split stream of a bucket from its generation stream.
const splitSalt int64 = 0x5eed5a17

// SplitSeed seeds the train/test shuffle of bucket k.
func (s Spec) SplitSeed(k int) int64 {
	return s.BucketSeed(k) ^ splitSalt
}

func (s Spec) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.NumCPU()
}

// Validate checks the spec without generating anything. A nil registry
// skips the model and exponent support checks.
func (s Spec) Validate(reg Registry) error {
	if !(s.SplitRatio > 0 && s.SplitRatio < 1) {
		return diffusion.ConfigError("ratio_tT", "split ratio must lie in (0,1), got %v", s.SplitRatio)
	}
	if len(s.Exponents) == 0 {
		return diffusion.ConfigError("alpha_range", "exponent grid is empty")
	}
	if s.NumPerClass < 1 {
		return diffusion.ConfigError("num_traj", "need at least one trajectory per class, got %d", s.NumPerClass)
	}
	if len(s.Processes) == 0 {
		return diffusion.ConfigError("processes", "no diffusion model configured")
	}
	if s.TMax < 1 {
		return diffusion.ConfigError("t_max", "trajectory length must be positive, got %d", s.TMax)
	}
	if s.Lag < 0 {
		return diffusion.ConfigError("t_lag", "lag window must be non-negative, got %d", s.Lag)
	}
	if s.Lag > 0 && s.TMax <= s.Lag {
		return diffusion.ConfigError("t_lag", "lag window %d needs t_max > %d, got %d", s.Lag, s.Lag, s.TMax)
	}
	if _, err := diffusion.ParseMode(string(s.Mode)); err != nil {
		return diffusion.ConfigError("proc_expo", "unknown task mode %q", s.Mode)
	}

	k := TrainCount(s.NumPerClass, s.SplitRatio)
	if k < 1 || k >= s.NumPerClass {
		return diffusion.ConfigError("num_traj", "%d trajectories split at %v leave an empty partition", s.NumPerClass, s.SplitRatio)
	}

	seenAlpha := make(map[float64]bool, len(s.Exponents))
	normal, anomalous := false, false
	for _, a := range s.Exponents {
		if seenAlpha[a] {
			return diffusion.ConfigError("alpha_range", "duplicate exponent %v", a)
		}
		seenAlpha[a] = true
		if a == diffusion.NormalAlpha {
			normal = true
		} else {
			anomalous = true
		}
	}
	if s.Mode == diffusion.Anomaly && !(normal && anomalous) {
		return diffusion.ConfigError("alpha_range", "anomaly task needs alpha = 1 and at least one other exponent")
	}

	seenProc := make(map[string]bool, len(s.Processes))
	for _, p := range s.Processes {
		if seenProc[p] {
			return diffusion.ConfigError("processes", "duplicate model %q", p)
		}
		seenProc[p] = true
		if reg == nil {
			continue
		}

		gen, err := reg.Generator(p)
		if err != nil {
			return diffusion.ConfigError("processes", "%v", err)
		}
		for _, a := range s.Exponents {
			if !gen.Supports(a) {
				return diffusion.ConfigError("alpha_range", "model %s does not support exponent %v", p, a)
			}
		}
	}
	return nil
}
