package forest

import (
	"errors"
	"runtime"
)

var (
	ErrEmpty     = errors.New("forest: empty training set")
	ErrShape     = errors.New("forest: shape mismatch")
	ErrLabel     = errors.New("forest: invalid label")
	ErrNotFitted = errors.New("forest: model not fitted")
)

const (
	DefaultNEstimators     = 100
	DefaultMinSamplesSplit = 2
	DefaultMinSamplesLeaf  = 1
)

type Config struct {
	NEstimators int
	// MaxDepth limits tree depth; 0 grows until leaves are pure.
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	// MaxFeatures is the number of features tried per split; 0 selects
	// sqrt(p) for classification and p/3 for regression.
	MaxFeatures int
	Bootstrap   bool
	Seed        int64
	// Workers bounds concurrent tree fitting; 0 means runtime.NumCPU().
	Workers int
}

func DefaultConfig() Config {
	return Config{
		NEstimators:     DefaultNEstimators,
		MinSamplesSplit: DefaultMinSamplesSplit,
		MinSamplesLeaf:  DefaultMinSamplesLeaf,
		Bootstrap:       true,
	}
}

func (c Config) withDefaults() Config {
	if c.NEstimators <= 0 {
		c.NEstimators = DefaultNEstimators
	}
	if c.MinSamplesSplit < 2 {
		c.MinSamplesSplit = DefaultMinSamplesSplit
	}
	if c.MinSamplesLeaf < 1 {
		c.MinSamplesLeaf = DefaultMinSamplesLeaf
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return c
}
