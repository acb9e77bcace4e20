package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/anombench/internal/dataset"
	"github.com/san-kum/anombench/internal/diffusion"
	"github.com/san-kum/anombench/internal/forest"
)

const (
	DefaultTMax       = 100
	DefaultNumTraj    = 100
	DefaultRatio      = 0.8
	DefaultSeed       = 42
	DefaultDataDir    = ".anombench/trajectories"
	DefaultOutputDir  = ".anombench/out"
	DefaultEstimators = forest.DefaultNEstimators
)

type Config struct {
	TMax      int          `yaml:"t_max"`
	NumTraj   int          `yaml:"num_traj"`
	Processes []string     `yaml:"processes"`
	Alphas    []float64    `yaml:"alpha_range"`
	Ratio     float64      `yaml:"ratio_tT"`
	Mode      string       `yaml:"proc_expo"`
	Lag       int          `yaml:"t_lag"`
	DataDir   string       `yaml:"path_trajectories"`
	Seed      int64        `yaml:"seed"`
	Workers   int          `yaml:"workers"`
	Forest    ForestConfig `yaml:"forest"`
	Output    OutputConfig `yaml:"output"`
}

type ForestConfig struct {
	NEstimators     int  `yaml:"n_estimators"`
	MaxDepth        int  `yaml:"max_depth"`
	MinSamplesSplit int  `yaml:"min_samples_split"`
	MinSamplesLeaf  int  `yaml:"min_samples_leaf"`
	MaxFeatures     int  `yaml:"max_features"`
	Bootstrap       bool `yaml:"bootstrap"`
}

type OutputConfig struct {
	Dir   string `yaml:"dir"`
	Chart bool   `yaml:"chart"`
	JSON  bool   `yaml:"json"`
}

func DefaultConfig() *Config {
	return &Config{
		TMax:      DefaultTMax,
		NumTraj:   DefaultNumTraj,
		Processes: []string{"fbm"},
		Alphas:    []float64{0.5, 1.0, 1.5},
		Ratio:     DefaultRatio,
		Mode:      string(diffusion.Regression),
		DataDir:   DefaultDataDir,
		Seed:      DefaultSeed,
		Forest: ForestConfig{
			NEstimators:     DefaultEstimators,
			MinSamplesSplit: forest.DefaultMinSamplesSplit,
			MinSamplesLeaf:  forest.DefaultMinSamplesLeaf,
			Bootstrap:       true,
		},
		Output: OutputConfig{
			Dir:   DefaultOutputDir,
			Chart: true,
			JSON:  true,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base; keys missing from the file
// keep the values of base.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, diffusion.ConfigError("", "parse %s: %v", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first invalid parameter as a configuration error.
// Model names and exponent support are checked later against the registry.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return diffusion.ConfigError("workers", "worker count must be non-negative, got %d", c.Workers)
	}
	f := c.Forest
	switch {
	case f.NEstimators < 1:
		return diffusion.ConfigError("forest.n_estimators", "need at least one tree, got %d", f.NEstimators)
	case f.MaxDepth < 0:
		return diffusion.ConfigError("forest.max_depth", "must be non-negative, got %d", f.MaxDepth)
	case f.MinSamplesSplit < 2:
		return diffusion.ConfigError("forest.min_samples_split", "must be at least 2, got %d", f.MinSamplesSplit)
	case f.MinSamplesLeaf < 1:
		return diffusion.ConfigError("forest.min_samples_leaf", "must be at least 1, got %d", f.MinSamplesLeaf)
	case f.MaxFeatures < 0:
		return diffusion.ConfigError("forest.max_features", "must be non-negative, got %d", f.MaxFeatures)
	}
	return c.DatasetSpec().Validate(nil)
}

// RatioAN is the share of anomalous trajectories implied by the exponent
// grid when every bucket holds the same number of trajectories.
func (c *Config) RatioAN() float64 {
	if len(c.Alphas) == 0 {
		return 0
	}
	return 1 / float64(len(c.Alphas))
}

func (c *Config) DatasetSpec() dataset.Spec {
	return dataset.Spec{
		NumPerClass: c.NumTraj,
		Exponents:   append([]float64(nil), c.Alphas...),
		Processes:   append([]string(nil), c.Processes...),
		TMax:        c.TMax,
		Mode:        diffusion.Mode(c.Mode),
		Lag:         c.Lag,
		SplitRatio:  c.Ratio,
		Seed:        c.Seed,
		Workers:     c.Workers,
	}
}

func (c *Config) ForestConfig() forest.Config {
	return forest.Config{
		NEstimators:     c.Forest.NEstimators,
		MaxDepth:        c.Forest.MaxDepth,
		MinSamplesSplit: c.Forest.MinSamplesSplit,
		MinSamplesLeaf:  c.Forest.MinSamplesLeaf,
		MaxFeatures:     c.Forest.MaxFeatures,
		Bootstrap:       c.Forest.Bootstrap,
		Seed:            c.Seed,
		Workers:         c.Workers,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Processes = append([]string(nil), c.Processes...)
	out.Alphas = append([]float64(nil), c.Alphas...)
	return &out
}
