package config

import (
	"sort"
	"strings"
)

func preset(fn func(c *Config)) *Config {
	c := DefaultConfig()
	fn(c)
	return c
}

var Presets = map[string]map[string]*Config{
	"regression": {
		"fbm-small": preset(func(c *Config) {
			c.TMax, c.NumTraj = 32, 10
			c.Processes = []string{"fbm"}
			c.Alphas = []float64{0.5, 1.0, 1.5}
			c.Forest.NEstimators = 20
		}),
		"fbm": preset(func(c *Config) {
			c.Processes = []string{"fbm"}
			c.Alphas = []float64{0.2, 0.4, 0.6, 0.8, 1.0, 1.2, 1.4, 1.6, 1.8}
		}),
		"sbm": preset(func(c *Config) {
			c.Processes = []string{"sbm"}
			c.Alphas = []float64{0.25, 0.5, 0.75, 1.0, 1.25, 1.5, 1.75, 2.0}
		}),
		"ctrw-lag": preset(func(c *Config) {
			c.Processes = []string{"ctrw"}
			c.Alphas = []float64{0.2, 0.4, 0.6, 0.8, 1.0}
			c.Lag = 1
		}),
	},
	"discrimination": {
		"sub": preset(func(c *Config) {
			c.Mode = "discrimination"
			c.Processes = []string{"fbm", "sbm", "ctrw"}
			c.Alphas = []float64{0.3, 0.6, 0.9}
		}),
		"super": preset(func(c *Config) {
			c.Mode = "discrimination"
			c.Processes = []string{"fbm", "sbm", "lw"}
			c.Alphas = []float64{1.2, 1.5, 1.8}
		}),
		"small": preset(func(c *Config) {
			c.Mode = "discrimination"
			c.TMax, c.NumTraj = 50, 20
			c.Processes = []string{"fbm", "sbm"}
			c.Alphas = []float64{0.5, 1.5}
			c.Forest.NEstimators = 30
		}),
	},
	"anomaly": {
		"fbm": preset(func(c *Config) {
			c.Mode = "anomaly"
			c.Processes = []string{"fbm"}
			c.Alphas = []float64{0.5, 1.0, 1.5}
		}),
		"sbm-lag": preset(func(c *Config) {
			c.Mode = "anomaly"
			c.Processes = []string{"sbm"}
			c.Alphas = []float64{0.6, 1.0, 1.4}
			c.Lag = 2
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(mode, name string) *Config {
	if m, ok := Presets[mode]; ok {
		if c, ok := m[name]; ok {
			return c.Clone()
		}
	}
	return nil
}

// ParsePreset resolves a "mode/name" reference.
func ParsePreset(ref string) *Config {
	mode, name, ok := strings.Cut(ref, "/")
	if !ok {
		return nil
	}
	return GetPreset(mode, name)
}

// ListPresets returns sorted "mode/name" references, restricted to mode
// unless it is empty.
func ListPresets(mode string) []string {
	var out []string
	for m, names := range Presets {
		if mode != "" && m != mode {
			continue
		}
		for n := range names {
			out = append(out, m+"/"+n)
		}
	}
	sort.Strings(out)
	return out
}
