package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/anombench/internal/diffusion"
	"github.com/san-kum/anombench/internal/forest"
	"github.com/san-kum/anombench/internal/models"
)

// Registry maps process names to generator constructors.
type Registry struct {
	models map[string]func() diffusion.Generator
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]func() diffusion.Generator),
	}

	r.models["fbm"] = func() diffusion.Generator { return models.NewFBM() }
	r.models["sbm"] = func() diffusion.Generator { return models.NewSBM() }
	r.models["ctrw"] = func() diffusion.Generator { return models.NewCTRW() }
	r.models["lw"] = func() diffusion.Generator { return models.NewLW() }

	return r
}

// Register adds or replaces a generator.
func (r *Registry) Register(name string, fn func() diffusion.Generator) {
	r.models[name] = fn
}

func (r *Registry) Generator(name string) (diffusion.Generator, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewTrainer returns a classifier for categorical modes and a regressor
// otherwise.
func NewTrainer(mode diffusion.Mode, cfg forest.Config) forest.Trainer {
	if mode.Categorical() {
		return forest.NewClassifier(cfg)
	}
	return forest.NewRegressor(cfg)
}
