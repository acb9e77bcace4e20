// Package optim tunes forest hyperparameters by exhaustive grid search.
package optim

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/anombench/internal/dataset"
	"github.com/san-kum/anombench/internal/diffusion"
	"github.com/san-kum/anombench/internal/evaluate"
	"github.com/san-kum/anombench/internal/experiment"
	"github.com/san-kum/anombench/internal/forest"
)

// Tunable parameter names.
const (
	ParamTrees       = "n_estimators"
	ParamDepth       = "max_depth"
	ParamMaxFeatures = "max_features"
	ParamMinLeaf     = "min_samples_leaf"
)

// Objective scores one parameter combination; lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type Trial struct {
	Params  map[string]float64
	Score   float64
	Elapsed time.Duration
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	logger     *zap.Logger
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, logger: zap.NewNop()}
}

func (g *GridSearch) WithLogger(l *zap.Logger) *GridSearch {
	if l != nil {
		g.logger = l
	}
	return g
}

// Search evaluates every combination in order and returns the best one.
// Ties keep the earlier combination. The first objective error aborts.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, diffusion.ConfigError("grid", "%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, &best, &bestParams, &trials)
	if err != nil {
		return nil, 0, trials, err
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
	trials *[]Trial,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		val, err := objective(ctx, current)
		if err != nil {
			return err
		}
		trial := Trial{Params: current, Score: val, Elapsed: time.Since(start)}
		*trials = append(*trials, trial)
		g.logger.Debug("trial", zap.Any("params", current), zap.Float64("score", val), zap.Duration("elapsed", trial.Elapsed))

		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, objective, best, bestParams, trials); err != nil {
			return err
		}
	}
	return nil
}

// Apply overrides base with the tunable parameters in params.
func Apply(base forest.Config, params map[string]float64) (forest.Config, error) {
	cfg := base
	for name, v := range params {
		n := int(v)
		if float64(n) != v || n < 0 {
			return cfg, diffusion.ConfigError(name, "expected a non-negative integer, got %v", v)
		}
		switch name {
		case ParamTrees:
			cfg.NEstimators = n
		case ParamDepth:
			cfg.MaxDepth = n
		case ParamMaxFeatures:
			cfg.MaxFeatures = n
		case ParamMinLeaf:
			cfg.MinSamplesLeaf = n
		default:
			return cfg, diffusion.ConfigError(name, "not a tunable forest parameter")
		}
	}
	return cfg, nil
}

// ForestObjective trains a forest on the training partition of ds and
// scores it on the test partition: MSE for regression, 1 - accuracy for
// categorical modes.
func ForestObjective(ds *dataset.Dataset, base forest.Config, grid []float64) Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg, err := Apply(base, params)
		if err != nil {
			return 0, err
		}
		model, _, err := experiment.Train(ctx, ds, cfg)
		if err != nil {
			return 0, err
		}
		res, err := evaluate.Evaluate(model, ds.TestX, ds.TestY, ds.Mode, grid, ds.Classes)
		if err != nil {
			return 0, diffusion.Wrap(diffusion.StageEvaluate, err)
		}
		if ds.Mode.Categorical() {
			return 1 - res.Accuracy, nil
		}
		return res.MSE, nil
	}
}
