// Package experiment runs one benchmark: dataset generation, forest
// training and evaluation.
package experiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/anombench/internal/config"
	"github.com/san-kum/anombench/internal/dataset"
	"github.com/san-kum/anombench/internal/diffusion"
	"github.com/san-kum/anombench/internal/evaluate"
	"github.com/san-kum/anombench/internal/forest"
)

// Outcome is everything a finished run produced.
type Outcome struct {
	Config     *config.Config
	RatioAN    float64
	TrainSize  int
	TestSize   int
	FeatureLen int
	TrainTime  time.Duration
	Result     *evaluate.Result

	Dataset *dataset.Dataset
}

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	cache    dataset.Cache
	observer dataset.Observer
	logger   *zap.Logger
}

type Option func(*Experiment)

func WithLogger(l *zap.Logger) Option {
	return func(e *Experiment) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithCache(c dataset.Cache) Option { return func(e *Experiment) { e.cache = c } }

func WithObserver(o dataset.Observer) Option { return func(e *Experiment) { e.observer = o } }

func WithRegistry(r *Registry) Option { return func(e *Experiment) { e.registry = r } }

// New copies cfg; later changes to it do not affect the experiment.
func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:      cfg.Clone(),
		registry: NewRegistry(),
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Experiment) Config() *config.Config { return e.cfg.Clone() }

// Build validates the configuration and generates the dataset.
func (e *Experiment) Build(ctx context.Context) (*dataset.Dataset, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, diffusion.Wrap(diffusion.StageConfig, err)
	}
	e.logger.Info("building dataset",
		zap.String("mode", e.cfg.Mode),
		zap.Strings("processes", e.cfg.Processes),
		zap.Float64s("alphas", e.cfg.Alphas),
		zap.Int("num_traj", e.cfg.NumTraj),
		zap.Float64("ratio_an", e.cfg.RatioAN()),
	)

	opts := []dataset.Option{dataset.WithLogger(e.logger)}
	if e.cache != nil {
		opts = append(opts, dataset.WithCache(e.cache))
	}
	if e.observer != nil {
		opts = append(opts, dataset.WithObserver(e.observer))
	}

	start := time.Now()
	ds, err := dataset.NewBuilder(e.registry, opts...).Build(ctx, e.cfg.DatasetSpec())
	if err != nil {
		return nil, diffusion.Wrap(diffusion.StageBuild, err)
	}
	e.logger.Info("dataset ready",
		zap.Int("train", ds.TrainSize()),
		zap.Int("test", ds.TestSize()),
		zap.Int("features", ds.FeatureLen),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ds, nil
}

// Train fits a forest of the mode's kind on the training partition.
func Train(ctx context.Context, ds *dataset.Dataset, cfg forest.Config) (forest.Trainer, time.Duration, error) {
	model := NewTrainer(ds.Mode, cfg)
	start := time.Now()
	if err := model.Fit(ctx, ds.TrainX, ds.TrainY); err != nil {
		if ctx.Err() != nil {
			return nil, 0, diffusion.Wrap(diffusion.StageTrain, err)
		}
		return nil, 0, diffusion.Wrap(diffusion.StageTrain, fmt.Errorf("%w: %w", diffusion.ErrTraining, err))
	}
	return model, time.Since(start), nil
}

// Run executes the full pipeline. The first failing stage aborts it.
func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	ds, err := e.Build(ctx)
	if err != nil {
		return nil, err
	}

	fc := e.cfg.ForestConfig()
	e.logger.Info("training forest",
		zap.Bool("classifier", ds.Mode.Categorical()),
		zap.Int("trees", fc.NEstimators),
	)
	model, elapsed, err := Train(ctx, ds, fc)
	if err != nil {
		return nil, err
	}
	e.logger.Info("forest trained", zap.Duration("train_time", elapsed))

	res, err := evaluate.Evaluate(model, ds.TestX, ds.TestY, ds.Mode, e.cfg.Alphas, ds.Classes)
	if err != nil {
		return nil, diffusion.Wrap(diffusion.StageEvaluate, err)
	}
	if ds.Mode.Categorical() {
		e.logger.Info("evaluated", zap.Float64("accuracy", res.Accuracy))
	} else {
		e.logger.Info("evaluated", zap.Float64("mse", res.MSE), zap.Float64("mae", res.MAE))
	}

	return &Outcome{
		Config:     e.cfg.Clone(),
		RatioAN:    e.cfg.RatioAN(),
		TrainSize:  ds.TrainSize(),
		TestSize:   ds.TestSize(),
		FeatureLen: ds.FeatureLen,
		TrainTime:  elapsed,
		Result:     res,
		Dataset:    ds,
	}, nil
}
