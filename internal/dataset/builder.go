package dataset

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/san-kum/anombench/internal/diffusion"
	"github.com/san-kum/anombench/internal/features"
	"github.com/san-kum/anombench/internal/storage"
)

// Cache persists generated trajectories between runs.
type Cache interface {
	Load(key string) ([]diffusion.Trajectory, bool, error)
	Save(meta storage.BucketMetadata, trajs []diffusion.Trajectory) error
}

// Progress is reported once per finished bucket.
type Progress struct {
	Done   int
	Total  int
	Bucket Bucket
	Cached bool
}

// Observer receives progress events. It may be called from several
// goroutines at once.
type Observer interface {
	OnProgress(p Progress)
}

type ObserverFunc func(Progress)

func (f ObserverFunc) OnProgress(p Progress) { f(p) }

type Builder struct {
	registry Registry
	cache    Cache
	observer Observer
	logger   *zap.Logger
}

type Option func(*Builder)

func WithCache(c Cache) Option       { return func(b *Builder) { b.cache = c } }
func WithObserver(o Observer) Option { return func(b *Builder) { b.observer = o } }
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

func NewBuilder(reg Registry, opts ...Option) *Builder {
	b := &Builder{registry: reg, logger: zap.NewNop()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build validates spec, generates every bucket and splits the samples.
// Nothing is generated when validation fails.
func (b *Builder) Build(ctx context.Context, spec Spec) (*Dataset, error) {
	if err := spec.Validate(b.registry); err != nil {
		return nil, err
	}

	buckets := spec.Buckets()
	b.logger.Debug("generating buckets",
		zap.Int("buckets", len(buckets)),
		zap.Int("per_bucket", spec.NumPerClass),
		zap.Int("t_max", spec.TMax),
	)

	samples, err := b.generate(ctx, spec, buckets)
	if err != nil {
		return nil, err
	}

	ds := assemble(spec, buckets, samples)
	b.logger.Info("dataset built",
		zap.Int("train", ds.TrainSize()),
		zap.Int("test", ds.TestSize()),
		zap.Int("features", ds.FeatureLen),
	)
	return ds, nil
}

func assemble(spec Spec, buckets []Bucket, samples [][]features.Vector) *Dataset {
	nTrain := TrainCount(spec.NumPerClass, spec.SplitRatio)
	nTest := spec.NumPerClass - nTrain

	ds := &Dataset{
		Mode:        spec.Mode,
		TrainX:      make([][]float64, 0, nTrain*len(buckets)),
		TrainY:      make([]float64, 0, nTrain*len(buckets)),
		TestX:       make([][]float64, 0, nTest*len(buckets)),
		TestY:       make([]float64, 0, nTest*len(buckets)),
		TrainBucket: make([]int, 0, nTrain*len(buckets)),
		TestBucket:  make([]int, 0, nTest*len(buckets)),
		Buckets:     buckets,
		Classes:     Classes(spec.Mode, spec.Processes),
		FeatureLen:  features.Len(spec.TMax, spec.Lag),
	}

	for _, bk := range buckets {
		label := Label(bk, spec.Mode)
		rng := rand.New(rand.NewSource(spec.SplitSeed(bk.Index)))
		train, test := stratify(len(samples[bk.Index]), spec.SplitRatio, rng)

		for _, i := range train {
			ds.TrainX = append(ds.TrainX, samples[bk.Index][i])
			ds.TrainY = append(ds.TrainY, label)
			ds.TrainBucket = append(ds.TrainBucket, bk.Index)
		}
		for _, i := range test {
			ds.TestX = append(ds.TestX, samples[bk.Index][i])
			ds.TestY = append(ds.TestY, label)
			ds.TestBucket = append(ds.TestBucket, bk.Index)
		}
	}
	return ds
}

// cacheKey identifies the trajectories of one bucket.
func cacheKey(spec Spec, bk Bucket) string {
	return fmt.Sprintf("%s_a%s_t%d_n%d_s%d",
		bk.Process, FormatLabel(bk.Alpha), spec.TMax, spec.NumPerClass, spec.BucketSeed(bk.Index))
}
