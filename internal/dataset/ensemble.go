package dataset

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/anombench/internal/diffusion"
	"github.com/san-kum/anombench/internal/features"
	"github.com/san-kum/anombench/internal/storage"
)

// generate fills every bucket concurrently. Each task owns one bucket and
// writes only its own slot, so the result does not depend on scheduling.
func (b *Builder) generate(ctx context.Context, spec Spec, buckets []Bucket) ([][]features.Vector, error) {
	out := make([][]features.Vector, len(buckets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(spec.workers())

	var done atomic.Int64
	for _, bk := range buckets {
		g.Go(func() error {
			vecs, cached, err := b.fill(ctx, spec, bk)
			if err != nil {
				return err
			}
			out[bk.Index] = vecs

			p := Progress{Done: int(done.Add(1)), Total: len(buckets), Bucket: bk, Cached: cached}
			b.logger.Debug("bucket ready",
				zap.String("process", bk.Process),
				zap.Float64("alpha", bk.Alpha),
				zap.Bool("cached", cached),
				zap.Int("done", p.Done),
				zap.Int("total", p.Total),
			)
			if b.observer != nil {
				b.observer.OnProgress(p)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Builder) fill(ctx context.Context, spec Spec, bk Bucket) ([]features.Vector, bool, error) {
	trajs, cached, err := b.trajectories(ctx, spec, bk)
	if err != nil {
		return nil, false, err
	}

	want := features.Len(spec.TMax, spec.Lag)
	vecs := make([]features.Vector, len(trajs))
	for i, tr := range trajs {
		v, err := features.Extract(tr, spec.Lag)
		if err != nil {
			return nil, false, fmt.Errorf("%s alpha=%s sample %d: %w", bk.Process, FormatLabel(bk.Alpha), i, err)
		}
		if len(v) != want {
			return nil, false, fmt.Errorf("%w: %s alpha=%s sample %d has %d features, want %d",
				diffusion.ErrInvalidTrajectory, bk.Process, FormatLabel(bk.Alpha), i, len(v), want)
		}
		vecs[i] = v
	}
	return vecs, cached, nil
}

func (b *Builder) trajectories(ctx context.Context, spec Spec, bk Bucket) ([]diffusion.Trajectory, bool, error) {
	key := cacheKey(spec, bk)
	if b.cache != nil {
		trajs, ok, err := b.cache.Load(key)
		if err != nil {
			b.logger.Warn("ignoring unreadable cache entry", zap.String("key", key), zap.Error(err))
		} else if ok {
			return trajs, true, nil
		}
	}

	gen, err := b.registry.Generator(bk.Process)
	if err != nil {
		return nil, false, err
	}

	rng := rand.New(rand.NewSource(spec.BucketSeed(bk.Index)))
	trajs := make([]diffusion.Trajectory, spec.NumPerClass)
	for i := range trajs {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		default:
		}

		tr, err := gen.Generate(rng, bk.Alpha, spec.TMax)
		if err != nil {
			return nil, false, err
		}
		trajs[i] = tr
	}

	if b.cache != nil {
		meta := storage.BucketMetadata{
			Key:     key,
			Process: bk.Process,
			Alpha:   bk.Alpha,
			TMax:    spec.TMax,
			Count:   len(trajs),
			Seed:    spec.BucketSeed(bk.Index),
		}
		if err := b.cache.Save(meta, trajs); err != nil {
			b.logger.Warn("failed to cache bucket", zap.String("key", key), zap.Error(err))
		}
	}
	return trajs, false, nil
}
