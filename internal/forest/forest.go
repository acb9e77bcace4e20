package forest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Trainer fits a model on a feature matrix and numeric labels.
type Trainer interface {
	Fit(ctx context.Context, X [][]float64, y []float64) error
	Predict(X [][]float64) ([]float64, error)
}

type ensemble struct {
	cfg       Config
	task      task
	nClasses  int
	nFeatures int
	trees     []*node
}

func validate(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return ErrEmpty
	}
	if len(y) != len(X) {
		return fmt.Errorf("%w: %d rows, %d labels", ErrShape, len(X), len(y))
	}
	p := len(X[0])
	if p == 0 {
		return fmt.Errorf("%w: rows have no features", ErrShape)
	}
	for i, row := range X {
		if len(row) != p {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrShape, i, len(row), p)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: row %d has a non-finite feature", ErrShape, i)
			}
		}
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: label %d is not finite", ErrLabel, i)
		}
	}
	return nil
}

func (e *ensemble) fit(ctx context.Context, X [][]float64, y []float64, cls []int, maxFeatures int) error {
	n := len(X)
	e.nFeatures = len(X[0])
	trees := make([]*node, e.cfg.NEstimators)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for t := range trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rng := rand.New(rand.NewSource(e.cfg.Seed + int64(t)))
			idx := make([]int, n)
			for j := range idx {
				if e.cfg.Bootstrap {
					idx[j] = rng.Intn(n)
				} else {
					idx[j] = j
				}
			}

			gr := &grower{
				X:           X,
				y:           y,
				cls:         cls,
				task:        e.task,
				nClasses:    e.nClasses,
				maxDepth:    e.cfg.MaxDepth,
				minSplit:    e.cfg.MinSamplesSplit,
				minLeaf:     e.cfg.MinSamplesLeaf,
				maxFeatures: maxFeatures,
				rng:         rng,
				buf:         make([]pair, n),
			}
			trees[t] = gr.grow(idx, 0)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	e.trees = trees
	return nil
}

func (e *ensemble) check(X [][]float64) error {
	if len(e.trees) == 0 {
		return ErrNotFitted
	}
	for i, row := range X {
		if len(row) != e.nFeatures {
			return fmt.Errorf("%w: row %d has %d features, model expects %d", ErrShape, i, len(row), e.nFeatures)
		}
	}
	return nil
}

// Classifier is a random forest over categorical labels.
type Classifier struct {
	ens     ensemble
	classes []float64
}

func NewClassifier(cfg Config) *Classifier {
	return &Classifier{ens: ensemble{cfg: cfg.withDefaults(), task: classification}}
}

func (c *Classifier) Fit(ctx context.Context, X [][]float64, y []float64) error {
	if err := validate(X, y); err != nil {
		return err
	}

	index := make(map[float64]int)
	for _, v := range y {
		index[v] = 0
	}
	c.classes = make([]float64, 0, len(index))
	for v := range index {
		c.classes = append(c.classes, v)
	}
	sort.Float64s(c.classes)
	for k, v := range c.classes {
		index[v] = k
	}

	cls := make([]int, len(y))
	for i, v := range y {
		cls[i] = index[v]
	}

	maxFeatures := c.ens.cfg.MaxFeatures
	if maxFeatures == 0 {
		maxFeatures = int(math.Max(1, math.Round(math.Sqrt(float64(len(X[0]))))))
	}

	c.ens.nClasses = len(c.classes)
	return c.ens.fit(ctx, X, nil, cls, maxFeatures)
}

// Classes returns the distinct training labels in the column order of
// PredictProba.
func (c *Classifier) Classes() []float64 {
	out := make([]float64, len(c.classes))
	copy(out, c.classes)
	return out
}

// PredictProba averages the leaf class distributions of all trees.
func (c *Classifier) PredictProba(X [][]float64) ([][]float64, error) {
	if err := c.ens.check(X); err != nil {
		return nil, err
	}

	out := make([][]float64, len(X))
	for i, x := range X {
		p := make([]float64, len(c.classes))
		for _, t := range c.ens.trees {
			for k, v := range t.find(x).dist {
				p[k] += v
			}
		}
		for k := range p {
			p[k] /= float64(len(c.ens.trees))
		}
		out[i] = p
	}
	return out, nil
}

// Predict returns the most probable training label per row.
func (c *Classifier) Predict(X [][]float64) ([]float64, error) {
	probs, err := c.PredictProba(X)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(X))
	for i, p := range probs {
		best := 0
		for k := 1; k < len(p); k++ {
			if p[k] > p[best] {
				best = k
			}
		}
		out[i] = c.classes[best]
	}
	return out, nil
}

// Regressor is a random forest over continuous labels.
type Regressor struct {
	ens ensemble
}

func NewRegressor(cfg Config) *Regressor {
	return &Regressor{ens: ensemble{cfg: cfg.withDefaults(), task: regression}}
}

func (r *Regressor) Fit(ctx context.Context, X [][]float64, y []float64) error {
	if err := validate(X, y); err != nil {
		return err
	}

	maxFeatures := r.ens.cfg.MaxFeatures
	if maxFeatures == 0 {
		maxFeatures = len(X[0]) / 3
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}
	return r.ens.fit(ctx, X, y, nil, maxFeatures)
}

// Predict averages the tree outputs.
func (r *Regressor) Predict(X [][]float64) ([]float64, error) {
	if err := r.ens.check(X); err != nil {
		return nil, err
	}

	out := make([]float64, len(X))
	for i, x := range X {
		sum := 0.0
		for _, t := range r.ens.trees {
			sum += t.find(x).value
		}
		out[i] = sum / float64(len(r.ens.trees))
	}
	return out, nil
}
