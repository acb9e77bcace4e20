// Package evaluate scores a fitted model on the test partition.
package evaluate

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/san-kum/anombench/internal/diffusion"
	"github.com/san-kum/anombench/internal/metrics"
)

// Predictor is the prediction half of a trainer.
type Predictor interface {
	Predict(X [][]float64) ([]float64, error)
}

type Result struct {
	Mode    diffusion.Mode
	Samples int

	// Categorical modes.
	Classes   []string
	Confusion [][]int
	Accuracy  float64

	// Regression.
	MSE       float64
	MAE       float64
	Histogram []float64
	BinEdges  []float64

	Predictions []float64
	Truth       []float64
}

// Evaluate predicts X and scores the predictions against y. In regression
// mode the absolute errors are binned into len(grid) bins.
func Evaluate(model Predictor, X [][]float64, y []float64, mode diffusion.Mode, grid []float64, classes []string) (*Result, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("%w: empty test set", diffusion.ErrEvaluation)
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("%w: %d test rows, %d labels", diffusion.ErrEvaluation, len(X), len(y))
	}

	pred, err := model.Predict(X)
	if err != nil {
		return nil, fmt.Errorf("%w: predict: %w", diffusion.ErrEvaluation, err)
	}
	if len(pred) != len(y) {
		return nil, fmt.Errorf("%w: %d predictions for %d samples", diffusion.ErrEvaluation, len(pred), len(y))
	}

	res := &Result{Mode: mode, Samples: len(y), Predictions: pred, Truth: y}
	if mode.Categorical() {
		err = res.classify(classes)
	} else {
		err = res.regress(len(grid))
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Result) classify(classes []string) error {
	if len(classes) == 0 {
		return fmt.Errorf("%w: no classes to score against", diffusion.ErrEvaluation)
	}

	conf := metrics.NewConfusion(len(classes))
	for i := range r.Predictions {
		p, err := decodeClass(r.Predictions[i], len(classes))
		if err != nil {
			return fmt.Errorf("%w: prediction %d: %v", diffusion.ErrEvaluation, i, err)
		}
		t, err := decodeClass(r.Truth[i], len(classes))
		if err != nil {
			return fmt.Errorf("%w: label %d: %v", diffusion.ErrEvaluation, i, err)
		}
		conf.Observe(float64(p), float64(t))
	}

	r.Classes = append([]string(nil), classes...)
	r.Confusion = conf.Matrix()
	r.Accuracy = conf.Value()
	return nil
}

// decodeClass maps a numeric label back to a class index.
func decodeClass(v float64, n int) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%v is not a class index in [0,%d)", v, n)
	}
	k := math.Round(v)
	if math.Abs(v-k) > 1e-9 || k < 0 || k >= float64(n) {
		return 0, fmt.Errorf("%v is not a class index in [0,%d)", v, n)
	}
	return int(k), nil
}

func (r *Result) regress(bins int) error {
	if bins < 1 {
		return fmt.Errorf("%w: exponent grid is empty", diffusion.ErrEvaluation)
	}

	mse, mae := metrics.NewMSE(), metrics.NewMAE()
	metrics.Observe(r.Predictions, r.Truth, mse, mae)
	r.MSE = mse.Value()
	r.MAE = mae.Value()

	abs := make([]float64, len(r.Predictions))
	for i := range abs {
		abs[i] = math.Abs(r.Predictions[i] - r.Truth[i])
	}
	if math.IsNaN(r.MSE) || math.IsInf(r.MSE, 0) {
		return fmt.Errorf("%w: non-finite prediction", diffusion.ErrEvaluation)
	}

	var err error
	r.Histogram, r.BinEdges, err = Histogram(abs, bins)
	if err != nil {
		return fmt.Errorf("%w: %v", diffusion.ErrEvaluation, err)
	}
	return nil
}

// Histogram bins values into equal-width bins spanning their observed range
// and normalises the counts to a probability mass. edges has bins+1 entries.
// When all values are equal the whole mass falls into the first bin.
func Histogram(values []float64, bins int) (mass, edges []float64, err error) {
	lo, err := stats.Min(values)
	if err != nil {
		return nil, nil, err
	}
	hi, err := stats.Max(values)
	if err != nil {
		return nil, nil, err
	}

	width := (hi - lo) / float64(bins)
	edges = make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi

	mass = make([]float64, bins)
	for _, v := range values {
		k := 0
		if width > 0 {
			k = int((v - lo) / width)
		}
		if k >= bins {
			k = bins - 1
		}
		mass[k]++
	}
	for i := range mass {
		mass[i] /= float64(len(values))
	}
	return mass, edges, nil
}
