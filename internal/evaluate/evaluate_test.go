package evaluate

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/anombench/internal/diffusion"
)

// fixed returns canned predictions.
type fixed struct {
	pred []float64
	err  error
}

func (f fixed) Predict(X [][]float64) ([]float64, error) { return f.pred, f.err }

// offset predicts the first feature plus d.
type offset struct{ d float64 }

func (o offset) Predict(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = x[0] + o.d
	}
	return out, nil
}

func rows(vals ...float64) [][]float64 {
	out := make([][]float64, len(vals))
	for i, v := range vals {
		out[i] = []float64{v}
	}
	return out
}

func TestAccuracyPerfectAndInverted(t *testing.T) {
	y := []float64{0, 1, 0, 1, 1, 0}
	classes := []string{"fbm", "sbm"}

	res, err := Evaluate(fixed{pred: y}, rows(y...), y, diffusion.Discrimination, nil, classes)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Accuracy)
	assert.Equal(t, [][]int{{3, 0}, {0, 3}}, res.Confusion)

	inverted := []float64{1, 0, 1, 0, 0, 1}
	res, err = Evaluate(fixed{pred: inverted}, rows(y...), y, diffusion.Discrimination, nil, classes)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Accuracy)
	assert.Equal(t, [][]int{{0, 3}, {3, 0}}, res.Confusion)
}

func TestAccuracyMultiClass(t *testing.T) {
	y := []float64{0, 1, 2, 2}
	pred := []float64{0, 1, 1, 2}
	res, err := Evaluate(fixed{pred: pred}, rows(y...), y, diffusion.Discrimination, nil, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, res.Accuracy, 1e-12)
	assert.Len(t, res.Confusion, 3)
}

func TestRegressionExact(t *testing.T) {
	y := []float64{0.5, 1.0, 1.5, 0.5, 1.0, 1.5}
	res, err := Evaluate(offset{}, rows(y...), y, diffusion.Regression, []float64{0.5, 1, 1.5}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.MSE)
	assert.Equal(t, 0.0, res.MAE)
	assert.Equal(t, []float64{1, 0, 0}, res.Histogram)
}

func TestRegressionConstantOffset(t *testing.T) {
	y := []float64{0.5, 1.0, 1.5}
	res, err := Evaluate(offset{d: 0.25}, rows(y...), y, diffusion.Regression, []float64{0.5, 1, 1.5}, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.25, res.MAE, 1e-12)
	assert.InDelta(t, 0.0625, res.MSE, 1e-12)
}

func TestRegressionHistogramMass(t *testing.T) {
	y := []float64{0, 0, 0, 0, 0, 0}
	pred := []float64{0, 0.1, 0.2, 0.5, 0.9, 1.0}
	res, err := Evaluate(fixed{pred: pred}, rows(y...), y, diffusion.Regression, []float64{0.5, 1, 1.5}, nil)
	require.NoError(t, err)

	require.Len(t, res.Histogram, 3)
	require.Len(t, res.BinEdges, 4)
	sum := 0.0
	for _, m := range res.Histogram {
		sum += m
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.InDelta(t, 3.0/6, res.Histogram[0], 1e-12)
	assert.InDelta(t, 1.0/6, res.Histogram[1], 1e-12)
	assert.InDelta(t, 2.0/6, res.Histogram[2], 1e-12)
	assert.Equal(t, 0.0, res.BinEdges[0])
	assert.Equal(t, 1.0, res.BinEdges[3])
}

func TestEvaluateFailures(t *testing.T) {
	y := []float64{0, 1}
	classes := []string{"a", "b"}
	boom := errors.New("boom")

	tests := []struct {
		name    string
		model   Predictor
		X       [][]float64
		y       []float64
		mode    diffusion.Mode
		classes []string
	}{
		{"empty", fixed{}, nil, nil, diffusion.Regression, nil},
		{"row mismatch", fixed{pred: y}, rows(0), y, diffusion.Regression, nil},
		{"predict error", fixed{err: boom}, rows(0, 1), y, diffusion.Regression, nil},
		{"short predictions", fixed{pred: []float64{0}}, rows(0, 1), y, diffusion.Regression, nil},
		{"class out of range", fixed{pred: []float64{0, 2}}, rows(0, 1), y, diffusion.Discrimination, classes},
		{"fractional class", fixed{pred: []float64{0, 0.5}}, rows(0, 1), y, diffusion.Anomaly, classes},
		{"infinite class", fixed{pred: []float64{0, math.Inf(1)}}, rows(0, 1), y, diffusion.Discrimination, classes},
		{"negative infinite class", fixed{pred: []float64{math.Inf(-1), 1}}, rows(0, 1), y, diffusion.Discrimination, classes},
		{"huge class", fixed{pred: []float64{0, 1e20}}, rows(0, 1), y, diffusion.Anomaly, classes},
		{"nan class", fixed{pred: []float64{math.NaN(), 1}}, rows(0, 1), y, diffusion.Discrimination, classes},
		{"no classes", fixed{pred: y}, rows(0, 1), y, diffusion.Discrimination, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.model, tt.X, tt.y, tt.mode, []float64{1}, tt.classes)
			assert.ErrorIs(t, err, diffusion.ErrEvaluation)
		})
	}
}

func TestHistogramDegenerate(t *testing.T) {
	mass, edges, err := Histogram([]float64{0.3, 0.3}, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0, 0}, mass)
	assert.Len(t, edges, 5)

	_, _, err = Histogram(nil, 3)
	assert.Error(t, err)
}
