package metrics

import (
	"math"
	"testing"
)

func TestMSEAndMAE(t *testing.T) {
	tests := []struct {
		name    string
		pred    []float64
		truth   []float64
		wantMSE float64
		wantMAE float64
	}{
		{"exact", []float64{0.5, 1, 1.5}, []float64{0.5, 1, 1.5}, 0, 0},
		{"constant offset", []float64{0.75, 1.25, 1.75}, []float64{0.5, 1, 1.5}, 0.0625, 0.25},
		{"mixed sign", []float64{1, -1}, []float64{0, 0}, 1, 1},
		{"empty", nil, nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mse, mae := NewMSE(), NewMAE()
			Observe(tt.pred, tt.truth, mse, mae)

			if math.Abs(mse.Value()-tt.wantMSE) > 1e-12 {
				t.Errorf("mse: want %f, got %f", tt.wantMSE, mse.Value())
			}
			if math.Abs(mae.Value()-tt.wantMAE) > 1e-12 {
				t.Errorf("mae: want %f, got %f", tt.wantMAE, mae.Value())
			}
		})
	}
}

func TestConfusionAccuracy(t *testing.T) {
	c := NewConfusion(2)
	Observe([]float64{0, 1, 1, 0}, []float64{0, 1, 1, 0}, c)
	if c.Value() != 1.0 {
		t.Errorf("expected accuracy 1, got %f", c.Value())
	}

	c.Reset()
	Observe([]float64{1, 0, 0, 1}, []float64{0, 1, 1, 0}, c)
	if c.Value() != 0.0 {
		t.Errorf("expected accuracy 0, got %f", c.Value())
	}

	m := c.Matrix()
	if m[0][1] != 2 || m[1][0] != 2 {
		t.Errorf("unexpected matrix %v", m)
	}
}

func TestConfusionMultiClassTrace(t *testing.T) {
	c := NewConfusion(3)
	Observe([]float64{0, 1, 2, 2, 0, 1}, []float64{0, 1, 2, 1, 2, 1}, c)

	if got, want := c.Value(), 4.0/6.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected accuracy %f, got %f", want, got)
	}
}

func TestMetricReset(t *testing.T) {
	mse := NewMSE()
	mse.Observe(3, 1)
	mse.Reset()
	if mse.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", mse.Value())
	}

	values := Values(NewMAE(), NewConfusion(2))
	if _, ok := values["mae"]; !ok {
		t.Error("mae missing from values")
	}
	if _, ok := values["accuracy"]; !ok {
		t.Error("accuracy missing from values")
	}
}
