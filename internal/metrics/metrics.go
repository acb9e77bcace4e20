// Package metrics provides streaming accumulators for evaluation scores.
package metrics

import "math"

// Metric accumulates one score over (prediction, truth) pairs.
type Metric interface {
	Name() string
	Observe(pred, truth float64)
	Value() float64
	Reset()
}

// Observe feeds every pair to all metrics.
func Observe(pred, truth []float64, ms ...Metric) {
	for i := range pred {
		for _, m := range ms {
			m.Observe(pred[i], truth[i])
		}
	}
}

// Values returns the current value of each metric keyed by name.
func Values(ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

type MSE struct {
	sum     float64
	samples int
}

func NewMSE() *MSE { return &MSE{} }

func (m *MSE) Name() string { return "mse" }

func (m *MSE) Observe(pred, truth float64) {
	d := pred - truth
	m.sum += d * d
	m.samples++
}

func (m *MSE) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MSE) Reset() {
	m.sum = 0
	m.samples = 0
}

type MAE struct {
	sum     float64
	samples int
}

func NewMAE() *MAE { return &MAE{} }

func (m *MAE) Name() string { return "mae" }

func (m *MAE) Observe(pred, truth float64) {
	m.sum += math.Abs(pred - truth)
	m.samples++
}

func (m *MAE) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MAE) Reset() {
	m.sum = 0
	m.samples = 0
}

// Confusion counts class-index pairs. Rows are true classes, columns are
// predicted classes.
type Confusion struct {
	matrix [][]int
	total  int
}

func NewConfusion(classes int) *Confusion {
	c := &Confusion{matrix: make([][]int, classes)}
	for i := range c.matrix {
		c.matrix[i] = make([]int, classes)
	}
	return c
}

func (c *Confusion) Name() string { return "accuracy" }

// Observe expects both values to be valid class indices.
func (c *Confusion) Observe(pred, truth float64) {
	c.matrix[int(truth)][int(pred)]++
	c.total++
}

// Value is the trace of the matrix over the number of samples.
func (c *Confusion) Value() float64 {
	if c.total == 0 {
		return 0
	}
	trace := 0
	for i := range c.matrix {
		trace += c.matrix[i][i]
	}
	return float64(trace) / float64(c.total)
}

func (c *Confusion) Reset() {
	for i := range c.matrix {
		for j := range c.matrix[i] {
			c.matrix[i][j] = 0
		}
	}
	c.total = 0
}

// Matrix returns a copy of the counts.
func (c *Confusion) Matrix() [][]int {
	out := make([][]int, len(c.matrix))
	for i, row := range c.matrix {
		out[i] = append([]int(nil), row...)
	}
	return out
}
