// Package dataset assembles labelled feature matrices from simulated
// trajectories.
//
// Every (process, exponent) bucket of the grid receives the same number of
// trajectories, and each bucket is split into training and test samples on
// its own, so both partitions keep the per-bucket balance. Labels are numeric
// throughout; see [Label] for the encoding per task mode.
package dataset

import "github.com/san-kum/anombench/internal/diffusion"

type Dataset struct {
	Mode diffusion.Mode

	TrainX [][]float64
	TrainY []float64
	TestX  [][]float64
	TestY  []float64

	// TrainBucket and TestBucket give the bucket index of every sample.
	TrainBucket []int
	TestBucket  []int

	Buckets []Bucket
	// Classes names the label indices of categorical modes.
	Classes    []string
	FeatureLen int
}

func (d *Dataset) TrainSize() int { return len(d.TrainY) }
func (d *Dataset) TestSize() int  { return len(d.TestY) }

// BucketCounts returns the number of training and test samples per bucket.
func (d *Dataset) BucketCounts() (train, test []int) {
	train = make([]int, len(d.Buckets))
	test = make([]int, len(d.Buckets))
	for _, b := range d.TrainBucket {
		train[b]++
	}
	for _, b := range d.TestBucket {
		test[b]++
	}
	return train, test
}
