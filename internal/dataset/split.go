package dataset

import (
	"math"
	"math/rand"
)

// TrainCount is the number of training samples taken from a bucket of n.
func TrainCount(n int, ratio float64) int {
	k := int(math.Round(ratio * float64(n)))
	if k < 0 {
		return 0
	}
	if k > n {
		return n
	}
	return k
}

// stratify shuffles the sample indices of one bucket and cuts them into
// training and test indices.
func stratify(n int, ratio float64, rng *rand.Rand) (train, test []int) {
	perm := rng.Perm(n)
	k := TrainCount(n, ratio)
	return perm[:k], perm[k:]
}
