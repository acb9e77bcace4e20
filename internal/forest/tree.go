package forest

import (
	"math"
	"math/rand"
	"sort"
)

type task int

const (
	classification task = iota
	regression
)

type node struct {
	leaf      bool
	feature   int
	threshold float64 // x[feature] <= threshold goes left
	left      *node
	right     *node

	value float64   // regression leaf mean
	dist  []float64 // classification leaf class distribution
}

func (n *node) find(x []float64) *node {
	cur := n
	for !cur.leaf {
		if x[cur.feature] <= cur.threshold {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}
	return cur
}

// grower holds the state for growing one tree.
type grower struct {
	X        [][]float64
	y        []float64
	cls      []int
	task     task
	nClasses int

	maxDepth    int
	minSplit    int
	minLeaf     int
	maxFeatures int

	rng *rand.Rand
	buf []pair
}

type pair struct {
	v float64
	i int
}

type split struct {
	ok        bool
	feature   int
	threshold float64
	score     float64
}

func (g *grower) grow(idx []int, depth int) *node {
	if len(idx) < g.minSplit || len(idx) < 2*g.minLeaf ||
		(g.maxDepth > 0 && depth >= g.maxDepth) || g.pure(idx) {
		return g.leaf(idx)
	}

	best := g.bestSplit(idx)
	if !best.ok {
		return g.leaf(idx)
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if g.X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &node{
		feature:   best.feature,
		threshold: best.threshold,
		left:      g.grow(left, depth+1),
		right:     g.grow(right, depth+1),
	}
}

func (g *grower) pure(idx []int) bool {
	for _, i := range idx[1:] {
		if g.task == classification {
			if g.cls[i] != g.cls[idx[0]] {
				return false
			}
		} else if g.y[i] != g.y[idx[0]] {
			return false
		}
	}
	return true
}

func (g *grower) leaf(idx []int) *node {
	n := &node{leaf: true}
	if g.task == classification {
		n.dist = make([]float64, g.nClasses)
		for _, i := range idx {
			n.dist[g.cls[i]]++
		}
		for k := range n.dist {
			n.dist[k] /= float64(len(idx))
		}
		return n
	}

	sum := 0.0
	for _, i := range idx {
		sum += g.y[i]
	}
	n.value = sum / float64(len(idx))
	return n
}

// candidates draws the features examined at one split.
func (g *grower) candidates() []int {
	p := len(g.X[0])
	if g.maxFeatures <= 0 || g.maxFeatures >= p {
		out := make([]int, p)
		for j := range out {
			out[j] = j
		}
		return out
	}
	return g.rng.Perm(p)[:g.maxFeatures]
}

func (g *grower) bestSplit(idx []int) split {
	parent := g.impurity(idx)
	best := split{score: parent}

	for _, f := range g.candidates() {
		s := g.scan(idx, f)
		if s.ok && s.score < best.score-1e-12 {
			best = s
		}
	}
	return best
}

// impurity is the weighted impurity of a node: n * gini for classification,
// sum of squared errors for regression.
func (g *grower) impurity(idx []int) float64 {
	if g.task == classification {
		counts := make([]float64, g.nClasses)
		for _, i := range idx {
			counts[g.cls[i]]++
		}
		return float64(len(idx)) * gini(counts, float64(len(idx)))
	}
	var sum, sq float64
	for _, i := range idx {
		sum += g.y[i]
		sq += g.y[i] * g.y[i]
	}
	return sse(sum, sq, float64(len(idx)))
}

// scan finds the best threshold on feature f.
func (g *grower) scan(idx []int, f int) split {
	n := len(idx)
	vals := g.buf[:n]
	for k, i := range idx {
		vals[k] = pair{v: g.X[i][f], i: i}
	}
	sort.Slice(vals, func(a, b int) bool { return vals[a].v < vals[b].v })

	best := split{score: math.Inf(1)}
	if vals[0].v == vals[n-1].v {
		return best
	}

	var (
		leftCounts, totalCounts []float64
		leftSum, leftSq         float64
		totalSum, totalSq       float64
	)
	if g.task == classification {
		leftCounts = make([]float64, g.nClasses)
		totalCounts = make([]float64, g.nClasses)
		for _, p := range vals {
			totalCounts[g.cls[p.i]]++
		}
	} else {
		for _, p := range vals {
			totalSum += g.y[p.i]
			totalSq += g.y[p.i] * g.y[p.i]
		}
	}

	rightCounts := make([]float64, len(totalCounts))
	for k := 0; k < n-1; k++ {
		i := vals[k].i
		if g.task == classification {
			leftCounts[g.cls[i]]++
		} else {
			leftSum += g.y[i]
			leftSq += g.y[i] * g.y[i]
		}

		if vals[k].v == vals[k+1].v {
			continue
		}
		nl, nr := k+1, n-k-1
		if nl < g.minLeaf || nr < g.minLeaf {
			continue
		}

		var score float64
		if g.task == classification {
			for c := range totalCounts {
				rightCounts[c] = totalCounts[c] - leftCounts[c]
			}
			score = float64(nl)*gini(leftCounts, float64(nl)) + float64(nr)*gini(rightCounts, float64(nr))
		} else {
			score = sse(leftSum, leftSq, float64(nl)) + sse(totalSum-leftSum, totalSq-leftSq, float64(nr))
		}

		if score < best.score {
			thr := vals[k].v + (vals[k+1].v-vals[k].v)/2
			if thr >= vals[k+1].v {
				thr = vals[k].v
			}
			best = split{ok: true, feature: f, threshold: thr, score: score}
		}
	}
	return best
}

func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	s := 1.0
	for _, c := range counts {
		p := c / n
		s -= p * p
	}
	return s
}

func sse(sum, sq, n float64) float64 {
	if n == 0 {
		return 0
	}
	v := sq - sum*sum/n
	if v < 0 {
		return 0
	}
	return v
}
