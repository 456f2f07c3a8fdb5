package tree

import (
	"math"
	"sort"
)

// impurityEpsilon below which a node is considered pure.
const impurityEpsilon = 1e-12

// split describes a candidate partition of a node on one feature.
type split struct {
	feature   int
	threshold float64
	score     float64 // criterion proxy, higher is better
}

// impurity returns the per-sample impurity of the samples in indices:
// variance for the squared-error criteria, mean absolute deviation from the
// median for AbsoluteError.
func (c Criterion) impurity(y []float64, indices []int) float64 {
	n := float64(len(indices))
	if c == AbsoluteError {
		vals := gather(y, indices)
		sort.Float64s(vals)
		return absDeviation(vals) / n
	}
	mean := c.mean(y, indices)
	var sse float64
	for _, i := range indices {
		d := y[i] - mean
		sse += d * d
	}
	return sse / n
}

// leafValue returns the constant prediction of a leaf holding indices.
func (c Criterion) leafValue(y []float64, indices []int) float64 {
	if c == AbsoluteError {
		vals := gather(y, indices)
		sort.Float64s(vals)
		return median(vals)
	}
	return c.mean(y, indices)
}

func (c Criterion) mean(y []float64, indices []int) float64 {
	var s float64
	for _, i := range indices {
		s += y[i]
	}
	return s / float64(len(indices))
}

// scan evaluates every threshold between distinct consecutive values of col
// along order (indices sorted by col) and returns the best one.
func (c Criterion) scan(col, y []float64, order []int, minLeaf int) (split, bool) {
	if c == AbsoluteError {
		return scanAbsolute(col, y, order, minLeaf)
	}
	return scanSquared(col, y, order, minLeaf, c == FriedmanMSE)
}

func scanSquared(col, y []float64, order []int, minLeaf int, friedman bool) (split, bool) {
	n := len(order)
	var total float64
	for _, i := range order {
		total += y[i]
	}

	best := split{score: math.Inf(-1)}
	found := false
	var sumL float64
	for k := 0; k < n-1; k++ {
		sumL += y[order[k]]
		lo, hi := col[order[k]], col[order[k+1]]
		if lo == hi {
			continue
		}
		nl, nr := float64(k+1), float64(n-k-1)
		if k+1 < minLeaf || n-k-1 < minLeaf {
			continue
		}
		sumR := total - sumL

		var score float64
		if friedman {
			diff := nr*sumL - nl*sumR
			score = diff * diff / (nl * nr)
		} else {
			// maximising this is equivalent to minimising the children's SSE
			score = sumL*sumL/nl + sumR*sumR/nr
		}
		if score > best.score {
			best = split{threshold: midpoint(lo, hi), score: score}
			found = true
		}
	}
	return best, found
}

func scanAbsolute(col, y []float64, order []int, minLeaf int) (split, bool) {
	n := len(order)
	right := sortedValues(gather(y, order))
	sort.Float64s(right)
	left := make(sortedValues, 0, n)

	best := split{score: math.Inf(-1)}
	found := false
	for k := 0; k < n-1; k++ {
		v := y[order[k]]
		left = left.insert(v)
		right = right.remove(v)
		lo, hi := col[order[k]], col[order[k+1]]
		if lo == hi || k+1 < minLeaf || n-k-1 < minLeaf {
			continue
		}
		score := -(absDeviation(left) + absDeviation(right))
		if score > best.score {
			best = split{threshold: midpoint(lo, hi), score: score}
			found = true
		}
	}
	return best, found
}

// midpoint returns the threshold between two adjacent distinct values such
// that lo goes left and hi goes right.
func midpoint(lo, hi float64) float64 {
	t := lo/2 + hi/2
	if t >= hi || math.IsInf(t, 0) {
		t = lo
	}
	return t
}

func gather(y []float64, indices []int) []float64 {
	out := make([]float64, len(indices))
	for k, i := range indices {
		out[k] = y[i]
	}
	return out
}

// median of sorted values.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// absDeviation returns sum |v - median| of sorted values.
func absDeviation(sorted []float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	m := median(sorted)
	var s float64
	for _, v := range sorted {
		s += math.Abs(v - m)
	}
	return s
}

// sortedValues is an ascending multiset of floats.
type sortedValues []float64

func (s sortedValues) insert(v float64) sortedValues {
	i := sort.SearchFloat64s(s, v)
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func (s sortedValues) remove(v float64) sortedValues {
	i := sort.SearchFloat64s(s, v)
	if i < len(s) && s[i] == v {
		return append(s[:i], s[i+1:]...)
	}
	return s
}
