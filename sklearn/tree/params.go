package tree

import (
	"math"
)

// Criterion is the function used to measure the quality of a split.
type Criterion string

const (
	// SquaredError minimises the L2 loss; leaves predict the mean.
	SquaredError Criterion = "squared_error"
	// AbsoluteError minimises the L1 loss; leaves predict the median.
	AbsoluteError Criterion = "absolute_error"
	// FriedmanMSE uses mean squared error with Friedman's improvement score.
	FriedmanMSE Criterion = "friedman_mse"
)

// Valid reports whether c is a known criterion.
func (c Criterion) Valid() bool {
	switch c {
	case SquaredError, AbsoluteError, FriedmanMSE:
		return true
	}
	return false
}

// MaxFeatures selects how many features are considered at each split.
// MaxFeaturesAll is an explicit choice, not a missing value.
type MaxFeatures int

const (
	// MaxFeaturesAll considers every feature.
	MaxFeaturesAll MaxFeatures = iota
	// MaxFeaturesSqrt considers max(1, floor(sqrt(n))) features.
	MaxFeaturesSqrt
	// MaxFeaturesLog2 considers max(1, floor(log2(n))) features.
	MaxFeaturesLog2
)

func (m MaxFeatures) String() string {
	switch m {
	case MaxFeaturesAll:
		return "all"
	case MaxFeaturesSqrt:
		return "sqrt"
	case MaxFeaturesLog2:
		return "log2"
	}
	return "unknown"
}

// Resolve returns the number of features drawn per split for nFeatures inputs.
func (m MaxFeatures) Resolve(nFeatures int) int {
	var k int
	switch m {
	case MaxFeaturesSqrt:
		k = int(math.Sqrt(float64(nFeatures)))
	case MaxFeaturesLog2:
		k = int(math.Log2(float64(nFeatures)))
	default:
		k = nFeatures
	}
	return min(max(k, 1), nFeatures)
}

// Option configures a DecisionTreeRegressor.
type Option func(*DecisionTreeRegressor)

// WithCriterion sets the split quality criterion.
func WithCriterion(c Criterion) Option {
	return func(t *DecisionTreeRegressor) {
		t.criterion = c
	}
}

// WithMaxFeatures sets the per-split feature sampling policy.
func WithMaxFeatures(m MaxFeatures) Option {
	return func(t *DecisionTreeRegressor) {
		t.maxFeatures = m
	}
}

// WithMinSamplesSplit sets the minimum number of samples required to split a node.
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeRegressor) {
		t.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum number of samples required at a leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeRegressor) {
		t.minSamplesLeaf = n
	}
}

// WithMaxDepth limits the depth of the tree. 0 means unlimited.
func WithMaxDepth(d int) Option {
	return func(t *DecisionTreeRegressor) {
		t.maxDepth = d
	}
}

// WithRandomState seeds feature sampling.
func WithRandomState(seed uint64) Option {
	return func(t *DecisionTreeRegressor) {
		t.randomState = seed
	}
}
