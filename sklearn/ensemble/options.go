package ensemble

import "github.com/YuminosukeSato/iziml/sklearn/tree"

// Option configures a RandomForestRegressor.
type Option func(*RandomForestRegressor)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option {
	return func(f *RandomForestRegressor) { f.nEstimators = n }
}

// WithCriterion sets the split criterion of every tree.
func WithCriterion(c tree.Criterion) Option {
	return func(f *RandomForestRegressor) { f.criterion = c }
}

// WithMaxFeatures sets the per-split feature sampling policy.
func WithMaxFeatures(m tree.MaxFeatures) Option {
	return func(f *RandomForestRegressor) { f.maxFeatures = m }
}

// WithMinSamplesSplit sets the minimum number of samples required to split a node.
func WithMinSamplesSplit(n int) Option {
	return func(f *RandomForestRegressor) { f.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum number of samples required at a leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(f *RandomForestRegressor) { f.minSamplesLeaf = n }
}

// WithMaxDepth limits tree depth. 0 means unlimited.
func WithMaxDepth(d int) Option {
	return func(f *RandomForestRegressor) { f.maxDepth = d }
}

// WithBootstrap toggles sampling rows with replacement for each tree.
func WithBootstrap(b bool) Option {
	return func(f *RandomForestRegressor) { f.bootstrap = b }
}

// WithOOBScore enables the out-of-bag R² estimate. Requires bootstrap.
func WithOOBScore(b bool) Option {
	return func(f *RandomForestRegressor) { f.oobScore = b }
}

// WithRandomState seeds bootstrap sampling and feature selection.
func WithRandomState(seed uint64) Option {
	return func(f *RandomForestRegressor) { f.randomState = seed }
}
