// Package ensemble provides tree ensembles.
package ensemble

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/YuminosukeSato/iziml/core/model"
	"github.com/YuminosukeSato/iziml/core/parallel"
	"github.com/YuminosukeSato/iziml/metrics"
	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/YuminosukeSato/iziml/pkg/log"
	"github.com/YuminosukeSato/iziml/sklearn/tree"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const modelName = "RandomForestRegressor"

// predictParallelThreshold is the row count above which Predict fans out.
const predictParallelThreshold = 1024

// RandomForestRegressor averages the predictions of decision trees each
// grown on a bootstrap sample of the rows.
type RandomForestRegressor struct {
	state *model.StateManager

	nEstimators     int
	criterion       tree.Criterion
	maxFeatures     tree.MaxFeatures
	minSamplesSplit int
	minSamplesLeaf  int
	maxDepth        int
	bootstrap       bool
	oobScore        bool
	randomState     uint64

	estimators_    []*tree.DecisionTreeRegressor
	oobScore_      float64
	hasOOB_        bool
	oobPrediction_ []float64
}

// NewRandomForestRegressor creates a forest with scikit-learn's defaults:
// 100 trees, squared error, all features, bootstrap on.
func NewRandomForestRegressor(options ...Option) *RandomForestRegressor {
	f := &RandomForestRegressor{
		state:           model.NewStateManager(),
		nEstimators:     100,
		criterion:       tree.SquaredError,
		maxFeatures:     tree.MaxFeaturesAll,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		bootstrap:       true,
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// Name implements model.Estimator.
func (f *RandomForestRegressor) Name() string {
	return modelName
}

func (f *RandomForestRegressor) validateParams() error {
	switch {
	case f.nEstimators < 1:
		return errors.NewValueError("RandomForestRegressor.Fit", "n_estimators must be >= 1")
	case f.oobScore && !f.bootstrap:
		return errors.NewValueError("RandomForestRegressor.Fit", "out-of-bag estimation is only available with bootstrap")
	}
	return nil
}

// Fit grows every tree in parallel. Tree i draws its rows and features from
// its own seed, derived from the forest's random state, so the result does
// not depend on scheduling.
func (f *RandomForestRegressor) Fit(X, y mat.Matrix) error {
	if err := f.validateParams(); err != nil {
		return err
	}
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("RandomForestRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if rows != yRows {
		return errors.NewDimensionError("RandomForestRegressor.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("RandomForestRegressor.Fit", 1, yCols, 1)
	}

	logger := log.GetLoggerWithName("ensemble.forest")
	start := time.Now()
	logger.Debug("Training RandomForestRegressor",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.TreeCountKey, f.nEstimators,
		log.RandomSeedKey, f.randomState,
	)

	columns := tree.NewColumns(X)
	target := mat.Col(nil, 0, y)

	seeds := make([]uint64, f.nEstimators)
	rng := rand.New(rand.NewPCG(f.randomState, f.randomState))
	for i := range seeds {
		seeds[i] = rng.Uint64()
	}

	trees := make([]*tree.DecisionTreeRegressor, f.nEstimators)
	samples := make([][]int, f.nEstimators)
	err := parallel.ForEach(f.nEstimators, func(i int) error {
		samples[i] = f.sampleRows(seeds[i], rows)
		trees[i] = tree.NewDecisionTreeRegressor(
			tree.WithCriterion(f.criterion),
			tree.WithMaxFeatures(f.maxFeatures),
			tree.WithMinSamplesSplit(f.minSamplesSplit),
			tree.WithMinSamplesLeaf(f.minSamplesLeaf),
			tree.WithMaxDepth(f.maxDepth),
			tree.WithRandomState(seeds[i]),
		)
		op := fmt.Sprintf("RandomForestRegressor.Fit[tree %d]", i)
		return errors.SafeExecute(op, func() error {
			return trees[i].FitColumns(columns, target, samples[i])
		})
	})
	if err != nil {
		return err
	}

	f.estimators_ = trees
	f.hasOOB_ = false
	f.oobPrediction_ = nil
	if f.oobScore {
		if err := f.computeOOB(columns, target, samples); err != nil {
			return err
		}
	}
	f.state.SetFitted(cols, rows)

	logger.Debug("RandomForestRegressor fitted",
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// sampleRows returns the row indices tree training uses: a bootstrap sample
// of size n, or every row once.
func (f *RandomForestRegressor) sampleRows(seed uint64, n int) []int {
	idx := make([]int, n)
	if !f.bootstrap {
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	r := rand.New(rand.NewPCG(seed, ^seed))
	for i := range idx {
		idx[i] = r.IntN(n)
	}
	return idx
}

// computeOOB scores every row with the trees that did not see it. Rows that
// were drawn by every tree are left out of the score.
func (f *RandomForestRegressor) computeOOB(cols *tree.Columns, y []float64, samples [][]int) error {
	n := len(y)
	sum := make([]float64, n)
	count := make([]int, n)
	inBag := make([]bool, n)
	for i, t := range f.estimators_ {
		clear(inBag)
		for _, r := range samples[i] {
			inBag[r] = true
		}
		for r := 0; r < n; r++ {
			if !inBag[r] {
				sum[r] += t.PredictRow(cols, r)
				count[r]++
			}
		}
	}

	var yt, yp []float64
	pred := make([]float64, n)
	for r := 0; r < n; r++ {
		if count[r] == 0 {
			continue
		}
		pred[r] = sum[r] / float64(count[r])
		yt = append(yt, y[r])
		yp = append(yp, pred[r])
	}
	if missing := n - len(yt); missing > 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("oob_score",
			fmt.Sprintf("%d of %d samples never left out of a bootstrap sample", missing, n), 0))
	}
	if len(yt) == 0 {
		return nil
	}

	score, err := metrics.R2Score(mat.NewVecDense(len(yt), yt), mat.NewVecDense(len(yp), yp))
	if err != nil {
		return errors.Wrap(err, "out-of-bag score")
	}
	f.oobScore_ = score
	f.hasOOB_ = true
	f.oobPrediction_ = pred
	return nil
}

// Predict returns the mean prediction of all trees as an n×1 matrix.
func (f *RandomForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := f.state.RequirePredictable(modelName, X); err != nil {
		return nil, err
	}
	r, _ := X.Dims()
	cols := tree.NewColumns(X)
	out := make([]float64, r)
	inv := 1 / float64(len(f.estimators_))
	parallel.ParallelizeWithThreshold(r, predictParallelThreshold, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			var s float64
			for _, t := range f.estimators_ {
				s += t.PredictRow(cols, i)
			}
			out[i] = s * inv
		}
	})
	return mat.NewDense(r, 1, out), nil
}

// FeatureImportances averages the normalised importances of every tree that
// made at least one split, then renormalises. A forest without any split
// returns all zeros.
func (f *RandomForestRegressor) FeatureImportances() ([]float64, error) {
	if !f.state.IsFitted() {
		return nil, errors.NewNotFittedError(modelName, "FeatureImportances")
	}
	nFeatures, _ := f.state.GetDimensions()
	out := make([]float64, nFeatures)
	for _, t := range f.estimators_ {
		if t.NodeCount() <= 1 {
			continue
		}
		imp, err := t.FeatureImportances()
		if err != nil {
			return nil, err
		}
		floats.Add(out, imp)
	}
	if total := floats.Sum(out); total > 0 {
		floats.Scale(1/total, out)
	}
	return out, nil
}

// OOBScore returns the out-of-bag R². ok is false unless the forest was
// fitted with WithOOBScore(true) and at least one row was out of bag.
func (f *RandomForestRegressor) OOBScore() (score float64, ok bool) {
	return f.oobScore_, f.hasOOB_
}

// OOBPrediction returns the out-of-bag prediction per training row, 0 for
// rows that no tree left out.
func (f *RandomForestRegressor) OOBPrediction() []float64 {
	return append([]float64(nil), f.oobPrediction_...)
}

// Estimators returns the fitted trees.
func (f *RandomForestRegressor) Estimators() []*tree.DecisionTreeRegressor {
	return f.estimators_
}

// IsFitted reports whether Fit has completed.
func (f *RandomForestRegressor) IsFitted() bool {
	return f.state.IsFitted()
}
