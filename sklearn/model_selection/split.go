// Package model_selection splits datasets into training and test partitions.
package model_selection

import (
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/YuminosukeSato/iziml/dataset"
	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/YuminosukeSato/iziml/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// SplitResult holds the four partitions and, for each partition, the row
// indices of the source dataset in partition order.
type SplitResult struct {
	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain *mat.VecDense
	YTest  *mat.VecDense

	TrainIndices []int
	TestIndices  []int

	FeatureNames []string
	TargetName   string
}

// NumTrain returns the number of training rows.
func (s *SplitResult) NumTrain() int {
	return len(s.TrainIndices)
}

// NumTest returns the number of test rows.
func (s *SplitResult) NumTest() int {
	return len(s.TestIndices)
}

// TestSize returns the number of test rows for n rows: ceil(n*(1-trainFraction)).
func TestSize(n int, trainFraction float64) int {
	// 1e-9 absorbs rounding noise in n*(1-trainFraction)
	return int(math.Ceil(float64(n)*(1-trainFraction) - 1e-9))
}

// TrainTestSplit shuffles the rows of ds with a PCG source seeded by seed
// and puts the first n-TestSize rows into the training partition. The same
// (dataset, fraction, seed) always gives the same split.
func TrainTestSplit(ds *dataset.Dataset, trainFraction float64, seed uint64) (*SplitResult, error) {
	if !(trainFraction > 0 && trainFraction < 1) {
		return nil, errors.NewInvalidConfigError("trainFraction", "must be in (0, 1)", trainFraction)
	}
	n := ds.NumRows()
	nTest := TestSize(n, trainFraction)
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, errors.NewInvalidConfigError("trainFraction",
			"leaves an empty partition for "+strconv.Itoa(n)+" rows", trainFraction)
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(n, func(i, j int) {
		perm[i], perm[j] = perm[j], perm[i]
	})

	X, y := ds.XY()
	res := &SplitResult{
		TrainIndices: perm[:nTrain:nTrain],
		TestIndices:  perm[nTrain:],
		FeatureNames: ds.FeatureNames(),
		TargetName:   ds.TargetName(),
	}
	res.XTrain, res.YTrain = subset(X, y, res.TrainIndices)
	res.XTest, res.YTest = subset(X, y, res.TestIndices)

	log.GetLoggerWithName("model_selection").Debug("Dataset split",
		log.OperationKey, log.OperationSplit,
		log.SamplesKey, n,
		"train", nTrain,
		"test", nTest,
		log.RandomSeedKey, seed,
	)
	return res, nil
}

func subset(X *mat.Dense, y *mat.VecDense, indices []int) (*mat.Dense, *mat.VecDense) {
	_, p := X.Dims()
	xs := mat.NewDense(len(indices), p, nil)
	ys := mat.NewVecDense(len(indices), nil)
	for k, i := range indices {
		xs.SetRow(k, X.RawRowView(i))
		ys.SetVec(k, y.AtVec(i))
	}
	return xs, ys
}
