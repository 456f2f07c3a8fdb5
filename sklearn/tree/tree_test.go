package tree

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// stepData: y is 1 for x0 <= 3 and 5 above; x1 is noise.
func stepData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(8, 2, []float64{
		0, 7,
		1, 3,
		2, 5,
		3, 1,
		4, 6,
		5, 2,
		6, 8,
		7, 4,
	})
	y := mat.NewDense(8, 1, []float64{1, 1, 1, 1, 5, 5, 5, 5})
	return X, y
}

func TestDecisionTreeRegressor_FitPredict(t *testing.T) {
	for _, c := range []Criterion{SquaredError, AbsoluteError, FriedmanMSE} {
		t.Run(string(c), func(t *testing.T) {
			X, y := stepData()
			dt := NewDecisionTreeRegressor(WithCriterion(c))
			require.NoError(t, dt.Fit(X, y))

			pred, err := dt.Predict(X)
			require.NoError(t, err)
			for i := 0; i < 8; i++ {
				assert.Equal(t, y.At(i, 0), pred.At(i, 0), "sample %d", i)
			}

			// a single split on x0 separates the data perfectly
			assert.Equal(t, 3, dt.NodeCount())
			assert.Equal(t, 1, dt.Depth())

			imp, err := dt.FeatureImportances()
			require.NoError(t, err)
			assert.InDelta(t, 1.0, imp[0], 1e-12)
			assert.InDelta(t, 0.0, imp[1], 1e-12)

			test, err := dt.Predict(mat.NewDense(2, 2, []float64{3.4, 0, 3.6, 0}))
			require.NoError(t, err)
			assert.Equal(t, 1.0, test.At(0, 0))
			assert.Equal(t, 5.0, test.At(1, 0))
		})
	}
}

func TestDecisionTreeRegressor_LeafValues(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 1, 1})
	y := mat.NewDense(3, 1, []float64{1, 2, 10})

	mean := NewDecisionTreeRegressor()
	require.NoError(t, mean.Fit(X, y))
	p, err := mean.Predict(mat.NewDense(1, 1, []float64{1}))
	require.NoError(t, err)
	assert.InDelta(t, 13.0/3.0, p.At(0, 0), 1e-12)

	med := NewDecisionTreeRegressor(WithCriterion(AbsoluteError))
	require.NoError(t, med.Fit(X, y))
	p, err = med.Predict(mat.NewDense(1, 1, []float64{1}))
	require.NoError(t, err)
	assert.Equal(t, 2.0, p.At(0, 0))

	// constant feature: no split possible, importances stay zero
	imp, err := mean.FeatureImportances()
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, imp)
	assert.Equal(t, 1, mean.NodeCount())
}

func TestDecisionTreeRegressor_MinSamplesLeaf(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{1, 2, 3, 4, 5, 6})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 0, 0, 100})

	dt := NewDecisionTreeRegressor(WithMinSamplesLeaf(3))
	require.NoError(t, dt.Fit(X, y))

	// the outlier cannot be isolated; the only admissible split is 3|3
	pred, err := dt.Predict(mat.NewDense(1, 1, []float64{6}))
	require.NoError(t, err)
	assert.InDelta(t, 100.0/3.0, pred.At(0, 0), 1e-12)
	assert.Equal(t, 3, dt.NodeCount())
}

func TestDecisionTreeRegressor_MinSamplesSplit(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	dt := NewDecisionTreeRegressor(WithMinSamplesSplit(5))
	require.NoError(t, dt.Fit(X, y))
	assert.Equal(t, 1, dt.NodeCount())

	full := NewDecisionTreeRegressor()
	require.NoError(t, full.Fit(X, y))
	assert.Equal(t, 7, full.NodeCount())
}

func TestDecisionTreeRegressor_MaxFeaturesDeterministic(t *testing.T) {
	X := mat.NewDense(30, 4, nil)
	y := mat.NewDense(30, 1, nil)
	for i := 0; i < 30; i++ {
		for j := 0; j < 4; j++ {
			X.Set(i, j, math.Sin(float64(i*(j+1))))
		}
		y.Set(i, 0, 3*X.At(i, 0)-X.At(i, 2))
	}

	fit := func() []float64 {
		dt := NewDecisionTreeRegressor(WithMaxFeatures(MaxFeaturesSqrt), WithRandomState(7))
		require.NoError(t, dt.Fit(X, y))
		p, err := dt.Predict(X)
		require.NoError(t, err)
		return mat.Col(nil, 0, p)
	}
	assert.Equal(t, fit(), fit())
}

func TestMaxFeatures_Resolve(t *testing.T) {
	tests := []struct {
		m    MaxFeatures
		n    int
		want int
	}{
		{MaxFeaturesAll, 3, 3},
		{MaxFeaturesSqrt, 3, 1},
		{MaxFeaturesSqrt, 16, 4},
		{MaxFeaturesLog2, 1, 1},
		{MaxFeaturesLog2, 3, 1},
		{MaxFeaturesLog2, 8, 3},
	}
	for _, tt := range tests {
		t.Run(tt.m.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.m.Resolve(tt.n))
		})
	}
}

func TestDecisionTreeRegressor_Errors(t *testing.T) {
	dt := NewDecisionTreeRegressor()
	_, err := dt.Predict(mat.NewDense(1, 1, []float64{0}))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	_, err = dt.FeatureImportances()
	assert.Error(t, err)

	bad := NewDecisionTreeRegressor(WithCriterion("poisson"))
	X, y := stepData()
	var ve *errors.ValueError
	assert.True(t, errors.As(bad.Fit(X, y), &ve))

	require.NoError(t, dt.Fit(X, y))
	_, err = dt.Predict(mat.NewDense(1, 3, nil))
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))
}

func TestMidpoint(t *testing.T) {
	assert.Equal(t, 1.5, midpoint(1, 2))
	lo := 1.0
	hi := math.Nextafter(lo, 2)
	assert.Equal(t, lo, midpoint(lo, hi))
}
