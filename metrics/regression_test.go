package metrics

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func vec(v ...float64) *mat.VecDense {
	return mat.NewVecDense(len(v), v)
}

func TestRegressionMetrics(t *testing.T) {
	tests := []struct {
		name  string
		yTrue *mat.VecDense
		yPred *mat.VecDense
		mse   float64
		mae   float64
		r2    float64
	}{
		{
			name:  "exact",
			yTrue: vec(-1.2, 0.4, 3.3),
			yPred: vec(-1.2, 0.4, 3.3),
			mse:   0,
			mae:   0,
			r2:    1,
		},
		{
			name:  "half off",
			yTrue: vec(1, 2, 3, 4),
			yPred: vec(1.5, 2.5, 2.5, 3.5),
			mse:   0.25,
			mae:   0.5,
			r2:    0.8, // 1 - 1/5
		},
		{
			name:  "mean predictor",
			yTrue: vec(2, 4, 6),
			yPred: vec(4, 4, 4),
			mse:   8.0 / 3.0,
			mae:   4.0 / 3.0,
			r2:    0,
		},
		{
			name:  "worse than mean",
			yTrue: vec(1, 2, 3),
			yPred: vec(3, 2, 1),
			mse:   8.0 / 3.0,
			mae:   4.0 / 3.0,
			r2:    -3, // 1 - 8/2
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mse, err := MSE(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.mse, mse, 1e-12)

			rmse, err := RMSE(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, math.Sqrt(tt.mse), rmse, 1e-12)

			mae, err := MAE(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.mae, mae, 1e-12)

			r2, err := R2Score(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.r2, r2, 1e-12)
		})
	}
}

func TestR2Score_ConstantTarget(t *testing.T) {
	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	t.Cleanup(func() { errors.SetWarningHandler(func(error) {}) })

	// R² is 0 for a constant target whatever the predictions are.
	for _, pred := range []*mat.VecDense{vec(5, 5, 5), vec(1, 9, 4)} {
		got, err := R2Score(vec(5, 5, 5), pred)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)
	}
	assert.Len(t, warned, 2)
}

func TestR2Score_ConstantInexactTarget(t *testing.T) {
	errors.SetWarningHandler(func(error) {})
	t.Cleanup(func() { errors.SetWarningHandler(func(error) {}) })

	// 0.1 は2進数で表せないので平均が1ulpずれる
	repeat := func(v float64, n int) *mat.VecDense {
		d := make([]float64, n)
		for i := range d {
			d[i] = v
		}
		return mat.NewVecDense(n, d)
	}
	for _, n := range []int{3, 8, 11} {
		y := repeat(0.1, n)
		for _, pred := range []*mat.VecDense{repeat(0.1, n), repeat(0.2, n)} {
			got, err := R2Score(y, pred)
			require.NoError(t, err)
			assert.Equal(t, 0.0, got, "n=%d", n)
		}
	}
}

func TestMetrics_InvalidInput(t *testing.T) {
	metricFuncs := map[string]func(a, b *mat.VecDense) (float64, error){
		"MSE":     MSE,
		"RMSE":    RMSE,
		"MAE":     MAE,
		"R2Score": R2Score,
	}
	tests := []struct {
		name  string
		yTrue *mat.VecDense
		yPred *mat.VecDense
		check func(t *testing.T, err error)
	}{
		{
			name:  "length mismatch",
			yTrue: vec(1, 2, 3),
			yPred: vec(1, 2),
			check: func(t *testing.T, err error) {
				var de *errors.DimensionError
				assert.True(t, errors.As(err, &de))
			},
		},
		{
			name:  "empty",
			yTrue: &mat.VecDense{},
			yPred: &mat.VecDense{},
			check: func(t *testing.T, err error) {
				var ve *errors.ValueError
				assert.True(t, errors.As(err, &ve))
			},
		},
		{
			name:  "nil",
			yTrue: nil,
			yPred: vec(1),
			check: func(t *testing.T, err error) {
				var ve *errors.ValueError
				assert.True(t, errors.As(err, &ve))
			},
		},
		{
			name:  "empty prediction",
			yTrue: vec(1, 2),
			yPred: &mat.VecDense{},
			check: func(t *testing.T, err error) {
				var de *errors.DimensionError
				require.True(t, errors.As(err, &de))
				assert.Equal(t, 0, de.Got)
			},
		},
	}
	for _, tt := range tests {
		for name, fn := range metricFuncs {
			t.Run(tt.name+"/"+name, func(t *testing.T) {
				_, err := fn(tt.yTrue, tt.yPred)
				require.Error(t, err)
				tt.check(t, err)
			})
		}
	}
}

func TestMetrics_NonFinite(t *testing.T) {
	y := vec(1, 2, 3)
	pred := vec(1, math.Inf(1), 3)

	_, err := MSE(y, pred)
	assert.Error(t, err)
	_, err = MAE(y, pred)
	assert.Error(t, err)
	_, err = R2Score(y, vec(1, math.NaN(), 3))
	assert.Error(t, err)
}

func BenchmarkR2Score(b *testing.B) {
	n := 10000
	yTrue := mat.NewVecDense(n, nil)
	yPred := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yTrue.SetVec(i, float64(i))
		yPred.SetVec(i, float64(i)+0.5*math.Sin(float64(i)))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = R2Score(yTrue, yPred)
	}
}
