// Package linear implements ordinary least squares regression.
package linear

import (
	"math"

	"github.com/YuminosukeSato/iziml/core/model"
	"github.com/YuminosukeSato/iziml/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const modelName = "LinearRegression"

// LinearRegression は最小二乗法による線形回帰モデル
//
// 切片を学習する場合は X と y を列ごとに中心化してから解き、
// 切片は yMean - xMean·coef で復元する。
// 解は特異値分解による最小ノルム解なので、列が共線でも失敗しない。
type LinearRegression struct {
	state *model.StateManager

	// Hyperparameters
	fitIntercept bool

	// Learned parameters
	coef_      []float64
	intercept_ float64
	rank_      int
}

// Option は LinearRegression の設定オプション
type Option func(*LinearRegression)

// WithFitIntercept は切片の学習有無を設定する
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression(options ...Option) *LinearRegression {
	lr := &LinearRegression{
		state:        model.NewStateManager(),
		fitIntercept: true,
	}
	for _, opt := range options {
		opt(lr)
	}
	return lr
}

// Name implements model.Estimator.
func (lr *LinearRegression) Name() string {
	return modelName
}

// Fit はモデルを訓練データで学習させる
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	// 入力の検証
	if rows == 0 || cols == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if rows != yRows {
		return errors.NewDimensionError("LinearRegression.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("LinearRegression.Fit", 1, yCols, 1)
	}

	// 列平均（切片なしの場合は0）
	xMean := make([]float64, cols)
	yCol := mat.Col(nil, 0, y)
	var yMean float64
	if lr.fitIntercept {
		for j := 0; j < cols; j++ {
			xMean[j] = stat.Mean(mat.Col(nil, j, X), nil)
		}
		yMean = stat.Mean(yCol, nil)
	}

	Xc := mat.NewDense(rows, cols, nil)
	Xc.Apply(func(_, j int, v float64) float64 { return v - xMean[j] }, X)
	yc := mat.NewDense(rows, 1, nil)
	for i, v := range yCol {
		yc.Set(i, 0, v-yMean)
	}

	var svd mat.SVD
	if ok := svd.Factorize(Xc, mat.SVDThin); !ok {
		return errors.NewModelError("LinearRegression.Fit", "svd did not converge", errors.ErrSingularMatrix)
	}

	// numpy.linalg.lstsq と同じ閾値で数値ランクを決める
	rcond := math.Nextafter(1, 2) - 1
	rcond *= float64(max(rows, cols))
	rank := svd.Rank(rcond)

	coef := make([]float64, cols)
	if rank > 0 {
		var sol mat.Dense
		svd.SolveTo(&sol, yc, rank)
		for j := 0; j < cols; j++ {
			coef[j] = sol.At(j, 0)
		}
	}

	intercept := 0.0
	if lr.fitIntercept {
		intercept = yMean - floats.Dot(xMean, coef)
	}

	if err := errors.CheckNumericalStability("LinearRegression.Fit", append(append([]float64{}, coef...), intercept)); err != nil {
		return err
	}

	lr.coef_ = coef
	lr.intercept_ = intercept
	lr.rank_ = rank
	lr.state.SetFitted(cols, rows)
	return nil
}

// Predict は入力データに対する予測を行う
// 予測: y = X * coef + intercept
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.state.RequirePredictable(modelName, X); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	predictions := mat.NewDense(r, 1, nil)
	predictions.Mul(X, mat.NewVecDense(c, lr.Coef()))
	for i := 0; i < r; i++ {
		predictions.Set(i, 0, predictions.At(i, 0)+lr.intercept_)
	}
	return predictions, nil
}

// Coef は学習された係数のコピーを返す
func (lr *LinearRegression) Coef() []float64 {
	if lr.coef_ == nil {
		return nil
	}
	out := make([]float64, len(lr.coef_))
	copy(out, lr.coef_)
	return out
}

// Intercept は学習された切片を返す
func (lr *LinearRegression) Intercept() float64 {
	return lr.intercept_
}

// Rank は中心化した計画行列の数値ランクを返す
func (lr *LinearRegression) Rank() int {
	return lr.rank_
}

// IsFitted はモデルが学習済みかどうかを返す
func (lr *LinearRegression) IsFitted() bool {
	return lr.state.IsFitted()
}
