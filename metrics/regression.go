// Package metrics は回帰モデルの評価指標を提供します。
package metrics

import (
	"math"

	"github.com/YuminosukeSato/iziml/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil || yTrue.IsEmpty() {
		return 0, errors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if yPred.IsEmpty() || yPred.Len() != n {
		got := 0
		if !yPred.IsEmpty() {
			got = yPred.Len()
		}
		return 0, errors.NewDimensionError(op, n, got, 0)
	}
	return n, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	mse := sum / float64(n)
	if err := errors.CheckScalar("MSE", mse); err != nil {
		return 0, err
	}
	return mse, nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	mae := sum / float64(n)
	if err := errors.CheckScalar("MAE", mae); err != nil {
		return 0, err
	}
	return mae, nil
}

// R2Score は決定係数（R²）を計算する。
// yTrueが定数の場合は0を返し、UndefinedMetricWarningを発行する。
// 定数かどうかは値そのもので判定する（0.1 のような値では平均が1ulpずれて
// 全変動が厳密に0にならないため）。
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	if isConstant(yTrue) {
		errors.Warn(errors.NewUndefinedMetricWarning("R2Score", "constant yTrue (total sum of squares is zero)", 0))
		return 0, nil
	}

	yMean := stat.Mean(mat.Col(nil, 0, yTrue), nil)

	// 全変動（TSS）と残差変動（RSS）
	var tss, rss float64
	for i := 0; i < n; i++ {
		t := yTrue.AtVec(i)
		p := yPred.AtVec(i)
		tss += (t - yMean) * (t - yMean)
		rss += (t - p) * (t - p)
	}

	r2 := 1 - rss/tss
	if err := errors.CheckScalar("R2Score", r2); err != nil {
		return 0, err
	}
	return r2, nil
}

func isConstant(v *mat.VecDense) bool {
	first := v.AtVec(0)
	for i := 1; i < v.Len(); i++ {
		if v.AtVec(i) != first {
			return false
		}
	}
	return true
}
