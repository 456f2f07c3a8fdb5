package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う（n×1 行列を返す）
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Estimator is the fit/predict capability shared by every regression variant.
// Adding an algorithm means adding an implementation, never branching in the pipeline.
type Estimator interface {
	Fitter
	Predictor
	// Name returns the estimator type name used in logs and errors.
	Name() string
}

// FeatureImportancer is implemented by estimators that can score their inputs.
// Importances are indexed by feature column, non-negative, and sum to 1.
type FeatureImportancer interface {
	FeatureImportances() ([]float64, error)
}

// OOBScorer is implemented by bagging estimators that computed an out-of-bag R².
type OOBScorer interface {
	// OOBScore returns the score and whether it was computed.
	OOBScore() (float64, bool)
}
