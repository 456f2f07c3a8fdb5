// Package pipeline runs the tabular regression workflow: validate, split,
// fit, predict, evaluate and package.
package pipeline

import (
	"github.com/YuminosukeSato/iziml/config"
	"github.com/YuminosukeSato/iziml/core/model"
	"github.com/YuminosukeSato/iziml/linear"
	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/YuminosukeSato/iziml/sklearn/ensemble"
)

// NewEstimator builds the unfitted estimator cfg describes. Every
// hyperparameter is checked here, so an invalid configuration fails with
// InvalidConfig before any data is touched.
func NewEstimator(cfg config.ModelConfig) (model.Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Algorithm {
	case config.RandomForest:
		p := cfg.Forest
		return ensemble.NewRandomForestRegressor(
			ensemble.WithNEstimators(p.TreeCount),
			ensemble.WithMaxFeatures(p.MaxFeatures),
			ensemble.WithMinSamplesSplit(p.MinSamplesSplit),
			ensemble.WithMinSamplesLeaf(p.MinSamplesLeaf),
			ensemble.WithCriterion(p.Criterion),
			ensemble.WithBootstrap(p.Bootstrap),
			ensemble.WithOOBScore(p.OOBScore),
			ensemble.WithRandomState(cfg.Seed),
		), nil
	case config.Linear:
		return linear.NewLinearRegression(), nil
	}
	return nil, errors.NewInvalidConfigError("algorithm", "unknown algorithm", cfg.Algorithm.String())
}
