package config

import (
	"strconv"

	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/YuminosukeSato/iziml/sklearn/tree"
)

// Algorithm selects the estimator variant.
type Algorithm int

const (
	// RandomForest is an ensemble of bootstrap-trained regression trees.
	RandomForest Algorithm = iota
	// Linear is ordinary least squares.
	Linear
)

// String returns the Options identifier of a.
func (a Algorithm) String() string {
	switch a {
	case RandomForest:
		return AlgorithmRandomForest
	case Linear:
		return AlgorithmLinear
	}
	return "unknown"
}

// DisplayName returns the name shown in the results table.
func (a Algorithm) DisplayName() string {
	switch a {
	case RandomForest:
		return "Random Forest"
	case Linear:
		return "Linear Regression"
	}
	return "Unknown"
}

// ForestParams are the random forest hyperparameters.
type ForestParams struct {
	TreeCount       int
	MaxFeatures     tree.MaxFeatures
	MinSamplesSplit int
	MinSamplesLeaf  int
	Criterion       tree.Criterion
	Bootstrap       bool
	OOBScore        bool
}

// ModelConfig describes one pipeline run. It is a plain value: build it once
// and pass copies.
type ModelConfig struct {
	Algorithm Algorithm
	// SplitRatio is the percentage of rows used for training, 10 to 90.
	SplitRatio int
	Seed       uint64
	Forest     ForestParams
}

var criterionByOption = map[string]tree.Criterion{
	"squaredError":  tree.SquaredError,
	"absoluteError": tree.AbsoluteError,
	"friedmanMse":   tree.FriedmanMSE,
}

var maxFeaturesByOption = map[string]tree.MaxFeatures{
	"all":  tree.MaxFeaturesAll,
	"sqrt": tree.MaxFeaturesSqrt,
	"log2": tree.MaxFeaturesLog2,
}

// ModelConfig validates o and converts it.
func (o Options) ModelConfig() (ModelConfig, error) {
	if err := o.Validate(); err != nil {
		return ModelConfig{}, err
	}
	algo := RandomForest
	if o.Algorithm == AlgorithmLinear {
		algo = Linear
	}
	crit, ok := criterionByOption[o.Criterion]
	if !ok {
		return ModelConfig{}, errors.NewInvalidConfigError("criterion", "unknown criterion", o.Criterion)
	}
	mf, ok := maxFeaturesByOption[o.MaxFeatures]
	if !ok && algo == RandomForest {
		return ModelConfig{}, errors.NewInvalidConfigError("maxFeatures", "unknown max features", o.MaxFeatures)
	}
	return ModelConfig{
		Algorithm:  algo,
		SplitRatio: o.SplitRatio,
		Seed:       uint64(o.Seed),
		Forest: ForestParams{
			TreeCount:       o.TreeCount,
			MaxFeatures:     mf,
			MinSamplesSplit: o.MinSamplesSplit,
			MinSamplesLeaf:  o.MinSamplesLeaf,
			Criterion:       crit,
			Bootstrap:       o.Bootstrap,
			OOBScore:        o.OutOfBagScore,
		},
	}, nil
}

// Options converts c back into its user-facing form.
func (c ModelConfig) Options() Options {
	o := Options{
		SplitRatio:      c.SplitRatio,
		Algorithm:       c.Algorithm.String(),
		TreeCount:       c.Forest.TreeCount,
		MaxFeatures:     c.Forest.MaxFeatures.String(),
		MinSamplesSplit: c.Forest.MinSamplesSplit,
		MinSamplesLeaf:  c.Forest.MinSamplesLeaf,
		Seed:            int(min(c.Seed, 1<<31)),
		Bootstrap:       c.Forest.Bootstrap,
		OutOfBagScore:   c.Forest.OOBScore,
	}
	for name, crit := range criterionByOption {
		if crit == c.Forest.Criterion {
			o.Criterion = name
		}
	}
	if o.Criterion == "" {
		o.Criterion = string(c.Forest.Criterion)
	}
	return o
}

// Validate checks c with the same rules as Options.Validate, so a ModelConfig
// built by hand is rejected the same way before any fitting.
func (c ModelConfig) Validate() error {
	return c.Options().Validate()
}

// TrainFraction returns SplitRatio as a fraction in (0, 1).
func (c ModelConfig) TrainFraction() float64 {
	return float64(c.SplitRatio) / 100
}

// CriterionLabel returns the criterion identifier the metric labels are
// derived from, e.g. "squared_error".
func (c ModelConfig) CriterionLabel() string {
	return string(c.Forest.Criterion)
}

// Parameter is one entry of Summary.
type Parameter struct {
	Name  string
	Value string
}

// Summary lists the parameters shown next to the results: the split ratio and,
// for the forest, the tree count and the effective max features for
// nFeatures inputs.
func (c ModelConfig) Summary(nFeatures int) []Parameter {
	out := []Parameter{
		{Name: "Data split ratio (% for Training Set)", Value: strconv.Itoa(c.SplitRatio)},
	}
	if c.Algorithm == RandomForest {
		out = append(out,
			Parameter{Name: "Number of estimators (n_estimators)", Value: strconv.Itoa(c.Forest.TreeCount)},
			Parameter{Name: "Max features (max_features)", Value: strconv.Itoa(c.Forest.MaxFeatures.Resolve(nFeatures))},
		)
	}
	return out
}
