// Package config holds the user-facing run options and the immutable model
// configuration derived from them.
package config

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Algorithm identifiers accepted in Options.Algorithm.
const (
	AlgorithmRandomForest = "randomForest"
	AlgorithmLinear       = "linear"
)

// Options is the configuration surface exposed to users (CLI flags, config
// file, IZIML_* environment variables). Ranges follow the original sliders.
type Options struct {
	SplitRatio      int    `mapstructure:"splitRatio" yaml:"splitRatio" json:"splitRatio" validate:"min=10,max=90"`
	Algorithm       string `mapstructure:"algorithm" yaml:"algorithm" json:"algorithm" validate:"oneof=randomForest linear"`
	TreeCount       int    `mapstructure:"treeCount" yaml:"treeCount" json:"treeCount" validate:"min=10,max=1000"`
	MaxFeatures     string `mapstructure:"maxFeatures" yaml:"maxFeatures" json:"maxFeatures" validate:"oneof=all sqrt log2"`
	MinSamplesSplit int    `mapstructure:"minSamplesSplit" yaml:"minSamplesSplit" json:"minSamplesSplit" validate:"min=2,max=10"`
	MinSamplesLeaf  int    `mapstructure:"minSamplesLeaf" yaml:"minSamplesLeaf" json:"minSamplesLeaf" validate:"min=1,max=10"`
	Seed            int    `mapstructure:"seed" yaml:"seed" json:"seed" validate:"min=0,max=1000"`
	Criterion       string `mapstructure:"criterion" yaml:"criterion" json:"criterion" validate:"oneof=squaredError absoluteError friedmanMse"`
	Bootstrap       bool   `mapstructure:"bootstrap" yaml:"bootstrap" json:"bootstrap"`
	OutOfBagScore   bool   `mapstructure:"outOfBagScore" yaml:"outOfBagScore" json:"outOfBagScore"`
}

// forestOnly are the fields ignored when Algorithm is linear.
var forestOnly = []string{"TreeCount", "MaxFeatures", "MinSamplesSplit", "MinSamplesLeaf", "Bootstrap", "OutOfBagScore"}

// Defaults returns the original application's initial slider positions.
func Defaults() Options {
	return Options{
		SplitRatio:      80,
		Algorithm:       AlgorithmRandomForest,
		TreeCount:       100,
		MaxFeatures:     "all",
		MinSamplesSplit: 2,
		MinSamplesLeaf:  2,
		Seed:            42,
		Criterion:       "squaredError",
		Bootstrap:       true,
		OutOfBagScore:   false,
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report option names as users write them
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks every option against its allowed range. Forest options are
// not checked for the linear algorithm. The first violation is returned as an
// InvalidConfig error.
func (o Options) Validate() error {
	var err error
	if o.Algorithm == AlgorithmLinear {
		err = getValidator().StructExcept(o, forestOnly...)
	} else {
		err = getValidator().Struct(o)
	}
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.NewInvalidConfigError(fe.Field(), describe(fe), fe.Value())
		}
		return errors.Wrap(err, "config: validate options")
	}
	if o.Algorithm == AlgorithmRandomForest && o.OutOfBagScore && !o.Bootstrap {
		return errors.NewInvalidConfigError("outOfBagScore", "out-of-bag estimation requires bootstrap", o.OutOfBagScore)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "must be >= " + fe.Param()
	case "max":
		return "must be <= " + fe.Param()
	case "oneof":
		return "must be one of [" + strings.ReplaceAll(fe.Param(), " ", ", ") + "]"
	}
	return fmt.Sprintf("failed '%s' check", fe.Tag())
}
