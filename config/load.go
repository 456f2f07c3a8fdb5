package config

import (
	"strings"

	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. IZIML_TREECOUNT=200.
const EnvPrefix = "IZIML"

// flagNames maps option keys to command-line flag names.
var flagNames = map[string]string{
	"splitRatio":      "split-ratio",
	"algorithm":       "algorithm",
	"treeCount":       "trees",
	"maxFeatures":     "max-features",
	"minSamplesSplit": "min-samples-split",
	"minSamplesLeaf":  "min-samples-leaf",
	"seed":            "seed",
	"criterion":       "criterion",
	"bootstrap":       "bootstrap",
	"outOfBagScore":   "oob-score",
}

// RegisterFlags adds one flag per option to fs, with the defaults as values.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.Int("split-ratio", d.SplitRatio, "data split ratio (% for training set), 10-90")
	fs.String("algorithm", d.Algorithm, "model type: randomForest or linear")
	fs.Int("trees", d.TreeCount, "number of trees (n_estimators), 10-1000")
	fs.String("max-features", d.MaxFeatures, "features considered per split: all, sqrt or log2")
	fs.Int("min-samples-split", d.MinSamplesSplit, "minimum samples to split an internal node, 2-10")
	fs.Int("min-samples-leaf", d.MinSamplesLeaf, "minimum samples at a leaf, 1-10")
	fs.Int("seed", d.Seed, "random seed, 0-1000")
	fs.String("criterion", d.Criterion, "split quality: squaredError, absoluteError or friedmanMse")
	fs.Bool("bootstrap", d.Bootstrap, "train each tree on a bootstrap sample")
	fs.Bool("oob-score", d.OutOfBagScore, "estimate R2 on out-of-bag samples")
}

// Load resolves Options from, in increasing precedence: defaults, the config
// file at path (YAML, JSON or TOML by extension; skipped when empty),
// IZIML_<KEY> environment variables and flags of fs that were set
// explicitly. fs may be nil. The result is validated.
func Load(path string, fs *pflag.FlagSet) (Options, error) {
	v := viper.New()
	d := Defaults()
	v.SetDefault("splitRatio", d.SplitRatio)
	v.SetDefault("algorithm", d.Algorithm)
	v.SetDefault("treeCount", d.TreeCount)
	v.SetDefault("maxFeatures", d.MaxFeatures)
	v.SetDefault("minSamplesSplit", d.MinSamplesSplit)
	v.SetDefault("minSamplesLeaf", d.MinSamplesLeaf)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("criterion", d.Criterion)
	v.SetDefault("bootstrap", d.Bootstrap)
	v.SetDefault("outOfBagScore", d.OutOfBagScore)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Options{}, errors.Wrapf(err, "config: read %s", path)
		}
	}

	if fs != nil {
		for key, name := range flagNames {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Options{}, errors.Wrapf(err, "config: bind flag %s", name)
				}
			}
		}
	}

	var o Options
	if err := v.Unmarshal(&o); err != nil {
		return Options{}, errors.NewInvalidConfigError("options", err.Error(), nil)
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// LoadEnvFile copies the KEY=VALUE lines of a dotenv file into the process
// environment so that Load picks up its IZIML_ entries. Variables that are
// already set win over the file.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "config: read env file %s", path)
	}
	return nil
}
