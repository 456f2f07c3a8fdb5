package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/YuminosukeSato/iziml/sklearn/tree"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_Valid(t *testing.T) {
	require.NoError(t, Defaults().Validate())

	cfg, err := Defaults().ModelConfig()
	require.NoError(t, err)
	assert.Equal(t, RandomForest, cfg.Algorithm)
	assert.Equal(t, 80, cfg.SplitRatio)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, ForestParams{
		TreeCount:       100,
		MaxFeatures:     tree.MaxFeaturesAll,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  2,
		Criterion:       tree.SquaredError,
		Bootstrap:       true,
	}, cfg.Forest)
	assert.InDelta(t, 0.8, cfg.TrainFraction(), 1e-12)
	assert.Equal(t, "squared_error", cfg.CriterionLabel())
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Options)
		field string
	}{
		{"split too small", func(o *Options) { o.SplitRatio = 5 }, "splitRatio"},
		{"split too large", func(o *Options) { o.SplitRatio = 95 }, "splitRatio"},
		{"zero trees", func(o *Options) { o.TreeCount = 0 }, "treeCount"},
		{"too many trees", func(o *Options) { o.TreeCount = 1001 }, "treeCount"},
		{"max features", func(o *Options) { o.MaxFeatures = "half" }, "maxFeatures"},
		{"min split", func(o *Options) { o.MinSamplesSplit = 1 }, "minSamplesSplit"},
		{"min leaf", func(o *Options) { o.MinSamplesLeaf = 11 }, "minSamplesLeaf"},
		{"seed", func(o *Options) { o.Seed = -1 }, "seed"},
		{"criterion", func(o *Options) { o.Criterion = "poisson" }, "criterion"},
		{"algorithm", func(o *Options) { o.Algorithm = "svm" }, "algorithm"},
		{"oob without bootstrap", func(o *Options) { o.Bootstrap = false; o.OutOfBagScore = true }, "outOfBagScore"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Defaults()
			tt.edit(&o)
			err := o.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
			assert.Equal(t, errors.KindInvalidConfig, errors.KindOf(err))

			var ce *errors.ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)

			_, err = o.ModelConfig()
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
		})
	}
}

func TestOptions_LinearIgnoresForestOptions(t *testing.T) {
	o := Defaults()
	o.Algorithm = AlgorithmLinear
	o.TreeCount = 0
	o.Bootstrap = false
	o.OutOfBagScore = true
	require.NoError(t, o.Validate())

	cfg, err := o.ModelConfig()
	require.NoError(t, err)
	assert.Equal(t, Linear, cfg.Algorithm)
	assert.Equal(t, "Linear Regression", cfg.Algorithm.DisplayName())

	o.SplitRatio = 100
	assert.True(t, errors.Is(o.Validate(), errors.ErrInvalidConfig))
}

func TestModelConfig_Validate(t *testing.T) {
	cfg, err := Defaults().ModelConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Defaults(), cfg.Options())

	cfg.Forest.TreeCount = 0
	assert.True(t, errors.Is(cfg.Validate(), errors.ErrInvalidConfig))

	cfg = ModelConfig{}
	assert.Error(t, cfg.Validate())
}

func TestModelConfig_Summary(t *testing.T) {
	o := Defaults()
	o.MaxFeatures = "sqrt"
	cfg, err := o.ModelConfig()
	require.NoError(t, err)

	assert.Equal(t, []Parameter{
		{"Data split ratio (% for Training Set)", "80"},
		{"Number of estimators (n_estimators)", "100"},
		{"Max features (max_features)", "3"},
	}, cfg.Summary(10))

	o.Algorithm = AlgorithmLinear
	cfg, err = o.ModelConfig()
	require.NoError(t, err)
	assert.Len(t, cfg.Summary(10), 1)
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		o, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, Defaults(), o)
	})

	t.Run("precedence", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "iziml.yaml")
		require.NoError(t, os.WriteFile(path, []byte("treeCount: 300\nseed: 7\ncriterion: absoluteError\nsplitRatio: 60\n"), 0o600))
		t.Setenv("IZIML_SEED", "9")
		t.Setenv("IZIML_SPLITRATIO", "70")

		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		RegisterFlags(fs)
		require.NoError(t, fs.Parse([]string{"--split-ratio=50", "--bootstrap=false"}))

		o, err := Load(path, fs)
		require.NoError(t, err)
		assert.Equal(t, 300, o.TreeCount)             // file
		assert.Equal(t, "absoluteError", o.Criterion) // file
		assert.Equal(t, 9, o.Seed)                    // env over file
		assert.Equal(t, 50, o.SplitRatio)             // flag over env
		assert.False(t, o.Bootstrap)                  // flag
		assert.Equal(t, 2, o.MinSamplesLeaf)          // default
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("IZIML_TREECOUNT", "0")
		_, err := Load("", nil)
		assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
	})

	t.Run("env file", func(t *testing.T) {
		// register cleanup, then clear so the file can set it
		t.Setenv("IZIML_MINSAMPLESLEAF", "")
		require.NoError(t, os.Unsetenv("IZIML_MINSAMPLESLEAF"))
		t.Setenv("IZIML_SEED", "11")

		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("IZIML_MINSAMPLESLEAF=4\nIZIML_SEED=12\n"), 0o600))
		require.NoError(t, LoadEnvFile(path))

		o, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, 4, o.MinSamplesLeaf)
		assert.Equal(t, 11, o.Seed) // process env wins
	})

	t.Run("missing env file", func(t *testing.T) {
		assert.Error(t, LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		assert.Error(t, err)
	})
}
