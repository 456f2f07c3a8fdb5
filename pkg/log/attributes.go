// Package log defines standard attribute keys for pipeline logging.
//
// Keys follow a hierarchical naming convention (e.g. "ml.operation",
// "data.samples") so that runs can be filtered and correlated in log
// aggregation tools.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "LinearRegression", "RandomForestRegressor"
	ModelNameKey = "model.name"

	// RunIDKey correlates every record emitted by one pipeline run.
	RunIDKey = "run.id"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the pipeline stage.
	PhaseKey = "ml.phase"

	// PartitionKey names a data partition ("train" or "test").
	PartitionKey = "data.partition"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of rows.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of feature columns.
	FeaturesKey = "data.features"

	// DroppedRowsKey counts rows removed because of missing values.
	DroppedRowsKey = "data.dropped_rows"

	// DroppedColumnsKey lists columns removed because they are not numeric.
	DroppedColumnsKey = "data.dropped_columns"

	// FingerprintKey is the content hash of a validated dataset.
	FingerprintKey = "data.fingerprint"

	// DataSizeKey indicates a payload size in bytes.
	DataSizeKey = "data.size_bytes"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// MSEKey records mean squared error.
	MSEKey = "metrics.mse"

	// R2ScoreKey records R² coefficient of determination for regression.
	// Range typically [-∞, 1.0], with 1.0 being perfect prediction.
	R2ScoreKey = "metrics.r2_score"

	// OOBScoreKey records the out-of-bag R² of a random forest.
	OOBScoreKey = "metrics.oob_score"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// SuggestionKey provides helpful suggestions for resolving issues.
	SuggestionKey = "error.suggestion"
)

// Hyperparameters and Configuration
const (
	// AlgorithmKey records the selected algorithm ("randomForest", "linear").
	AlgorithmKey = "config.algorithm"

	// TreeCountKey records the number of trees of a forest.
	TreeCountKey = "hyperparams.tree_count"

	// SplitRatioKey records the training percentage.
	SplitRatioKey = "config.split_ratio"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationValidate = "validate"
	OperationSplit    = "split"
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationEvaluate = "evaluate"
	OperationPackage  = "package"
	OperationRender   = "render"

	PhasePreprocessing = "preprocessing"
	PhaseTraining      = "training"
	PhaseEvaluation    = "evaluation"
	PhaseExport        = "export"

	ErrorNoNumericColumns    = "NO_NUMERIC_COLUMNS"
	ErrorInsufficientColumns = "INSUFFICIENT_COLUMNS"
	ErrorInvalidConfig       = "INVALID_CONFIG"
	ErrorFit                 = "FIT_ERROR"
)
