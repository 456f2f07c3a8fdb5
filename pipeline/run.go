package pipeline

import (
	"context"
	"time"

	"github.com/YuminosukeSato/iziml/artifact"
	"github.com/YuminosukeSato/iziml/config"
	"github.com/YuminosukeSato/iziml/core/model"
	"github.com/YuminosukeSato/iziml/dataset"
	"github.com/YuminosukeSato/iziml/metrics"
	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/YuminosukeSato/iziml/pkg/log"
	"github.com/YuminosukeSato/iziml/sklearn/model_selection"
	"github.com/google/uuid"
)

// Result is everything a completed run produces.
type Result struct {
	RunID       uuid.UUID
	Config      config.ModelConfig
	Dataset     *dataset.Dataset
	Split       *model_selection.SplitResult
	Model       *TrainedModel
	Predictions *PredictionTable
	Evaluation  *metrics.EvaluationResult
	// Importances is nil for estimators without feature importances.
	Importances map[string]float64
	// Archive is the zip built by artifact.Package.
	Archive     []byte
	Fingerprint uint64
	Parameters  []config.Parameter
}

// OOBScore returns the out-of-bag R² when the forest computed one.
func (r *Result) OOBScore() (float64, bool) {
	return r.Model.OOBScore()
}

// Run validates table and runs the remaining stages on it.
func Run(ctx context.Context, table *dataset.Table, cfg config.ModelConfig) (*Result, error) {
	est, err := NewEstimator(cfg)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Validate(table)
	if err != nil {
		return nil, err
	}
	return run(ctx, ds, cfg, est)
}

// RunDataset runs every stage after validation on an already valid dataset.
func RunDataset(ctx context.Context, ds *dataset.Dataset, cfg config.ModelConfig) (*Result, error) {
	est, err := NewEstimator(cfg)
	if err != nil {
		return nil, err
	}
	return run(ctx, ds, cfg, est)
}

// run checks ctx between stages; a stage itself is never interrupted.
// It returns either a complete Result or an error.
func run(ctx context.Context, ds *dataset.Dataset, cfg config.ModelConfig, est model.Estimator) (*Result, error) {
	res := &Result{
		RunID:       uuid.New(),
		Config:      cfg,
		Dataset:     ds,
		Fingerprint: ds.Fingerprint(),
	}
	logger := log.GetLoggerWithName("pipeline").With(
		log.RunIDKey, res.RunID.String(),
		log.AlgorithmKey, cfg.Algorithm.String(),
	)
	start := time.Now()
	logger.Info("Run started",
		log.SamplesKey, ds.NumRows(),
		log.FeaturesKey, ds.NumColumns()-1,
		log.FingerprintKey, res.Fingerprint,
		log.SplitRatioKey, cfg.SplitRatio,
		log.RandomSeedKey, cfg.Seed,
	)

	fail := func(phase string, err error) (*Result, error) {
		logger.Error("Run failed", err, log.PhaseKey, phase)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return fail(log.PhasePreprocessing, errors.WithStack(err))
	}
	split, err := model_selection.TrainTestSplit(ds, cfg.TrainFraction(), cfg.Seed)
	if err != nil {
		return fail(log.PhasePreprocessing, err)
	}
	res.Split = split

	if err := ctx.Err(); err != nil {
		return fail(log.PhaseTraining, errors.WithStack(err))
	}
	trained, table, err := Train(est, split)
	if err != nil {
		return fail(log.PhaseTraining, err)
	}
	res.Model = trained
	res.Predictions = table
	res.Importances, _ = trained.FeatureImportances()

	if err := ctx.Err(); err != nil {
		return fail(log.PhaseEvaluation, errors.WithStack(err))
	}
	yTrain, yTrainPred := table.Partition(PartitionTrain)
	yTest, yTestPred := table.Partition(PartitionTest)
	eval, err := metrics.Evaluate(yTrain, yTrainPred, yTest, yTestPred, metrics.CriterionLabel(cfg.CriterionLabel()))
	if err != nil {
		return fail(log.PhaseEvaluation, err)
	}
	eval.Method = cfg.Algorithm.DisplayName()
	res.Evaluation = eval
	res.Parameters = cfg.Summary(ds.NumColumns() - 1)

	if err := ctx.Err(); err != nil {
		return fail(log.PhaseExport, errors.WithStack(err))
	}
	archive, err := artifact.Package(ds, split)
	if err != nil {
		return fail(log.PhaseExport, err)
	}
	res.Archive = archive

	fields := []any{
		log.MSEKey, eval.TestMSE,
		log.R2ScoreKey, eval.TestR2,
		log.DataSizeKey, len(archive),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	}
	if oob, ok := trained.OOBScore(); ok {
		fields = append(fields, log.OOBScoreKey, oob)
	}
	logger.Info("Run completed", fields...)
	return res, nil
}
