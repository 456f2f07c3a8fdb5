package pipeline

import (
	"github.com/YuminosukeSato/iziml/core/model"
	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/YuminosukeSato/iziml/pkg/log"
	"github.com/YuminosukeSato/iziml/sklearn/model_selection"
	"gonum.org/v1/gonum/mat"
)

// Partition labels a prediction row.
type Partition string

const (
	PartitionTrain Partition = "train"
	PartitionTest  Partition = "test"
)

// PredictionRow is one (actual, predicted) pair.
type PredictionRow struct {
	Actual    float64
	Predicted float64
	Partition Partition
}

// PredictionTable lists the training rows first, then the test rows, each in
// split order.
type PredictionTable struct {
	Rows []PredictionRow
}

// Len returns the number of rows.
func (p *PredictionTable) Len() int {
	return len(p.Rows)
}

// Partition returns the actual and predicted values of one partition.
func (p *PredictionTable) Partition(part Partition) (actual, predicted *mat.VecDense) {
	var a, pr []float64
	for _, r := range p.Rows {
		if r.Partition == part {
			a = append(a, r.Actual)
			pr = append(pr, r.Predicted)
		}
	}
	if len(a) == 0 {
		return &mat.VecDense{}, &mat.VecDense{}
	}
	return mat.NewVecDense(len(a), a), mat.NewVecDense(len(pr), pr)
}

// TrainedModel wraps a fitted estimator.
type TrainedModel struct {
	est          model.Estimator
	featureNames []string
}

// Name returns the estimator type name.
func (m *TrainedModel) Name() string {
	return m.est.Name()
}

// Predict returns one prediction per row of X as an n×1 matrix.
func (m *TrainedModel) Predict(X mat.Matrix) (mat.Matrix, error) {
	return m.est.Predict(X)
}

// FeatureImportances returns the importance of each feature keyed by name.
// Values are non-negative and sum to 1; if the estimator made no split at all
// every feature gets 1/p. ok is false for estimators without importances
// and when the estimator fails to compute them; the failure is logged.
func (m *TrainedModel) FeatureImportances() (imp map[string]float64, ok bool) {
	fi, ok := m.est.(model.FeatureImportancer)
	if !ok {
		return nil, false
	}
	values, err := fi.FeatureImportances()
	if err == nil && len(values) != len(m.featureNames) {
		err = errors.NewDimensionError(m.est.Name()+".FeatureImportances", len(m.featureNames), len(values), 1)
	}
	if err != nil {
		log.GetLoggerWithName("pipeline.train").Warn("Feature importances unavailable",
			log.ModelNameKey, m.est.Name(),
			log.ErrAttrKey, err,
		)
		return nil, false
	}
	var total float64
	for _, v := range values {
		total += v
	}
	imp = make(map[string]float64, len(values))
	for j, name := range m.featureNames {
		if total > 0 {
			imp[name] = values[j] / total
		} else {
			imp[name] = 1 / float64(len(values))
		}
	}
	return imp, true
}

// OOBScore returns the out-of-bag R² when the estimator computed one.
func (m *TrainedModel) OOBScore() (float64, bool) {
	if s, ok := m.est.(model.OOBScorer); ok {
		return s.OOBScore()
	}
	return 0, false
}

// Train fits est on the training partition and predicts both partitions with
// the fitted model. Any estimator failure, panics included, is returned as a
// FitError.
func Train(est model.Estimator, split *model_selection.SplitResult) (*TrainedModel, *PredictionTable, error) {
	logger := log.GetLoggerWithName("pipeline.train").With(log.ModelNameKey, est.Name())

	if err := errors.CheckNumericalStability("training features", split.XTrain.RawMatrix().Data); err != nil {
		return nil, nil, errors.NewFitError(est.Name(), err)
	}
	if err := errors.CheckNumericalStability("training target", split.YTrain.RawVector().Data); err != nil {
		return nil, nil, errors.NewFitError(est.Name(), err)
	}

	logger.Debug("Fitting",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, split.NumTrain(),
		log.FeaturesKey, len(split.FeatureNames),
	)
	err := errors.SafeExecute(est.Name()+".Fit", func() error {
		return est.Fit(split.XTrain, split.YTrain)
	})
	if err != nil {
		logger.Error("Fit failed", err)
		return nil, nil, errors.NewFitError(est.Name(), err)
	}

	trainPred, err := predict(est, split.XTrain)
	if err != nil {
		return nil, nil, err
	}
	testPred, err := predict(est, split.XTest)
	if err != nil {
		return nil, nil, err
	}

	table := &PredictionTable{Rows: make([]PredictionRow, 0, split.NumTrain()+split.NumTest())}
	for i, p := range trainPred {
		table.Rows = append(table.Rows, PredictionRow{Actual: split.YTrain.AtVec(i), Predicted: p, Partition: PartitionTrain})
	}
	for i, p := range testPred {
		table.Rows = append(table.Rows, PredictionRow{Actual: split.YTest.AtVec(i), Predicted: p, Partition: PartitionTest})
	}

	trained := &TrainedModel{est: est, featureNames: append([]string(nil), split.FeatureNames...)}
	return trained, table, nil
}

func predict(est model.Estimator, X mat.Matrix) ([]float64, error) {
	var out mat.Matrix
	err := errors.SafeExecute(est.Name()+".Predict", func() error {
		var err error
		out, err = est.Predict(X)
		return err
	})
	if err != nil {
		return nil, errors.NewFitError(est.Name(), err)
	}
	pred := mat.Col(nil, 0, out)
	if err := errors.CheckNumericalStability("predictions", pred); err != nil {
		return nil, errors.NewFitError(est.Name(), err)
	}
	return pred, nil
}
