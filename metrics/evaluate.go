package metrics

import (
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"
)

// displayDecimals is the precision of Rounded and Table.
const displayDecimals = 3

// EvaluationResult holds train and test metrics at full precision. MSE and
// R² make up the results table; RMSE and MAE are reported alongside.
type EvaluationResult struct {
	// Method is the display name of the algorithm, e.g. "Random Forest".
	Method string
	// Label names the MSE columns, e.g. "Squared Error".
	Label string

	TrainMSE float64
	TrainR2  float64
	TestMSE  float64
	TestR2   float64

	TrainRMSE float64
	TrainMAE  float64
	TestRMSE  float64
	TestMAE   float64
}

// Evaluate computes MSE and R² on both partitions.
func Evaluate(yTrain, yTrainPred, yTest, yTestPred *mat.VecDense, label string) (*EvaluationResult, error) {
	res := &EvaluationResult{Label: label}
	var err error
	if res.TrainMSE, err = MSE(yTrain, yTrainPred); err != nil {
		return nil, errors.Wrap(err, "train partition")
	}
	if res.TrainR2, err = R2Score(yTrain, yTrainPred); err != nil {
		return nil, errors.Wrap(err, "train partition")
	}
	if res.TestMSE, err = MSE(yTest, yTestPred); err != nil {
		return nil, errors.Wrap(err, "test partition")
	}
	if res.TestR2, err = R2Score(yTest, yTestPred); err != nil {
		return nil, errors.Wrap(err, "test partition")
	}
	if res.TrainRMSE, err = RMSE(yTrain, yTrainPred); err != nil {
		return nil, errors.Wrap(err, "train partition")
	}
	if res.TestRMSE, err = RMSE(yTest, yTestPred); err != nil {
		return nil, errors.Wrap(err, "test partition")
	}
	if res.TrainMAE, err = MAE(yTrain, yTrainPred); err != nil {
		return nil, errors.Wrap(err, "train partition")
	}
	if res.TestMAE, err = MAE(yTest, yTestPred); err != nil {
		return nil, errors.Wrap(err, "test partition")
	}
	return res, nil
}

// Rounded returns a copy with every metric rounded to 3 decimals.
func (r EvaluationResult) Rounded() EvaluationResult {
	r.TrainMSE = round(r.TrainMSE)
	r.TrainR2 = round(r.TrainR2)
	r.TestMSE = round(r.TestMSE)
	r.TestR2 = round(r.TestR2)
	r.TrainRMSE = round(r.TrainRMSE)
	r.TrainMAE = round(r.TrainMAE)
	r.TestRMSE = round(r.TestRMSE)
	r.TestMAE = round(r.TestMAE)
	return r
}

// Table returns the one-row results table shown to the user.
func (r EvaluationResult) Table() (header, row []string) {
	header = []string{
		"Method",
		"Training " + r.Label,
		"Training R2",
		"Test " + r.Label,
		"Test R2",
	}
	d := r.Rounded()
	row = []string{
		r.Method,
		format(d.TrainMSE),
		format(d.TrainR2),
		format(d.TestMSE),
		format(d.TestR2),
	}
	return header, row
}

// ErrorTable returns the RMSE and MAE of both partitions, rounded like Table.
func (r EvaluationResult) ErrorTable() (header, row []string) {
	header = []string{"Method", "Training RMSE", "Training MAE", "Test RMSE", "Test MAE"}
	d := r.Rounded()
	row = []string{
		r.Method,
		format(d.TrainRMSE),
		format(d.TrainMAE),
		format(d.TestRMSE),
		format(d.TestMAE),
	}
	return header, row
}

// CriterionLabel turns a criterion identifier such as "squared_error" or
// "friedmanMse" into its display form ("Squared Error", "Friedman Mse").
func CriterionLabel(criterion string) string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range criterion {
		switch {
		case r == '_' || r == ' ' || r == '-':
			flush()
		case r >= 'A' && r <= 'Z':
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// round rounds half away from zero on the shortest decimal form of v, so
// 2.675 becomes 2.68. The result is never -0.
func round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(displayDecimals).Float64()
	if f == 0 {
		return 0
	}
	return f
}

func format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', displayDecimals, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(displayDecimals)
}
