package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestPipelineErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     Kind
		wantMsg  string
	}{
		{
			name:     "no numeric columns",
			err:      NewValidationError(KindNoNumericColumns, 0, "table has no numeric column"),
			sentinel: ErrNoNumericColumns,
			kind:     KindNoNumericColumns,
			wantMsg:  "iziml: validation failed (NoNumericColumns): table has no numeric column",
		},
		{
			name:     "insufficient columns",
			err:      NewValidationError(KindInsufficientColumns, 1, "need at least 2 numeric columns"),
			sentinel: ErrInsufficientColumns,
			kind:     KindInsufficientColumns,
			wantMsg:  "iziml: validation failed (InsufficientColumns): need at least 2 numeric columns",
		},
		{
			name:     "invalid config",
			err:      NewInvalidConfigError("treeCount", "must be in [10, 1000]", 0),
			sentinel: ErrInvalidConfig,
			kind:     KindInvalidConfig,
			wantMsg:  "iziml: InvalidConfig for parameter 'treeCount': must be in [10, 1000] (got: 0)",
		},
		{
			name:     "fit error",
			err:      NewFitError("LinearRegression", ErrSingularMatrix),
			sentinel: ErrFitError,
			kind:     KindFitError,
			wantMsg:  "iziml: LinearRegression: FitError: singular matrix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.wantMsg)
			}
			if !Is(tt.err, tt.sentinel) {
				t.Errorf("Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf() = %q, want %q", got, tt.kind)
			}
			if !strings.Contains(fmt.Sprintf("%+v", tt.err), "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}
		})
	}
}

func TestKindsDoNotCrossMatch(t *testing.T) {
	err := NewValidationError(KindNoNumericColumns, 0, "x")
	if Is(err, ErrInsufficientColumns) {
		t.Error("NoNumericColumns must not match ErrInsufficientColumns")
	}
	if Is(err, ErrInvalidConfig) {
		t.Error("ValidationError must not match ErrInvalidConfig")
	}
	if KindOf(New("plain")) != "" {
		t.Error("plain errors carry no kind")
	}
}

func TestFitErrorUnwrap(t *testing.T) {
	cause := NewDimensionError("Fit", 10, 3, 0)
	err := Wrap(NewFitError("RandomForestRegressor", cause), "training")

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatal("expected DimensionError in chain")
	}
	if dimErr.Expected != 10 || dimErr.Got != 3 {
		t.Errorf("unexpected dims %+v", dimErr)
	}
	var trainErr *TrainingError
	if !As(err, &trainErr) || trainErr.Model != "RandomForestRegressor" {
		t.Errorf("expected TrainingError for RandomForestRegressor, got %v", err)
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 3, 2, 1)
	want := "iziml: Predict: dimension mismatch on axis 1 (features). Expected 3, got 2"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWarn(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(error) {})

	Warn(NewUndefinedMetricWarning("r2", "constant target", 0))
	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	if !strings.Contains(got[0].Error(), "'r2' is ill-defined") {
		t.Errorf("unexpected warning %q", got[0].Error())
	}
}

func TestCheckScalar(t *testing.T) {
	if err := CheckScalar("mse", 1.5); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	err := CheckScalar("mse", math.NaN())
	var inst *NumericalInstabilityError
	if !As(err, &inst) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if SafeDivide(1, 0) != 0 {
		t.Error("SafeDivide by zero must be 0")
	}
}
