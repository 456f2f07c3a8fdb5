package dataset

import (
	"strconv"
	"strings"

	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/YuminosukeSato/iziml/pkg/log"
)

// Validate converts a raw table into a numeric Dataset.
//
// Rows with a missing cell in any column are dropped first. A column is
// numeric when every non-missing cell of the input parses as a float; other
// columns are dropped with a DataConversionWarning. The input is not
// modified.
//
// Errors:
//   - NoNumericColumns when no numeric column exists
//   - InsufficientColumns when only one numeric column exists
//   - EmptyDataset when no row survives missing-value removal
//
// A column without any non-missing cell counts as numeric, so a header-only
// table with two or more columns fails with EmptyDataset rather than
// NoNumericColumns. Repeated column names get a ".<n>" suffix as in ReadCSV.
func Validate(t *Table) (*Dataset, error) {
	logger := log.GetLoggerWithName("dataset").With(log.OperationKey, log.OperationValidate)

	if t == nil {
		return nil, errors.NewValidationError(errors.KindNoNumericColumns, 0, "no table")
	}
	nCols := len(t.Columns)
	for i, r := range t.Rows {
		if len(r) != nCols {
			return nil, errors.NewValueError("dataset.Validate",
				"row "+strconv.Itoa(i)+" has "+strconv.Itoa(len(r))+" cells, expected "+strconv.Itoa(nCols))
		}
	}

	// a hand-built Table may repeat names; features are keyed by name
	names := uniqueNames(t.Columns)
	report := Report{InputRows: len(t.Rows), Kinds: make(map[string]ColumnKind, nCols)}
	numeric := make([]int, 0, nCols)
	for j, name := range names {
		kind := classify(t.Rows, j)
		report.Kinds[name] = kind
		if kind == Numeric {
			numeric = append(numeric, j)
		} else {
			report.DroppedColumns = append(report.DroppedColumns, name)
		}
	}

	if len(report.DroppedColumns) > 0 {
		errors.Warn(errors.NewDataConversionWarning("object", "dropped",
			"non-numeric columns: "+strings.Join(report.DroppedColumns, ", ")))
	}
	switch len(numeric) {
	case 0:
		logger.Warn("No numeric columns", log.DroppedColumnsKey, len(report.DroppedColumns))
		return nil, errors.NewValidationError(errors.KindNoNumericColumns, 0,
			"the dataset must contain numeric values")
	case 1:
		logger.Warn("Insufficient numeric columns", log.FeaturesKey, 1)
		return nil, errors.NewValidationError(errors.KindInsufficientColumns, 1,
			"need at least one feature column and one target column")
	}

	keep := make([]int, 0, len(t.Rows))
	for i, r := range t.Rows {
		if !hasMissing(r) {
			keep = append(keep, i)
		}
	}
	report.DroppedRows = len(t.Rows) - len(keep)
	if len(keep) == 0 {
		logger.Warn("No rows left after dropping missing values", log.DroppedRowsKey, report.DroppedRows)
		return nil, errors.NewValidationError(errors.KindEmptyDataset, len(numeric),
			"every row has at least one missing value")
	}

	ds := &Dataset{
		names:   make([]string, len(numeric)),
		columns: make([][]float64, len(numeric)),
		rows:    len(keep),
		report:  report,
	}
	for k, j := range numeric {
		ds.names[k] = names[j]
		col := make([]float64, len(keep))
		for n, i := range keep {
			// classify already proved every kept cell parses
			col[n], _ = parseCell(t.Rows[i][j])
		}
		ds.columns[k] = col
	}

	logger.Debug("Dataset validated",
		log.SamplesKey, ds.rows,
		log.FeaturesKey, len(numeric)-1,
		log.DroppedRowsKey, report.DroppedRows,
		log.DroppedColumnsKey, len(report.DroppedColumns),
	)
	return ds, nil
}

func classify(rows [][]string, j int) ColumnKind {
	for _, r := range rows {
		if IsMissing(r[j]) {
			continue
		}
		if _, err := parseCell(r[j]); err != nil {
			return NonNumeric
		}
	}
	return Numeric
}

func hasMissing(row []string) bool {
	for _, c := range row {
		if IsMissing(c) {
			return true
		}
	}
	return false
}

func parseCell(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
