package dataset

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/mat"
)

// ColumnKind is the classification of a raw column.
type ColumnKind int

const (
	// Numeric columns have only float-parsable or missing cells.
	Numeric ColumnKind = iota
	// NonNumeric columns have at least one cell that is not a number.
	NonNumeric
)

func (k ColumnKind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "non-numeric"
}

// Report describes what Validate removed.
type Report struct {
	InputRows      int
	DroppedRows    int
	DroppedColumns []string
	Kinds          map[string]ColumnKind
}

// Dataset is a set of named numeric columns of equal length without missing
// values. The last column is the target.
type Dataset struct {
	names   []string
	columns [][]float64
	rows    int
	report  Report
}

// FromColumns builds a Dataset from named numeric columns. It fails with
// InsufficientColumns for fewer than two columns and with EmptyDataset for
// zero rows. NaN cells and repeated column names are rejected.
func FromColumns(names []string, columns [][]float64) (*Dataset, error) {
	if len(names) != len(columns) {
		return nil, errors.NewDimensionError("dataset.FromColumns", len(names), len(columns), 1)
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return nil, errors.NewValueError("dataset.FromColumns", "duplicate column name "+strconv.Quote(n))
		}
		seen[n] = true
	}
	if len(columns) == 0 {
		return nil, errors.NewValidationError(errors.KindNoNumericColumns, 0, "no columns given")
	}
	if len(columns) < 2 {
		return nil, errors.NewValidationError(errors.KindInsufficientColumns, len(columns),
			"need at least one feature column and one target column")
	}
	rows := len(columns[0])
	for j, c := range columns {
		if len(c) != rows {
			return nil, errors.NewDimensionError("dataset.FromColumns", rows, len(c), 0)
		}
		for i, v := range c {
			if math.IsNaN(v) {
				return nil, errors.NewValueError("dataset.FromColumns",
					"missing value in column "+strconv.Quote(names[j])+" row "+strconv.Itoa(i))
			}
		}
	}
	if rows == 0 {
		return nil, errors.NewValidationError(errors.KindEmptyDataset, len(columns), "columns are empty")
	}

	ds := &Dataset{
		names:   append([]string(nil), names...),
		columns: make([][]float64, len(columns)),
		rows:    rows,
	}
	for j, c := range columns {
		ds.columns[j] = append([]float64(nil), c...)
	}
	ds.report = Report{InputRows: rows, Kinds: make(map[string]ColumnKind, len(names))}
	for _, n := range names {
		ds.report.Kinds[n] = Numeric
	}
	return ds, nil
}

// Names returns the column names; the last one is the target.
func (d *Dataset) Names() []string {
	return append([]string(nil), d.names...)
}

// FeatureNames returns every column name but the last.
func (d *Dataset) FeatureNames() []string {
	return append([]string(nil), d.names[:len(d.names)-1]...)
}

// TargetName returns the name of the last column.
func (d *Dataset) TargetName() string {
	return d.names[len(d.names)-1]
}

// NumRows returns the number of rows.
func (d *Dataset) NumRows() int {
	return d.rows
}

// NumColumns returns the number of columns, target included.
func (d *Dataset) NumColumns() int {
	return len(d.columns)
}

// Column returns a copy of column j.
func (d *Dataset) Column(j int) []float64 {
	return append([]float64(nil), d.columns[j]...)
}

// At returns the value at row i, column j.
func (d *Dataset) At(i, j int) float64 {
	return d.columns[j][i]
}

// Report returns what validation removed from the input table.
func (d *Dataset) Report() Report {
	r := d.report
	r.DroppedColumns = append([]string(nil), r.DroppedColumns...)
	return r
}

// XY returns the feature matrix (all columns but the last) and the target
// vector (last column).
func (d *Dataset) XY() (*mat.Dense, *mat.VecDense) {
	p := len(d.columns) - 1
	X := mat.NewDense(d.rows, p, nil)
	for j := 0; j < p; j++ {
		X.SetCol(j, d.columns[j])
	}
	y := mat.NewVecDense(d.rows, d.Column(p))
	return X, y
}

// Table formats the dataset back into a raw Table using the shortest
// representation that parses back to the same float.
func (d *Dataset) Table() *Table {
	rows := make([][]string, d.rows)
	for i := range rows {
		row := make([]string, len(d.columns))
		for j, c := range d.columns {
			row[j] = FormatFloat(c[i])
		}
		rows[i] = row
	}
	return &Table{Columns: d.Names(), Rows: rows}
}

// Fingerprint hashes column names and values. Equal datasets have equal
// fingerprints; it identifies an input in logs and archives.
func (d *Dataset) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, n := range d.names {
		_, _ = h.WriteString(n)
		_, _ = h.Write([]byte{0})
	}
	binary.LittleEndian.PutUint64(buf[:], uint64(d.rows))
	_, _ = h.Write(buf[:])
	for _, c := range d.columns {
		for _, v := range c {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			_, _ = h.Write(buf[:])
		}
	}
	return h.Sum64()
}

// FormatFloat formats v in the shortest form that round-trips, using an
// exponent only for very small or very large magnitudes.
func FormatFloat(v float64) string {
	if a := math.Abs(v); a == 0 || (a >= 1e-4 && a < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
