// Package dataset turns raw delimited text into validated numeric datasets.
package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/iziml/pkg/errors"
)

// missingTokens are the cell values treated as missing, besides the empty
// cell. Same set as pandas' default na_values.
var missingTokens = map[string]struct{}{
	"NA":       {},
	"<NA>":     {},
	"N/A":      {},
	"n/a":      {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"NaN":      {},
	"-NaN":     {},
	"nan":      {},
	"-nan":     {},
	"null":     {},
	"NULL":     {},
	"None":     {},
	"-1.#IND":  {},
	"1.#IND":   {},
	"-1.#QNAN": {},
	"1.#QNAN":  {},
}

// IsMissing reports whether a raw cell counts as a missing value. Any
// spelling that parses to NaN is missing too.
func IsMissing(cell string) bool {
	s := strings.TrimSpace(cell)
	if s == "" {
		return true
	}
	if _, ok := missingTokens[s]; ok {
		return true
	}
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && math.IsNaN(v)
}

// Table is a raw input table: ordered column names and rows of string cells.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable checks that every row matches the header width.
func NewTable(columns []string, rows [][]string) (*Table, error) {
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, errors.NewValueError("dataset.NewTable",
				"row "+strconv.Itoa(i)+" has "+strconv.Itoa(len(r))+" cells, expected "+strconv.Itoa(len(columns)))
		}
	}
	return &Table{Columns: columns, Rows: rows}, nil
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// ReadOptions controls ReadCSV.
type ReadOptions struct {
	// Comma is the field delimiter. Defaults to ','.
	Comma rune
	// Comment, if set, marks lines to skip.
	Comment rune
}

// ReadOption configures ReadOptions.
type ReadOption func(*ReadOptions)

// WithComma sets the field delimiter, e.g. ';' or '\t'.
func WithComma(r rune) ReadOption {
	return func(o *ReadOptions) { o.Comma = r }
}

// WithComment sets the comment character.
func WithComment(r rune) ReadOption {
	return func(o *ReadOptions) { o.Comment = r }
}

// ReadCSV parses delimited text with a header row into a Table.
// Blank header names become "Unnamed: <i>" and repeated names get a ".<n>"
// suffix, so every column name is unique.
func ReadCSV(r io.Reader, options ...ReadOption) (*Table, error) {
	opts := ReadOptions{Comma: ','}
	for _, opt := range options {
		opt(&opts)
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.Comment = opts.Comment

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewValueError("dataset.ReadCSV", "no header row")
	}
	if err != nil {
		return nil, errors.Wrap(err, "dataset.ReadCSV: header")
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "dataset.ReadCSV")
	}
	return &Table{Columns: uniqueNames(header), Rows: rows}, nil
}

// WriteCSV writes t with its header row as comma-separated text.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return errors.Wrap(err, "dataset.WriteCSV")
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return errors.Wrap(err, "dataset.WriteCSV")
	}
	return nil
}

func uniqueNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	suffix := make(map[string]int)
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for used[name] {
			suffix[h]++
			name = h + "." + strconv.Itoa(suffix[h])
		}
		used[name] = true
		names[i] = name
	}
	return names
}
