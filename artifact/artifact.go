// Package artifact packages a dataset and its train/test partitions into a
// downloadable zip archive.
package artifact

import (
	"bytes"
	"encoding/csv"
	"io"
	"time"

	"github.com/YuminosukeSato/iziml/dataset"
	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/YuminosukeSato/iziml/pkg/log"
	"github.com/YuminosukeSato/iziml/sklearn/model_selection"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"gonum.org/v1/gonum/mat"
)

// Archive member names, in archive order.
const (
	DatasetMember = "dataset.csv"
	XTrainMember  = "X_train.csv"
	YTrainMember  = "y_train.csv"
	XTestMember   = "X_test.csv"
	YTestMember   = "y_test.csv"
)

// Members lists the archive members in the order they are written.
var Members = []string{DatasetMember, XTrainMember, YTrainMember, XTestMember, YTestMember}

// modTime is stamped on every member so equal inputs give equal bytes.
var modTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

type options struct {
	level int
}

// Option configures Package.
type Option func(*options)

// WithCompressionLevel sets the deflate level (flate.BestSpeed to
// flate.BestCompression). Defaults to flate.DefaultCompression.
func WithCompressionLevel(level int) Option {
	return func(o *options) { o.level = level }
}

// Package serialises the dataset and the four partitions as CSV and returns
// the deflate-compressed zip archive.
func Package(ds *dataset.Dataset, split *model_selection.SplitResult, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, ds, split, opts...); err != nil {
		return nil, err
	}
	log.GetLoggerWithName("artifact").Debug("Archive built",
		log.OperationKey, log.OperationPackage,
		log.DataSizeKey, buf.Len(),
	)
	return buf.Bytes(), nil
}

// Write streams the archive built by Package to w.
func Write(w io.Writer, ds *dataset.Dataset, split *model_selection.SplitResult, opts ...Option) error {
	o := options{level: flate.DefaultCompression}
	for _, opt := range opts {
		opt(&o)
	}
	if o.level < flate.HuffmanOnly || o.level > flate.BestCompression {
		return errors.NewValueError("artifact.Write", "compression level out of range")
	}
	if ds == nil || split == nil {
		return errors.NewValueError("artifact.Write", "dataset and split are required")
	}

	members := []struct {
		name  string
		write func(*csv.Writer) error
	}{
		{DatasetMember, func(cw *csv.Writer) error { return writeTable(cw, ds.Table()) }},
		{XTrainMember, func(cw *csv.Writer) error { return writeMatrix(cw, split.FeatureNames, split.XTrain) }},
		{YTrainMember, func(cw *csv.Writer) error { return writeMatrix(cw, []string{split.TargetName}, split.YTrain) }},
		{XTestMember, func(cw *csv.Writer) error { return writeMatrix(cw, split.FeatureNames, split.XTest) }},
		{YTestMember, func(cw *csv.Writer) error { return writeMatrix(cw, []string{split.TargetName}, split.YTest) }},
	}

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, o.level)
	})
	for _, m := range members {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     m.name,
			Method:   zip.Deflate,
			Modified: modTime,
		})
		if err != nil {
			return errors.Wrapf(err, "artifact: create %s", m.name)
		}
		cw := csv.NewWriter(fw)
		if err := m.write(cw); err != nil {
			return errors.Wrapf(err, "artifact: write %s", m.name)
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return errors.Wrapf(err, "artifact: write %s", m.name)
		}
	}
	return errors.Wrap(zw.Close(), "artifact: close archive")
}

func writeTable(cw *csv.Writer, t *dataset.Table) error {
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	return cw.WriteAll(t.Rows)
}

func writeMatrix(cw *csv.Writer, header []string, m mat.Matrix) error {
	if err := cw.Write(header); err != nil {
		return err
	}
	r, c := m.Dims()
	row := make([]string, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			row[j] = dataset.FormatFloat(m.At(i, j))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
