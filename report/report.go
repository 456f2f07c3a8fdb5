// Package report renders the diagnostic charts of a pipeline run.
package report

import (
	"bytes"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/YuminosukeSato/iziml/pipeline"
	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/YuminosukeSato/iziml/pkg/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

func (f Format) valid() bool {
	return f == PNG || f == SVG
}

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch
)

var partitionColors = map[pipeline.Partition]color.Color{
	pipeline.PartitionTrain: color.RGBA{R: 31, G: 119, B: 180, A: 255},
	pipeline.PartitionTest:  color.RGBA{R: 255, G: 127, B: 14, A: 255},
}

// PredictionScatter plots predicted against actual values, one colour per
// partition, with the y = x reference line.
func PredictionScatter(table *pipeline.PredictionTable, format Format) ([]byte, error) {
	if !format.valid() {
		return nil, errors.NewValueError("report.PredictionScatter", "unsupported format "+string(format))
	}
	if table == nil || table.Len() == 0 {
		return nil, errors.NewValueError("report.PredictionScatter", "no predictions")
	}

	p := plot.New()
	p.Title.Text = "Prediction Results"
	p.X.Label.Text = "actual"
	p.Y.Label.Text = "predicted"
	p.Legend.Top = true
	p.Legend.Left = true

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, part := range []pipeline.Partition{pipeline.PartitionTrain, pipeline.PartitionTest} {
		var xys plotter.XYs
		for _, r := range table.Rows {
			if r.Partition != part {
				continue
			}
			xys = append(xys, plotter.XY{X: r.Actual, Y: r.Predicted})
			lo = min(lo, r.Actual, r.Predicted)
			hi = max(hi, r.Actual, r.Predicted)
		}
		if len(xys) == 0 {
			continue
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, errors.Wrap(err, "report: scatter")
		}
		s.GlyphStyle.Color = partitionColors[part]
		s.GlyphStyle.Radius = vg.Points(3)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(string(part), s)
	}

	ref, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return nil, errors.Wrap(err, "report: reference line")
	}
	ref.LineStyle.Color = color.Gray{Y: 128}
	ref.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(ref, plotter.NewGrid())

	return render(p, format)
}

// FeatureImportance draws a horizontal bar per feature, largest on top.
func FeatureImportance(importances map[string]float64, format Format) ([]byte, error) {
	if !format.valid() {
		return nil, errors.NewValueError("report.FeatureImportance", "unsupported format "+string(format))
	}
	if len(importances) == 0 {
		return nil, errors.NewValueError("report.FeatureImportance", "no importances")
	}

	names := make([]string, 0, len(importances))
	for n := range importances {
		names = append(names, n)
	}
	// ascending so the largest bar ends up at the top; ties by name
	sort.Slice(names, func(i, j int) bool {
		a, b := importances[names[i]], importances[names[j]]
		if a != b {
			return a < b
		}
		return names[i] > names[j]
	})
	values := make(plotter.Values, len(names))
	for i, n := range names {
		values[i] = importances[n]
	}

	p := plot.New()
	p.Title.Text = "Feature Importance"
	p.X.Label.Text = "value"
	p.X.Min = 0

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return nil, errors.Wrap(err, "report: bar chart")
	}
	bars.Horizontal = true
	bars.Color = partitionColors[pipeline.PartitionTrain]
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)

	return render(p, format)
}

func render(p *plot.Plot, format Format) ([]byte, error) {
	w, err := p.WriterTo(width, height, string(format))
	if err != nil {
		return nil, errors.Wrap(err, "report: create canvas")
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "report: encode")
	}
	return buf.Bytes(), nil
}

// WriteFiles renders the charts of res into dir and returns the written
// paths. The importance chart is skipped for estimators without importances.
func WriteFiles(dir string, res *pipeline.Result, format Format) ([]string, error) {
	logger := log.GetLoggerWithName("report").With(log.OperationKey, log.OperationRender)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "report: create %s", dir)
	}

	type chart struct {
		name   string
		render func() ([]byte, error)
	}
	charts := []chart{
		{"predictions", func() ([]byte, error) { return PredictionScatter(res.Predictions, format) }},
	}
	if len(res.Importances) > 0 {
		charts = append(charts, chart{"feature_importance", func() ([]byte, error) {
			return FeatureImportance(res.Importances, format)
		}})
	}

	var paths []string
	for _, c := range charts {
		data, err := c.render()
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, c.name+"."+string(format))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, errors.Wrapf(err, "report: write %s", path)
		}
		logger.Debug("Chart written", "path", path, log.DataSizeKey, len(data))
		paths = append(paths, path)
	}
	return paths, nil
}
