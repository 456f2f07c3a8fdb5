package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/iziml/artifact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Usage(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, &out, &errOut))
	assert.Contains(t, errOut.String(), "usage: iziml")

	errOut.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"fit"}, &out, &errOut))
	assert.Contains(t, errOut.String(), `unknown command "fit"`)
}

func TestRun_TrainFromFile(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data.csv")

	var csv, errOut bytes.Buffer
	require.Equal(t, 0, run(context.Background(), []string{"example", "--rows", "60"}, &csv, &errOut), errOut.String())
	require.NoError(t, os.WriteFile(data, csv.Bytes(), 0o644))

	archive := filepath.Join(dir, "out.zip")
	plots := filepath.Join(dir, "plots")
	var out bytes.Buffer
	code := run(context.Background(), []string{
		"train", "--data", data, "--trees", "10", "--oob-score",
		"--out", archive, "--plots", plots, "--plot-format", "svg",
	}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	text := out.String()
	assert.Contains(t, text, "No. of samples")
	assert.Contains(t, text, "Random Forest")
	assert.Contains(t, text, "Out-of-bag R2")
	assert.Contains(t, text, "MolLogP")

	raw, err := os.ReadFile(archive)
	require.NoError(t, err)
	b, err := artifact.Unpack(raw)
	require.NoError(t, err)
	assert.Equal(t, artifact.Members, b.Names())

	entries, err := os.ReadDir(plots)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRun_TrainLinearExample(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"train", "--example", "--algorithm", "linear"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "Linear Regression")
	assert.Contains(t, out.String(), "Test RMSE")
	assert.NotContains(t, out.String(), "Out-of-bag")
}

func TestRun_TrainCloudLogFormat(t *testing.T) {
	prevDefault := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prevDefault) })

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{
		"train", "--example", "--algorithm", "linear", "--log-format", "cloud", "--log-level", "info",
	}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, errOut.String(), `"severity":"INFO"`)
	assert.Contains(t, errOut.String(), "Run completed")

	errOut.Reset()
	code = run(context.Background(), []string{"train", "--example", "--log-format", "xml"}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "log-format")
}

func TestRun_TrainErrors(t *testing.T) {
	dir := t.TempDir()
	textOnly := filepath.Join(dir, "text.csv")
	require.NoError(t, os.WriteFile(textOnly, []byte("a,b\nx,y\nz,w\n"), 0o644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", []string{"train"}, "--data or --example"},
		{"no numeric columns", []string{"train", "--data", textOnly}, "does not contain numeric data"},
		{"bad split ratio", []string{"train", "--example", "--split-ratio", "95"}, "split"},
		{"bad delimiter", []string{"train", "--data", textOnly, "--delimiter", ";;"}, "delimiter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := run(context.Background(), tt.args, &out, &errOut)
			assert.Equal(t, 1, code)
			assert.Contains(t, strings.ToLower(errOut.String()), tt.want)
		})
	}
}
