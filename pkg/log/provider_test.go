package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	izierrors "github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestZerologProvider_StructuredFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelDebug)

	logger := p.GetLoggerWithName("pipeline").With(RunIDKey, "run-1")
	logger.Info("Training started",
		OperationKey, OperationFit,
		SamplesKey, 80,
		FeaturesKey, 3,
	)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "info", e["level"])
	assert.Equal(t, "Training started", e["message"])
	assert.Equal(t, "pipeline", e[ComponentKey])
	assert.Equal(t, "run-1", e[RunIDKey])
	assert.Equal(t, OperationFit, e[OperationKey])
	assert.Equal(t, 80.0, e[SamplesKey])
}

func TestZerologProvider_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelWarn)
	logger := p.GetLogger()

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	assert.False(t, logger.Enabled(context.Background(), LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), LevelError))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["message"])

	p.SetLevel(LevelDebug)
	p.GetLogger().Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestZerologProvider_ErrorWithStack(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelDebug)

	err := izierrors.NewInvalidConfigError("treeCount", "must be in [10, 1000]", 0)
	p.GetLogger().Error("Run failed", err, ErrorCodeKey, ErrorInvalidConfig)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Contains(t, e[ErrAttrKey], "InvalidConfig")
	assert.Equal(t, ErrorInvalidConfig, e[ErrorCodeKey])
	assert.NotEmpty(t, e[StacktraceAttrKey])
	detail, ok := e["error.detail"].(map[string]interface{})
	require.True(t, ok, "expected structured error detail")
	assert.Equal(t, "treeCount", detail["field"])
}

func TestZerologProvider_InstallWarnings(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelDebug)
	p.InstallWarnings()
	defer izierrors.SetZerologWarnFunc(nil)

	izierrors.Warn(izierrors.NewUndefinedMetricWarning("r2", "constant target", 0))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "UndefinedMetricWarning", entries[0]["type"])
}

func TestGlobalProvider(t *testing.T) {
	old := GetProvider()
	defer SetProvider(old)

	tp, buf := NewTestLoggerProvider(LevelDebug)
	SetProvider(tp)
	GetLoggerWithName("dataset").Info("validated", SamplesKey, 10)

	assert.Contains(t, buf.String(), "validated")
	assert.Contains(t, buf.String(), "dataset")
}

func TestTestLogger_ErrorField(t *testing.T) {
	tl, _ := NewTestLogger(LevelDebug)
	tl.Error("fit failed", izierrors.New("singular"), OperationKey, OperationFit)

	assert.True(t, tl.ContainsField(ErrAttrKey, "singular"))
	assert.True(t, tl.ContainsField(OperationKey, OperationFit))
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToLogLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrFmtHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapByErrFmtHandler(slog.NewJSONHandler(&buf, nil)))

	logger.Error("failed", ErrAttr(izierrors.NewFitError("LinearRegression", izierrors.ErrSingularMatrix)))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0][StacktraceAttrKey])
	assert.Equal(t, string(izierrors.KindFitError), entries[0][ErrorTypeKey])

	buf.Reset()
	logger.Info("no error here", SamplesKey, 3)
	entries = decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], StacktraceAttrKey)
	assert.NotContains(t, entries[0], ErrorTypeKey)
}

func TestTestLoggerProvider_LevelAndReset(t *testing.T) {
	p, buf := NewTestLoggerProvider(LevelDebug)
	l := p.GetLoggerWithName("ensemble.forest").With(TreeCountKey, 10)
	l.Debug("Training RandomForestRegressor")

	tl := p.Logger()
	require.Len(t, tl.Entries(), 1)
	assert.True(t, tl.ContainsField(ComponentKey, "ensemble.forest"))
	assert.True(t, tl.ContainsField(TreeCountKey, 10.0))
	assert.True(t, tl.ContainsMessage("RandomForest"))

	p.SetLevel(LevelWarn)
	l.Info("dropped")
	assert.False(t, tl.ContainsMessage("dropped"))
	assert.False(t, l.Enabled(context.Background(), LevelInfo))

	tl.Reset()
	assert.Empty(t, tl.Entries())
	assert.Zero(t, buf.Len())
}

func TestSetupLogger(t *testing.T) {
	prev := GetProvider()
	prevDefault := slog.Default()
	t.Cleanup(func() {
		SetProvider(prev)
		slog.SetDefault(prevDefault)
		izierrors.SetWarningHandler(func(error) {})
	})

	var buf bytes.Buffer
	p, err := SetupLogger(&buf, "info")
	require.NoError(t, err)
	assert.Same(t, p, GetProvider())

	logger := GetLoggerWithName("pipeline")
	logger.Debug("hidden")
	logger.Info("Run completed", SamplesKey, 100)
	logger.Error("Run failed", izierrors.NewFitError("LinearRegression", izierrors.ErrSingularMatrix), PhaseKey, PhaseTraining)
	izierrors.Warn(izierrors.NewUndefinedMetricWarning("R2Score", "constant yTrue", 0))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 3)

	assert.Equal(t, "INFO", entries[0]["severity"])
	assert.Equal(t, "Run completed", entries[0]["message"])
	assert.Equal(t, "pipeline", entries[0][ComponentKey])
	assert.Equal(t, 100.0, entries[0][SamplesKey])

	assert.Equal(t, "ERROR", entries[1]["severity"])
	assert.NotEmpty(t, entries[1][StacktraceAttrKey])
	assert.Equal(t, string(izierrors.KindFitError), entries[1][ErrorTypeKey])
	assert.Equal(t, PhaseTraining, entries[1][PhaseKey])

	assert.Equal(t, "WARN", entries[2]["severity"])
	assert.Equal(t, "UndefinedMetricWarning", entries[2][ErrorTypeKey])

	p.SetLevel(LevelDebug)
	buf.Reset()
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")

	_, err = SetupLogger(&buf, "loud")
	assert.Error(t, err)
}
