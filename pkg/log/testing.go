package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// recorder is shared by a TestLogger and every logger derived from it with
// With, so one buffer sees the whole run.
type recorder struct {
	mu      sync.Mutex
	level   Level
	buffer  *bytes.Buffer
	entries []map[string]any
}

// TestLogger captures log records as JSON lines for assertions in tests.
type TestLogger struct {
	rec    *recorder
	fields []any
}

// NewTestLogger returns a logger recording everything at or above level,
// and the buffer receiving one JSON object per record.
//
//	logger, buf := log.NewTestLogger(log.LevelDebug)
//	logger.Info("Dataset validated", log.SamplesKey, 100)
//	// buf.String() == `{"data.samples":100,"level":"INFO","message":"Dataset validated"}` + "\n"
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &TestLogger{rec: &recorder{level: level, buffer: buf}}, buf
}

func (t *TestLogger) Debug(msg string, fields ...any) { t.write(LevelDebug, msg, fields) }
func (t *TestLogger) Info(msg string, fields ...any)  { t.write(LevelInfo, msg, fields) }
func (t *TestLogger) Warn(msg string, fields ...any)  { t.write(LevelWarn, msg, fields) }

// Error records msg. A leading error argument is recorded under ErrAttrKey.
func (t *TestLogger) Error(msg string, fields ...any) {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{ErrAttrKey, err}, fields[1:]...)
		}
	}
	t.write(LevelError, msg, fields)
}

// With returns a logger that adds fields to every record.
func (t *TestLogger) With(fields ...any) Logger {
	merged := make([]any, 0, len(t.fields)+len(fields))
	merged = append(merged, t.fields...)
	merged = append(merged, fields...)
	return &TestLogger{rec: t.rec, fields: merged}
}

// Enabled reports whether level would be recorded.
func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	t.rec.mu.Lock()
	defer t.rec.mu.Unlock()
	return level >= t.rec.level
}

func (t *TestLogger) write(level Level, msg string, fields []any) {
	if !t.Enabled(context.Background(), level) {
		return
	}
	entry := map[string]any{"level": level.String(), "message": msg}
	addFields(entry, t.fields)
	addFields(entry, fields)

	line, err := json.Marshal(entry)
	if err != nil {
		line, _ = json.Marshal(map[string]any{"level": level.String(), "message": msg, "marshal_error": err.Error()})
	}
	// decode again so numbers compare the way they read in the buffer
	var decoded map[string]any
	_ = json.Unmarshal(line, &decoded)

	t.rec.mu.Lock()
	defer t.rec.mu.Unlock()
	t.rec.buffer.Write(line)
	t.rec.buffer.WriteByte('\n')
	t.rec.entries = append(t.rec.entries, decoded)
}

func addFields(entry map[string]any, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			entry[key] = v.Error()
		case fmt.Stringer:
			entry[key] = v.String()
		default:
			entry[key] = v
		}
	}
}

// Entries returns the decoded records in order.
func (t *TestLogger) Entries() []map[string]any {
	t.rec.mu.Lock()
	defer t.rec.mu.Unlock()
	out := make([]map[string]any, len(t.rec.entries))
	copy(out, t.rec.entries)
	return out
}

// ContainsMessage reports whether any record's message contains message.
func (t *TestLogger) ContainsMessage(message string) bool {
	for _, e := range t.Entries() {
		if m, _ := e["message"].(string); strings.Contains(m, message) {
			return true
		}
	}
	return false
}

// ContainsField reports whether any record has key set to value. Numeric
// values are compared after a JSON round trip, so pass float64.
func (t *TestLogger) ContainsField(key string, value any) bool {
	for _, e := range t.Entries() {
		if v, ok := e[key]; ok && v == value {
			return true
		}
	}
	return false
}

// Reset drops every captured record.
func (t *TestLogger) Reset() {
	t.rec.mu.Lock()
	defer t.rec.mu.Unlock()
	t.rec.buffer.Reset()
	t.rec.entries = nil
}

// TestLoggerProvider hands out TestLoggers sharing one recorder.
type TestLoggerProvider struct {
	logger *TestLogger
}

// NewTestLoggerProvider returns a provider for SetProvider in tests and the
// buffer that receives every record.
func NewTestLoggerProvider(level Level) (*TestLoggerProvider, *bytes.Buffer) {
	logger, buf := NewTestLogger(level)
	return &TestLoggerProvider{logger: logger}, buf
}

func (p *TestLoggerProvider) GetLogger() Logger { return p.logger }

func (p *TestLoggerProvider) GetLoggerWithName(name string) Logger {
	return p.logger.With(ComponentKey, name)
}

func (p *TestLoggerProvider) SetLevel(level Level) {
	p.logger.rec.mu.Lock()
	defer p.logger.rec.mu.Unlock()
	p.logger.rec.level = level
}

// Logger returns the root TestLogger for assertions.
func (p *TestLoggerProvider) Logger() *TestLogger { return p.logger }
