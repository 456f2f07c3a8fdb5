package log

import (
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
)

// NewCloudHandler returns a slog JSON handler using Cloud Logging field
// names ("severity", "message") whose error records carry stack traces and
// error kinds (see ErrFmtHandler).
func NewCloudHandler(w io.Writer, level slog.Leveler) slog.Handler {
	ops := slog.HandlerOptions{
		Level: level,
		// Replace attributes to convert to CloudLogging format.
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return attr
			}
			switch attr.Key {
			case slog.LevelKey:
				attr = slog.Attr{Key: "severity", Value: attr.Value}
			case slog.MessageKey:
				attr = slog.Attr{Key: "message", Value: attr.Value}
			}
			return attr
		},
	}
	return WrapByErrFmtHandler(slog.NewJSONHandler(w, &ops))
}

// SetupLogger switches the process to log/slog: the slog default logger and
// the package provider both write Cloud Logging JSON to w, and pkg/errors
// warnings are logged at warn level.
func SetupLogger(w io.Writer, loglevel string) (*SlogProvider, error) {
	level, err := ToLogLevel(loglevel)
	if err != nil {
		return nil, err
	}
	lv := new(slog.LevelVar)
	lv.Set(level)
	logger := slog.New(NewCloudHandler(w, lv))
	slog.SetDefault(logger)

	p := NewSlogProvider(logger, lv)
	SetProvider(p)
	p.InstallWarnings()
	return p, nil
}

// ToLogLevel parses a textual level ("debug", "info", "warn", "error").
func ToLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errors.Newf("invalid log level: %s", level)
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
