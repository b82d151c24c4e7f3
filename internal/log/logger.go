package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// LogFormatPlain is a human readable, colorless console format.
	LogFormatPlain = "plain"
	// LogFormatJSON emits one JSON object per line.
	LogFormatJSON = "json"

	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelError = "error"
)

// Logger is what every logfilter component takes.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})

	With(keyvals ...interface{}) Logger
}

type defaultLogger struct {
	zerolog.Logger
}

var _ Logger = (*defaultLogger)(nil)

// NewDefaultLogger returns a logger writing to stderr.
func NewDefaultLogger(format, level string) (Logger, error) {
	return NewLogger(os.Stderr, format, level)
}

// NewLogger returns a logger writing to w in the given format, filtering
// messages below level.
func NewLogger(w io.Writer, format, level string) (Logger, error) {
	switch strings.ToLower(format) {
	case LogFormatPlain, "text":
		w = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    true,
			TimeFormat: time.RFC3339,
		}
	case LogFormatJSON:
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}

	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	return &defaultLogger{
		Logger: zerolog.New(w).Level(lvl).With().Timestamp().Logger(),
	}, nil
}

func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case LogLevelDebug:
		return zerolog.DebugLevel, nil
	case LogLevelInfo, "":
		return zerolog.InfoLevel, nil
	case LogLevelError:
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unsupported log level: %s", level)
	}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return &defaultLogger{Logger: zerolog.Nop()}
}

func (l defaultLogger) Info(msg string, keyvals ...interface{}) {
	l.Logger.Info().Fields(getLogFields(keyvals...)).Msg(msg)
}

func (l defaultLogger) Error(msg string, keyvals ...interface{}) {
	l.Logger.Error().Fields(getLogFields(keyvals...)).Msg(msg)
}

func (l defaultLogger) Debug(msg string, keyvals ...interface{}) {
	l.Logger.Debug().Fields(getLogFields(keyvals...)).Msg(msg)
}

func (l defaultLogger) With(keyvals ...interface{}) Logger {
	return &defaultLogger{
		Logger: l.Logger.With().Fields(getLogFields(keyvals...)).Logger(),
	}
}

// getLogFields turns alternating keys and values into a field map. A dangling
// key gets a nil value.
func getLogFields(keyvals ...interface{}) map[string]interface{} {
	if len(keyvals) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, (len(keyvals)+1)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if i+1 < len(keyvals) {
			fields[key] = keyvals[i+1]
		} else {
			fields[key] = nil
		}
	}
	return fields
}
