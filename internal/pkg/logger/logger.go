package logger

import (
	"io"
	"log/slog"
	"sort"
)

// SlogLogger implements ports.Logger on top of log/slog.
type SlogLogger struct {
	log *slog.Logger
}

// New creates a text logger. Verbose loggers emit debug and info lines;
// otherwise only warnings and errors are written.
func New(w io.Writer, verbose bool) *SlogLogger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &SlogLogger{log: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))}
}

// FromSlog wraps an existing slog logger.
func FromSlog(l *slog.Logger) *SlogLogger {
	return &SlogLogger{log: l}
}

// Nop discards everything.
func Nop() *SlogLogger {
	return New(io.Discard, false)
}

func (l *SlogLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.Debug(msg, attrs(fields)...)
}

func (l *SlogLogger) Info(msg string, fields map[string]interface{}) {
	l.log.Info(msg, attrs(fields)...)
}

func (l *SlogLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.Warn(msg, attrs(fields)...)
}

func (l *SlogLogger) Error(msg string, err error, fields map[string]interface{}) {
	args := attrs(fields)
	if err != nil {
		args = append(args, slog.String("error", Mask(err.Error())))
	}
	l.log.Error(msg, args...)
}

func attrs(fields map[string]interface{}) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		v := fields[k]
		if s, ok := v.(string); ok {
			v = Mask(s)
		}
		out = append(out, slog.Any(k, v))
	}
	return out
}
