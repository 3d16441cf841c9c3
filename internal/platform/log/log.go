// Package log provides named, structured loggers for every component of the
// acquisition, sync, and classification engines, built on zerolog so a long
// unattended worker or daemon run produces leveled, parseable output instead
// of the ad hoc fmt.Printf lines common in one-shot scripts.
package log

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// Logger wraps a zerolog.Logger with a component name and the
// (msg, key, value, key, value, ...) calling convention the rest of the
// engine uses, rather than zerolog's native chained-builder API.
type Logger struct {
	zl   zerolog.Logger
	name string
}

// Config controls how a component logger is constructed.
type Config struct {
	Name   string
	Level  string // trace|debug|info|warn|error|fatal
	Format string // "json" or "text", default "text"
}

// New creates a component logger with default (text, info) settings.
func New(name string) *Logger {
	return NewWithConfig(Config{Name: name, Level: "info"})
}

// NewWithConfig creates a component logger with explicit level/format.
func NewWithConfig(cfg Config) *Logger {
	var writer interface{ Write([]byte) (int, error) } = os.Stdout
	if cfg.Format != "json" {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}

	zl := zerolog.New(writer).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("component", cfg.Name).
		Logger()

	return &Logger{zl: zl, name: cfg.Name}
}

// With returns a logger scoped to a child operation, e.g.
// log.New("acquisition").With("phase1").Info("starting", "month", "2024-11")
func (l *Logger) With(child string) *Logger {
	name := l.name + "." + child
	return &Logger{zl: l.zl.With().Str("component", name).Logger(), name: name}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { logWith(l.zl.Debug(), msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { logWith(l.zl.Info(), msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { logWith(l.zl.Warn(), msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { logWith(l.zl.Error(), msg, kv...) }

// logWith attaches each (key, value) pair from kv to event before emitting
// msg. Odd-length kv sequences drop the dangling key rather than panicking,
// since a caller's logging mistake should never crash a long scrape run.
func logWith(event *zerolog.Event, msg string, kv ...interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		event = event.Interface(key, kv[i+1])
	}
	event.Msg(msg)
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
