package salh

import (
	"context"
	"io"
	"log"
	"os"
)

// Logger is the leveled logging surface used throughout salh. It is
// deliberately small so that a stdlib logger, a logrus entry or a test
// recorder can all satisfy it with a thin adapter.
type Logger interface {
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})
	Fatalf(string, ...interface{})
}

// NopLogger discards everything except Fatalf, which still exits.
var NopLogger Logger = &goLogger{l: log.New(io.Discard, "", 0)}

// GoLog creates a logger backed by the stdlib log package.
// A nil writer logs to stderr.
func GoLog(w io.Writer, prefix string, flags int) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &goLogger{l: log.New(w, prefix, flags)}
}

type goLogger struct {
	l *log.Logger
}

func (g *goLogger) Debugf(format string, args ...interface{}) {
	g.l.Printf("[DEBUG] "+format, args...)
}

func (g *goLogger) Infof(format string, args ...interface{}) {
	g.l.Printf("[INFO]  "+format, args...)
}

func (g *goLogger) Warnf(format string, args ...interface{}) {
	g.l.Printf("[WARN]  "+format, args...)
}

func (g *goLogger) Errorf(format string, args ...interface{}) {
	g.l.Printf("[ERROR] "+format, args...)
}

func (g *goLogger) Fatalf(format string, args ...interface{}) {
	g.l.Fatalf("[FATAL] "+format, args...)
}

type logKey uint8

const loggerKey logKey = iota

// SetLogger on the context for usage in steps
func SetLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// ContextLogger gets the logger from the context, NopLogger when absent
func ContextLogger(ctx context.Context) Logger {
	logger, ok := ctx.Value(loggerKey).(Logger)
	if !ok {
		return NopLogger
	}
	return logger
}
