package loomlog

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/loomworks/loomlog/pkg/types"
)

// Logger is a lightweight logging front-end bound to a category. It consults
// the process-wide callback slot on every call, so loggers can be created
// freely and kept in package variables; while no handlers are active every
// call is a cheap no-op.
type Logger struct {
	category string
	caller   bool
}

// NewLogger creates a logger for the given dot-separated category, for
// example "app" or "app.network".
func NewLogger(category string) *Logger {
	return &Logger{category: category}
}

// WithCaller returns a copy of the logger that records the calling file,
// line and function in each record's attributes.
func (l *Logger) WithCaller() *Logger {
	c := *l
	c.caller = true
	return &c
}

// Category returns the logger's category.
func (l *Logger) Category() string {
	return l.category
}

// Enabled reports whether a record of the given level would currently be
// accepted by any active handler.
func (l *Logger) Enabled(level types.Level) bool {
	cb := installed()
	return cb != nil && cb.Enabled(level, l.category)
}

// Log dispatches a message at the given level.
func (l *Logger) Log(level types.Level, msg string) {
	l.log(level, msg, types.Attributes{})
}

// Logf dispatches a formatted message at the given level.
func (l *Logger) Logf(level types.Level, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	l.log(level, fmt.Sprintf(format, args...), types.Attributes{})
}

// LogAttr dispatches a message with additional attributes, such as an error
// code or details string, attached by the call site.
func (l *Logger) LogAttr(level types.Level, msg string, attr types.Attributes) {
	l.log(level, msg, attr)
}

// Write dispatches raw output at the given level, bypassing formatting.
func (l *Logger) Write(level types.Level, data []byte) {
	cb := installed()
	if cb == nil || !cb.Enabled(level, l.category) {
		return
	}
	cb.Write(data, level, l.category)
}

// Trace logs a message at trace level.
func (l *Logger) Trace(msg string) { l.Log(types.LevelTrace, msg) }

// Tracef logs a formatted message at trace level.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.Logf(types.LevelTrace, format, args...)
}

// Info logs a message at info level.
func (l *Logger) Info(msg string) { l.Log(types.LevelInfo, msg) }

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Logf(types.LevelInfo, format, args...)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(msg string) { l.Log(types.LevelWarn, msg) }

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Logf(types.LevelWarn, format, args...)
}

// Error logs a message at error level.
func (l *Logger) Error(msg string) { l.Log(types.LevelError, msg) }

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Logf(types.LevelError, format, args...)
}

func (l *Logger) log(level types.Level, msg string, attr types.Attributes) {
	cb := installed()
	if cb == nil || !cb.Enabled(level, l.category) {
		return
	}
	if attr.Time.IsZero() {
		attr.Time = time.Now()
	}
	if l.caller && attr.File == "" {
		attr.File, attr.Line, attr.Function = callerAttributes()
	}
	cb.Message(msg, level, l.category, attr)
}

// callerAttributes resolves the first call site outside the Logger. The
// file is reduced to its base name and the function to its bare name without
// the package path.
func callerAttributes() (file string, line int, function string) {
	var pcs [8]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.Function, "loomlog.(*Logger)") {
			return baseName(frame.File), frame.Line, funcName(frame.Function)
		}
		if !more {
			return "", 0, ""
		}
	}
}

// baseName strips the directory part of a path.
func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// funcName strips the package qualifier from a fully qualified function
// name, e.g. "github.com/x/y.(*T).Method" becomes "(*T).Method".
func funcName(name string) string {
	name = baseName(name)
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
