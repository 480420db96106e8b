// Package log provides category-based structured logging for sakuga.
// Logging is off unless Init or SetOutput is called, which the CLI does for
// --debug or SAKUGA_DEBUG.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatConfig  Category = "config"  // Configuration loading/saving
	CatMeasure Category = "measure" // Tokenizing and measuring code blocks
	CatRender  Category = "render"  // Frame generation and painting
	CatEncode  Category = "encode"  // ffmpeg and image sinks
	CatSource  Category = "source"  // Markdown and storyboard parsing
	CatGit     Category = "git"     // Git history extraction
	CatWatch   Category = "watch"   // File watcher events
	CatCache   Category = "cache"   // Glyph width cache
	CatTrace   Category = "trace"   // Tracing setup
	CatUI      Category = "ui"      // Terminal progress view
)

// Logger writes formatted entries to a writer.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	enabled  bool
	minLevel Level
}

var current atomic.Pointer[Logger]

// Init opens path for appending and installs it as the global log output.
// The returned cleanup closes the file and restores the previous output.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: path is user-controlled debug log path
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	l := &Logger{writer: f, enabled: true, minLevel: LevelDebug}
	prev := current.Swap(l)
	return func() {
		current.CompareAndSwap(l, prev)
		_ = f.Close()
	}, nil
}

// SetOutput installs w as the global log output and returns a func that
// restores the previous one.
func SetOutput(w io.Writer, minLevel Level) func() {
	l := &Logger{writer: w, enabled: true, minLevel: minLevel}
	prev := current.Swap(l)
	return func() { current.CompareAndSwap(l, prev) }
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current.Load(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current.Load(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Enabled reports whether an entry at level would be written. Use it to skip
// building expensive fields.
func Enabled(level Level) bool {
	l := current.Load()
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled && level >= l.minLevel
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

// Elapsed logs msg at debug level with the time since start rounded to the
// millisecond.
func Elapsed(cat Category, msg string, start time.Time, fields ...any) {
	fields = append(fields, "elapsed", time.Since(start).Round(time.Millisecond))
	log(LevelDebug, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := current.Load()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel || l.writer == nil {
		return
	}

	_, _ = io.WriteString(l.writer, format(time.Now(), level, cat, msg, fields...))
}

// format renders one entry:
// 2026-01-02T10:45:00 [ERROR] [encode] message key=value key2=value2
func format(now time.Time, level Level, cat Category, msg string, fields ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", now.Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	// Odd field count: orphan key with no value
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	return b.String()
}
