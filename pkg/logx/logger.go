package logx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// OutputFormat selects how log lines are rendered
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
)

// Logger is a leveled logger writing to a single output
type Logger struct {
	level      Level
	format     OutputFormat
	out        io.Writer
	color      bool
	showCaller bool
}

// Options configures a Logger
type Options struct {
	Level      Level
	Format     OutputFormat
	Output     io.Writer
	Color      bool
	ShowCaller bool
}

// NewLogger creates a Logger from options
func NewLogger(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.Format == "" {
		opts.Format = FormatConsole
	}
	return &Logger{
		level:      opts.Level,
		format:     opts.Format,
		out:        opts.Output,
		color:      opts.Color,
		showCaller: opts.ShowCaller,
	}
}

// SetLevel changes the minimum level the logger emits
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

func (l *Logger) log(level Level, msg string, args ...any) {
	if level < l.level {
		return
	}

	now := time.Now().Format(time.RFC3339)
	caller := ""
	if l.showCaller {
		caller = findCaller()
	}

	switch l.format {
	case FormatJSON:
		entry := map[string]any{
			"time":    now,
			"level":   level.String(),
			"message": msg,
		}
		if caller != "" {
			entry["caller"] = caller
		}
		for i := 0; i+1 < len(args); i += 2 {
			key, ok := args[i].(string)
			if !ok {
				key = fmt.Sprint(args[i])
			}
			entry[key] = args[i+1]
		}
		data, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(l.out, "%s %s %s\n", now, level.String(), msg)
			return
		}
		fmt.Fprintln(l.out, string(data))
	default:
		var b strings.Builder
		b.WriteString(now)
		b.WriteString(" ")
		if l.color {
			b.WriteString(colorize(level))
		} else {
			b.WriteString(fmt.Sprintf("%-5s", level.String()))
		}
		if caller != "" {
			b.WriteString(" ")
			b.WriteString(caller)
		}
		b.WriteString(" ")
		b.WriteString(msg)
		for i := 0; i+1 < len(args); i += 2 {
			b.WriteString(fmt.Sprintf(" %v=%v", args[i], args[i+1]))
		}
		fmt.Fprintln(l.out, b.String())
	}

	if level == LevelFatal {
		os.Exit(1)
	}
}

func colorize(level Level) string {
	var code string
	switch level {
	case LevelTrace, LevelDebug:
		code = "36" // cyan
	case LevelInfo:
		code = "32" // green
	case LevelWarn:
		code = "33" // yellow
	case LevelError, LevelFatal:
		code = "31" // red
	}
	return fmt.Sprintf("\x1b[%sm%-5s\x1b[0m", code, level.String())
}

// findCaller walks up the stack past the logx frames
func findCaller() string {
	for skip := 3; skip < 10; skip++ {
		_, file, line, ok := runtime.Caller(skip)
		if !ok {
			break
		}
		if strings.Contains(file, "/pkg/logx/") {
			continue
		}
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	return ""
}

// Trace logs at trace level with optional key-value pairs
func (l *Logger) Trace(msg string, args ...any) { l.log(LevelTrace, msg, args...) }

// Debug logs at debug level with optional key-value pairs
func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }

// Info logs at info level with optional key-value pairs
func (l *Logger) Info(msg string, args ...any) { l.log(LevelInfo, msg, args...) }

// Warn logs at warn level with optional key-value pairs
func (l *Logger) Warn(msg string, args ...any) { l.log(LevelWarn, msg, args...) }

// Error logs at error level with optional key-value pairs
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// Fatal logs at fatal level and exits
func (l *Logger) Fatal(msg string, args ...any) { l.log(LevelFatal, msg, args...) }

// Tracef logs a formatted message at trace level
func (l *Logger) Tracef(format string, args ...any) { l.log(LevelTrace, fmt.Sprintf(format, args...)) }

// Debugf logs a formatted message at debug level
func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, fmt.Sprintf(format, args...)) }

// Infof logs a formatted message at info level
func (l *Logger) Infof(format string, args ...any) { l.log(LevelInfo, fmt.Sprintf(format, args...)) }

// Warnf logs a formatted message at warn level
func (l *Logger) Warnf(format string, args ...any) { l.log(LevelWarn, fmt.Sprintf(format, args...)) }

// Errorf logs a formatted message at error level
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, fmt.Sprintf(format, args...)) }

// Fatalf logs a formatted message at fatal level and exits
func (l *Logger) Fatalf(format string, args ...any) { l.log(LevelFatal, fmt.Sprintf(format, args...)) }
