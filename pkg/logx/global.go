package logx

import (
	"os"
	"strings"
)

var defaultLogger = newDefaultLogger()

// newDefaultLogger builds the global logger from environment variables:
// LOG_LEVEL, LOG_FORMAT (console|json), LOG_COLOR, LOG_CALLER
func newDefaultLogger() *Logger {
	opts := Options{
		Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		Output: os.Stderr,
	}

	switch strings.ToLower(os.Getenv("LOG_FORMAT")) {
	case "json", "cloudwatch":
		opts.Format = FormatJSON
	default:
		opts.Format = FormatConsole
	}

	opts.Color = envBool("LOG_COLOR", opts.Format == FormatConsole)
	opts.ShowCaller = envBool("LOG_CALLER", false)

	return NewLogger(opts)
}

func envBool(key string, def bool) bool {
	v := strings.ToLower(os.Getenv(key))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// SetLevel changes the global logger's level
func SetLevel(level Level) { defaultLogger.SetLevel(level) }

// Trace logs at trace level using the global logger
func Trace(msg string, args ...any) { defaultLogger.Trace(msg, args...) }

// Debug logs at debug level using the global logger
func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }

// Info logs at info level using the global logger
func Info(msg string, args ...any) { defaultLogger.Info(msg, args...) }

// Warn logs at warn level using the global logger
func Warn(msg string, args ...any) { defaultLogger.Warn(msg, args...) }

// Error logs at error level using the global logger
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

// Fatal logs at fatal level using the global logger and exits
func Fatal(msg string, args ...any) { defaultLogger.Fatal(msg, args...) }

// Tracef logs a formatted message at trace level using the global logger
func Tracef(format string, args ...any) { defaultLogger.Tracef(format, args...) }

// Debugf logs a formatted message at debug level using the global logger
func Debugf(format string, args ...any) { defaultLogger.Debugf(format, args...) }

// Infof logs a formatted message at info level using the global logger
func Infof(format string, args ...any) { defaultLogger.Infof(format, args...) }

// Warnf logs a formatted message at warn level using the global logger
func Warnf(format string, args ...any) { defaultLogger.Warnf(format, args...) }

// Errorf logs a formatted message at error level using the global logger
func Errorf(format string, args ...any) { defaultLogger.Errorf(format, args...) }

// Fatalf logs a formatted message at fatal level using the global logger and exits
func Fatalf(format string, args ...any) { defaultLogger.Fatalf(format, args...) }
