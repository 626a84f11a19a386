// Package logger writes wintool's log: every record goes to a rotated file, and everything
// above trace level is echoed to the console.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// Rotation limits: megabytes per file, rotated files kept, days kept
	logMaxSize    = 2
	logMaxBackups = 3
	logMaxAge     = 28

	// LevelTrace is below Debug and only reaches the log file. Raw native call results and
	// file system events are logged at this level.
	LevelTrace = slog.LevelDebug - 4

	// EnvLogDir overrides the default log directory when LoggerOptions.LogDir is empty
	EnvLogDir = "WINTOOL_LOG_DIR"

	appName = "wintool"
)

// LoggerInterface defines the logging methods
type LoggerInterface interface {
	Trace(msg string, args ...any) // File only
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Close()
	GetLogPath() string
}

// LoggerOptions configures the logger
type LoggerOptions struct {
	Verbose  bool      // Echo debug records to the console
	LogDir   string    // If empty, uses $WINTOOL_LOG_DIR, then %LOCALAPPDATA%\wintool
	Compress bool      // Gzip rotated files
	Console  io.Writer // Console destination (default: os.Stdout)
}

// GetLogPath returns the log file path for opts
func GetLogPath(opts LoggerOptions) string {
	dir := opts.LogDir
	if dir == "" {
		dir = os.Getenv(EnvLogDir)
	}

	if dir == "" {
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}

		dir = filepath.Join(base, appName)
	}

	return filepath.Join(dir, appName+".log")
}

// PrintLogFile copies the log file to w (stdout when nil).
func PrintLogFile(w io.Writer, opts LoggerOptions) error {
	if w == nil {
		w = os.Stdout
	}

	logPath := GetLogPath(opts)

	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}
	defer func() { _ = file.Close() }()

	if _, err := io.Copy(w, file); err != nil {
		return fmt.Errorf("failed to read log file: %w", err)
	}

	return nil
}

// Logger fans every record out to the file and console loggers
type Logger struct {
	file    *slog.Logger
	console *slog.Logger
	rotator *lumberjack.Logger
	logPath string
}

// NewLogger creates the log directory if needed and opens the rotated log file
func NewLogger(opts LoggerOptions) (*Logger, error) {
	logPath := GetLogPath(opts)

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, fmt.Errorf("could not create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAge,
		Compress:   opts.Compress,
	}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	minConsole := slog.LevelInfo
	if opts.Verbose {
		minConsole = slog.LevelDebug
	}

	return &Logger{
		file: slog.New(slog.NewTextHandler(rotator, &slog.HandlerOptions{
			Level:       LevelTrace,
			ReplaceAttr: traceLevelName,
		})),
		console: slog.New(&ConsoleHandler{writer: console, level: minConsole}),
		rotator: rotator,
		logPath: logPath,
	}, nil
}

// traceLevelName prints LevelTrace as TRACE instead of DEBUG-4
func traceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
			a.Value = slog.StringValue("TRACE")
		}
	}

	return a
}

// Close flushes and closes the log file
func (l *Logger) Close() {
	if err := l.rotator.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to close log file: %v\n", err)
	}
}

func (l *Logger) GetLogPath() string {
	return l.logPath
}

func (l *Logger) Trace(msg string, args ...any) {
	l.file.Log(context.Background(), LevelTrace, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.file.Debug(msg, args...)
	l.console.Debug(msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.file.Info(msg, args...)
	l.console.Info(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.file.Warn(msg, args...)
	l.console.Warn(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.file.Error(msg, args...)
	l.console.Error(msg, args...)
}

// consoleStyle is the prefix and colour of one console level. Info has neither.
type consoleStyle struct {
	prefix string
	color  *color.Color
}

var consoleStyles = map[slog.Level]consoleStyle{
	slog.LevelDebug: {"VERBOSE: ", color.New(color.FgCyan)},
	slog.LevelWarn:  {"WARNING: ", color.New(color.FgYellow)},
	slog.LevelError: {"ERROR: ", color.New(color.FgRed)},
}

// ConsoleHandler prints "PREFIX: message key=value ..." lines without timestamps
type ConsoleHandler struct {
	writer io.Writer
	level  slog.Level
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)

	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})

	style, ok := consoleStyles[r.Level]
	if !ok {
		_, _ = fmt.Fprintln(h.writer, b.String())
		return nil
	}

	// Console write errors are ignored
	_, _ = style.color.Fprintf(h.writer, "%s%s\n", style.prefix, b.String())
	return nil
}

func (h *ConsoleHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *ConsoleHandler) WithGroup(_ string) slog.Handler {
	return h
}

// NoOpLogger discards everything; tests use it where output does not matter
type NoOpLogger struct{}

func (n *NoOpLogger) Trace(msg string, args ...any) {}
func (n *NoOpLogger) Debug(msg string, args ...any) {}
func (n *NoOpLogger) Info(msg string, args ...any)  {}
func (n *NoOpLogger) Warn(msg string, args ...any)  {}
func (n *NoOpLogger) Error(msg string, args ...any) {}
func (n *NoOpLogger) Close()                        {}
func (n *NoOpLogger) GetLogPath() string            { return "" }

func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}
