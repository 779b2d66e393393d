// Package logging provides categorized logging for qmprobe, built on zap.
// Each subsystem logs under its own category so a failing probe can be
// narrowed down to discovery, rewriting, invocation or decoding without
// wading through the rest. The package is a silent no-op until Initialize
// is called, which keeps library use of internal/probe quiet by default.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryProbe    Category = "probe"    // Project handle, lazy values, cache
	CategoryDiscover Category = "discover" // make dry-run command discovery, project resolution
	CategoryCmdline  Category = "cmdline"  // tokenizing and qmake command classification
	CategoryRewrite  Category = "rewrite"  // temp project copy and feature injection
	CategoryInvoke   Category = "invoke"   // subprocess execution
	CategoryDecode   Category = "decode"   // marker window decoding
	CategoryWatch    Category = "watch"    // filesystem watch mode
)

var (
	mu      sync.RWMutex
	root    *zap.SugaredLogger
	loggers = make(map[Category]*zap.SugaredLogger)
)

// Initialize sets up the logging backend. level is one of debug, info,
// warn, error; format is "console" or "json"; file, when non-empty,
// redirects output from stderr to that path.
func Initialize(level, format, file string) error {
	var lvl zapcore.Level
	switch level {
	case "", "info":
		lvl = zapcore.InfoLevel
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn", "warning":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		return fmt.Errorf("unknown log level %q", level)
	}

	cfg := zap.NewDevelopmentConfig()
	if format == "json" {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if file != "" {
		cfg.OutputPaths = []string{file}
		cfg.ErrorOutputPaths = []string{file}
	}

	logger, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	root = logger.Sugar()
	loggers = make(map[Category]*zap.SugaredLogger)
	return nil
}

// Sync flushes buffered log entries. Call before process exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if root != nil {
		_ = root.Sync()
	}
}

// Get returns the logger for a category, or nil when logging is not
// initialized. Callers normally use the package-level helpers instead.
func Get(category Category) *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if root == nil {
		return nil
	}
	if l, ok := loggers[category]; ok {
		return l
	}
	l := root.Named(string(category))
	loggers[category] = l
	return l
}

func logf(category Category, level zapcore.Level, format string, args []interface{}) {
	l := Get(category)
	if l == nil {
		return
	}
	switch level {
	case zapcore.DebugLevel:
		l.Debugf(format, args...)
	case zapcore.WarnLevel:
		l.Warnf(format, args...)
	case zapcore.ErrorLevel:
		l.Errorf(format, args...)
	default:
		l.Infof(format, args...)
	}
}

// Convenience helpers per category. These keep call sites short:
// logging.Invoke("running %s", cmd) instead of threading loggers around.

func Probe(format string, args ...interface{}) {
	logf(CategoryProbe, zapcore.InfoLevel, format, args)
}

func ProbeDebug(format string, args ...interface{}) {
	logf(CategoryProbe, zapcore.DebugLevel, format, args)
}

func ProbeWarn(format string, args ...interface{}) {
	logf(CategoryProbe, zapcore.WarnLevel, format, args)
}

func ProbeError(format string, args ...interface{}) {
	logf(CategoryProbe, zapcore.ErrorLevel, format, args)
}

func Discover(format string, args ...interface{}) {
	logf(CategoryDiscover, zapcore.InfoLevel, format, args)
}

func DiscoverDebug(format string, args ...interface{}) {
	logf(CategoryDiscover, zapcore.DebugLevel, format, args)
}

func DiscoverWarn(format string, args ...interface{}) {
	logf(CategoryDiscover, zapcore.WarnLevel, format, args)
}

func Cmdline(format string, args ...interface{}) {
	logf(CategoryCmdline, zapcore.InfoLevel, format, args)
}

func CmdlineWarn(format string, args ...interface{}) {
	logf(CategoryCmdline, zapcore.WarnLevel, format, args)
}

func Rewrite(format string, args ...interface{}) {
	logf(CategoryRewrite, zapcore.InfoLevel, format, args)
}

func RewriteDebug(format string, args ...interface{}) {
	logf(CategoryRewrite, zapcore.DebugLevel, format, args)
}

func Invoke(format string, args ...interface{}) {
	logf(CategoryInvoke, zapcore.InfoLevel, format, args)
}

func InvokeDebug(format string, args ...interface{}) {
	logf(CategoryInvoke, zapcore.DebugLevel, format, args)
}

func InvokeWarn(format string, args ...interface{}) {
	logf(CategoryInvoke, zapcore.WarnLevel, format, args)
}

func Decode(format string, args ...interface{}) {
	logf(CategoryDecode, zapcore.InfoLevel, format, args)
}

func DecodeDebug(format string, args ...interface{}) {
	logf(CategoryDecode, zapcore.DebugLevel, format, args)
}

func Watch(format string, args ...interface{}) {
	logf(CategoryWatch, zapcore.InfoLevel, format, args)
}

func WatchWarn(format string, args ...interface{}) {
	logf(CategoryWatch, zapcore.WarnLevel, format, args)
}
