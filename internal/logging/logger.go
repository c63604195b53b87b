// Package logging provides categorized file-based logging for slideclaw.
// Logs are written to <data-dir>/logs with one file per category per day.
// When debug mode is off the whole package is a silent no-op.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category.
type Category string

const (
	CategoryBoot   Category = "boot"   // startup, config resolution
	CategoryStore  Category = "store"  // presentation file reads/writes
	CategoryDeck   Category = "deck"   // CRUD operations
	CategoryAgent  Category = "agent"  // tool loop turns and dispatch
	CategoryGemini Category = "gemini" // model API calls
	CategoryExport Category = "export" // rasterization and document assembly
	CategoryServer Category = "server" // HTTP handling
	CategoryRPC    Category = "rpc"    // gateway plugin adapter
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	debugMode bool
	logLevel  = LevelInfo
)

// Initialize sets up the logging directory. Should be called once at
// startup. With debugMode false this is a silent no-op and no files are
// ever created.
func Initialize(dataDir string, debug bool, level string) error {
	loggersMu.Lock()
	debugMode = debug
	logLevel = parseLevel(level)
	loggersMu.Unlock()

	if !debug {
		return nil
	}
	if dataDir == "" {
		return fmt.Errorf("data dir required")
	}

	loggersMu.Lock()
	logsDir = filepath.Join(dataDir, "logs")
	loggersMu.Unlock()

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== slideclaw logging initialized ===")
	boot.Info("Logs directory: %s", logsDir)
	boot.Info("Log level: %s", level)
	return nil
}

func parseLevel(level string) int {
	switch level {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Get returns (or creates) a logger for the given category. Returns a
// no-op logger when debug mode is disabled.
func Get(category Category) *Logger {
	loggersMu.RLock()
	enabled := debugMode && logsDir != ""
	if l, ok := loggers[category]; ok && enabled {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	if !enabled {
		return &Logger{category: category}
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes all open log files (call at shutdown).
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Convenience functions. No-ops when the category is disabled.

func Boot(format string, args ...interface{})  { Get(CategoryBoot).Info(format, args...) }
func Store(format string, args ...interface{}) { Get(CategoryStore).Info(format, args...) }
func Deck(format string, args ...interface{})  { Get(CategoryDeck).Info(format, args...) }
func Agent(format string, args ...interface{}) { Get(CategoryAgent).Info(format, args...) }

func Gemini(format string, args ...interface{}) { Get(CategoryGemini).Info(format, args...) }
func Export(format string, args ...interface{}) { Get(CategoryExport).Info(format, args...) }
func Server(format string, args ...interface{}) { Get(CategoryServer).Info(format, args...) }
func RPC(format string, args ...interface{})    { Get(CategoryRPC).Info(format, args...) }

func StoreDebug(format string, args ...interface{})  { Get(CategoryStore).Debug(format, args...) }
func DeckDebug(format string, args ...interface{})   { Get(CategoryDeck).Debug(format, args...) }
func AgentDebug(format string, args ...interface{})  { Get(CategoryAgent).Debug(format, args...) }
func GeminiDebug(format string, args ...interface{}) { Get(CategoryGemini).Debug(format, args...) }
func ExportDebug(format string, args ...interface{}) { Get(CategoryExport).Debug(format, args...) }
func ServerDebug(format string, args ...interface{}) { Get(CategoryServer).Debug(format, args...) }

func StoreWarn(format string, args ...interface{})   { Get(CategoryStore).Warn(format, args...) }
func AgentWarn(format string, args ...interface{})   { Get(CategoryAgent).Warn(format, args...) }
func GeminiError(format string, args ...interface{}) { Get(CategoryGemini).Error(format, args...) }
func ExportError(format string, args ...interface{}) { Get(CategoryExport).Error(format, args...) }
func ServerError(format string, args ...interface{}) { Get(CategoryServer).Error(format, args...) }
func RPCError(format string, args ...interface{})    { Get(CategoryRPC).Error(format, args...) }

// Timer helps measure operation duration.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}
