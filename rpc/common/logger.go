// Package common provides shared protocol, configuration, and logging types
// for the RPC layer.
package common

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/lni/dragonboat/v4/logger"
)

// --------------------------------------------------------------------------
// Log levels
// --------------------------------------------------------------------------

// LogLevel is an alias for dragonboat's logger.LogLevel — the engine keeps
// the teacher's logging facade even though the Raft engine itself is gone,
// the same way the teacher's own lib/db engines log nothing and only its
// rpc layer pulls in the facade.
type LogLevel = logger.LogLevel

const (
	LogLevelError   = logger.ERROR
	LogLevelWarning = logger.WARNING
	LogLevelInfo    = logger.INFO
	LogLevelDebug   = logger.DEBUG
)

// ILogger is the logging facade used throughout the rpc package.
type ILogger = logger.ILogger

// --------------------------------------------------------------------------
// Custom Logger
// --------------------------------------------------------------------------

// lsetLogger implements dragonboat's logger.ILogger with formatting
// consistent across the project.
type lsetLogger struct {
	name   string
	level  LogLevel
	logger *log.Logger
}

func (l *lsetLogger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *lsetLogger) Debugf(format string, args ...interface{}) {
	if l.level >= LogLevelDebug {
		l.log("DEBUG", format, args...)
	}
}

func (l *lsetLogger) Infof(format string, args ...interface{}) {
	if l.level >= LogLevelInfo {
		l.log("INFO", format, args...)
	}
}

func (l *lsetLogger) Warningf(format string, args ...interface{}) {
	if l.level >= LogLevelWarning {
		l.log("WARN", format, args...)
	}
}

func (l *lsetLogger) Errorf(format string, args ...interface{}) {
	if l.level >= LogLevelError {
		l.log("ERROR", format, args...)
	}
}

func (l *lsetLogger) Panicf(format string, args ...interface{}) {
	if l.level >= logger.CRITICAL {
		panic(fmt.Sprintf(format, args...))
	}
}

// log formats and writes a log message. this internal helper is used by the public methods
func (l *lsetLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-15s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

var (
	loggersMu sync.Mutex
	loggers   = map[string]*lsetLogger{}
)

// CreateLogger creates a new named logger writing to stdout
func CreateLogger(pkgName string) ILogger {
	stdLogger := log.New(os.Stdout, "", log.Ldate|log.Ltime)

	l := &lsetLogger{
		name:   pkgName,
		level:  LogLevelInfo,
		logger: stdLogger,
	}

	loggersMu.Lock()
	loggers[pkgName] = l
	loggersMu.Unlock()

	return l
}

// GetLogger returns the named logger, creating it on first use
func GetLogger(pkgName string) ILogger {
	loggersMu.Lock()
	l, ok := loggers[pkgName]
	loggersMu.Unlock()
	if ok {
		return l
	}
	return CreateLogger(pkgName)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to a LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warning", "warn":
		return LogLevelWarning
	case "error":
		return LogLevelError
	default:
		panic(fmt.Sprintf("invalid log level: %s. must be one of debug, info, warn, error", level))
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers configures the package-level loggers according to the server config
func InitLoggers(config ServerConfig) {
	level := ParseLogLevel(config.LogLevel)
	GetLogger("host").SetLevel(level)
	GetLogger("lset").SetLevel(level)
	GetLogger("rpc").SetLevel(level)
	GetLogger("transport").SetLevel(level)
}
