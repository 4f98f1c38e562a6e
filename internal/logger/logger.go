package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output encodings.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config selects the level and encoding of the process logger.
type Config struct {
	Level  string
	Format string
}

var (
	globalLogger *Logger
	once         sync.Once
)

// GetWithConfig returns a singleton logger. The first call initializes the
// logger; subsequent calls ignore cfg and return the existing instance.
func GetWithConfig(cfg Config) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(cfg)
	})
	return globalLogger
}

// SetLevel changes the level of an initialized logger at runtime.
func (l *Logger) SetLevel(level string) {
	if l != nil && l.level != nil {
		l.level.SetLevel(toZapLevel(level))
	}
}
