package logging

import (
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger     *zap.Logger
	traceBytes bool
)

// Verbosity levels, driven by the CLI's repeatable --debug flag.
const (
	VerbosityInfo  = 0 // normal operation
	VerbosityDebug = 1 // protocol exchanges and session state
	VerbosityTrace = 2 // debug plus raw TX/RX byte dumps
)

// Initialize configures the global logger for the given verbosity.
func Initialize(verbosity int) error {
	level := zapcore.InfoLevel
	if verbosity >= VerbosityDebug {
		level = zapcore.DebugLevel
	}
	traceBytes = verbosity >= VerbosityTrace

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// GetLogger returns the global logger instance. Before Initialize it falls
// back to a silent logger so library code never has to nil-check.
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogRawBytes dumps raw protocol bytes at trace verbosity. Used by the
// serial transport for TX/RX captures.
func LogRawBytes(label string, data []byte) {
	if !traceBytes {
		return
	}
	Debug(label,
		zap.Int("length", len(data)),
		zap.String("hex", hex.EncodeToString(data)),
	)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
