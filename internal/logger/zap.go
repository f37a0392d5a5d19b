package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap's SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

// defaultZapLevel defines the fallback log level when an unknown level string is provided.
const defaultZapLevel = zapcore.DebugLevel

// toZapLevel converts a textual level to zapcore.Level using known level constants.
func toZapLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return defaultZapLevel
	}
}

// newEncoder picks the console or JSON encoder; timestamps are RFC3339.
func newEncoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	if format == JSONFormat {
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// newCore builds a zapcore.Core writing to w.
func newCore(level zapcore.Level, format string, w io.Writer) zapcore.Core {
	ws := zapcore.Lock(zapcore.AddSync(w)) // thread-safe writer
	return zapcore.NewCore(newEncoder(format), ws, zap.NewAtomicLevelAt(level))
}

// newZapLogger constructs a sugared zap logger writing to stdout.
func newZapLogger(levelStr, format string) *Logger {
	return New(levelStr, format, os.Stdout)
}

// New builds a non-singleton logger writing to w. Commands that run next to
// a full-screen UI use it to send logs somewhere other than the terminal.
func New(levelStr, format string, w io.Writer) *Logger {
	core := newCore(toZapLevel(levelStr), format, w)
	return &Logger{
		SugaredLogger: zap.New(core).Sugar(),
	}
}
