package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the structured logging surface used across packages.
// Implementations log the given object as a single structured field named
// `key` and do not attempt to parse arbitrary kv arrays.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// ZapLogger implements Logger on top of a zap production core.
type ZapLogger struct {
	base *zap.Logger
}

// Init builds a JSON zap logger at the requested level.
func Init(logLevel string) (*ZapLogger, error) {
	var level zapcore.Level
	switch logLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(os.Stdout)),
		level,
	)

	base := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return &ZapLogger{base: base}, nil
}

// Close flushes buffered log entries.
func (z *ZapLogger) Close() error {
	if z == nil || z.base == nil {
		return nil
	}
	return z.base.Sync()
}

func (z *ZapLogger) InfoObj(msg, key string, obj interface{}) {
	if z == nil || z.base == nil {
		return
	}
	z.base.Info(msg, zap.Any(key, obj))
}

func (z *ZapLogger) DebugObj(msg, key string, obj interface{}) {
	if z == nil || z.base == nil {
		return
	}
	z.base.Debug(msg, zap.Any(key, obj))
}

func (z *ZapLogger) WarnObj(msg, key string, obj interface{}) {
	if z == nil || z.base == nil {
		return
	}
	z.base.Warn(msg, zap.Any(key, obj))
}

func (z *ZapLogger) ErrorObj(msg, key string, obj interface{}) {
	if z == nil || z.base == nil {
		return
	}
	z.base.Error(msg, zap.Any(key, obj))
}

// NopLogger discards everything. Useful default for tests and optional deps.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

// Ensure ensures callers always get a usable Logger.
func Ensure(log Logger) Logger {
	if log == nil {
		return NopLogger{}
	}
	return log
}
