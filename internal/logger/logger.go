package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger settings
type Config struct {
	Level       string
	ServiceName string
	Development bool
}

// Logger wraps zap with the small surface the rest of the service uses.
type Logger struct {
	z *zap.Logger
}

var (
	global *Logger
	mu     sync.Mutex
)

// Init builds the global logger. Safe to call once at startup.
func Init(cfg *Config) error {
	mu.Lock()
	defer mu.Unlock()

	var zcfg zap.Config
	if cfg != nil && cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "ts"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if cfg != nil {
		if lvl, err := zapcore.ParseLevel(cfg.Level); err == nil {
			zcfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	z, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	if cfg != nil && cfg.ServiceName != "" {
		z = z.With(zap.String("service", cfg.ServiceName))
	}

	global = &Logger{z: z}
	return nil
}

// Get returns the global logger, building a no-frills fallback if Init was
// never called (tests, auxiliary binaries).
func Get() *Logger {
	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		z, _ := zap.NewProduction(zap.AddCallerSkip(1))
		global = &Logger{z: z}
	}
	return global
}

// Sync flushes buffered log entries.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		_ = global.z.Sync()
	}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...zap.Field) { l.z.Fatal(msg, fields...) }

// With returns a logger with the given fields attached.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{z: l.z.With(fields...)}
}
