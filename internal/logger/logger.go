package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the engine-wide logger. It is a no-op logger until Init or Configure runs.
var Log = zap.NewNop()

// Init sets up the default production logger at info level.
func Init() {
	if err := Configure("info", false); err != nil {
		Log = zap.NewExample()
		Log.Error("Logger initialization failed, using example logger", zap.Error(err))
	}
}

// Configure replaces Log with a logger at the given level.
// Development loggers use the console encoder and panic on DPanic.
func Configure(level string, development bool) error {
	atomicLevel := zap.NewAtomicLevel()
	if level != "" {
		if err := atomicLevel.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = atomicLevel

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// Named returns a child of Log for a subsystem.
func Named(name string) *zap.Logger {
	return Log.Named(name)
}

// Sync flushes buffered entries; errors from syncing stdout/stderr are ignored.
func Sync() {
	_ = Log.Sync()
}
