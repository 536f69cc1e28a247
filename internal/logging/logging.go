// Package logging builds the zap logger shared by the CLI and the pipeline.
// Diagnostics go to stderr in console format; user-facing progress is printed
// separately by the commands.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel is used when the configured level is empty or invalid.
const DefaultLevel = zapcore.WarnLevel

// ParseLevel parses a level name such as "debug" or "warn", falling back to
// DefaultLevel. The second result reports whether the name was valid.
func ParseLevel(name string) (zapcore.Level, bool) {
	if name == "" {
		return DefaultLevel, true
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return DefaultLevel, false
	}
	return lvl, true
}

// New returns a console logger writing to w at the given level. A nil w means
// stderr.
func New(level string, w io.Writer) *zap.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, ok := ParseLevel(level)

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(lvl),
	)
	logger := zap.New(core)

	if !ok {
		logger.Warn("unknown log level, using default",
			zap.String("level", level),
			zap.Stringer("default", DefaultLevel),
		)
	}
	return logger
}
