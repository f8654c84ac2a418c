package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogLevel = "info"

// NewLogger constructs a zap logger emitting structured JSON. Dev mode switches
// to the console encoder with colour levels and debug enabled by default.
func NewLogger(levelText string, dev bool) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	fallback := defaultLogLevel
	if dev {
		fallback = "debug"
	}
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(levelText)))); err != nil || strings.TrimSpace(levelText) == "" {
		_ = level.UnmarshalText([]byte(fallback))
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "severity",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
	}
	encoding := "json"
	if dev {
		encoding = "console"
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg := zap.Config{
		Level:             level,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !dev,
	}
	return cfg.Build()
}
