// Package logging builds the process-wide zap logger.
package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger at the given level ("debug", "info", "warn",
// "error"; unknown values mean info). Timestamps are rendered in loc.
func New(level string, loc *time.Location) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig = encoderConfig(loc)
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// NewWithCore is used where output must go somewhere other than stderr,
// such as the HTTP access log tests.
func NewWithCore(ws zapcore.WriteSyncer, loc *time.Location) *zap.Logger {
	enc := zapcore.NewJSONEncoder(encoderConfig(loc))
	return zap.New(zapcore.NewCore(enc, ws, zapcore.DebugLevel))
}

func encoderConfig(loc *time.Location) zapcore.EncoderConfig {
	if loc == nil {
		loc = time.UTC
	}
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.MessageKey = "msg"
	ec.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.In(loc).Format(time.RFC3339))
	}
	return ec
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
