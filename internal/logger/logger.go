package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log *zap.SugaredLogger = zap.NewNop().Sugar()

// Init replaces Log. profile "prod" selects JSON output; anything else the
// colored console encoder. An unparsable level falls back to info.
func Init(profile, level string) {
	var cfg zap.Config

	if profile == "prod" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl := zap.InfoLevel
	if level != "" {
		if parsed, err := zapcore.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	Log = l.Sugar()
}

// With returns a child of Log carrying the given key/value pairs.
func With(args ...any) *zap.SugaredLogger {
	return Log.With(args...)
}

func Sync() {
	if Log == nil {
		return
	}

	_ = Log.Sync()
}
