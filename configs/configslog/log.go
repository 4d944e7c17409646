package configslog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the structured logger, SLog the sugared one. Both start as no-ops
// so they are safe to use from any package before InitLogger runs (tests
// never call it); InitLogger swaps in the real loggers.
var (
	Log  = zap.NewNop()
	SLog = zap.NewNop().Sugar()
)

// InitLogger builds the process-wide zap loggers. APP_ENV=production switches to
// JSON output and info level; anything else gets the development console encoder.
func InitLogger() {
	var cfg zap.Config
	if os.Getenv("APP_ENV") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}

	Log = logger
	SLog = logger.Sugar()
}

// SyncLogger flushes buffered log entries. Call it deferred from main.
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}
