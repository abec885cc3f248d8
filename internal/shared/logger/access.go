package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewAccessLogger builds the zap logger used for HTTP access lines.
// Production environments get JSON output, everything else the console encoder.
func NewAccessLogger() (*zap.Logger, error) {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == envProduction || env == envProd || strings.ToLower(os.Getenv("LOG_FORMAT")) == logFormatJSON {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg.Build()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
