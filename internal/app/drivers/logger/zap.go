package logger

import (
	"fmt"
	"primarycare-identity-service/internal/app/config"
	"primarycare-identity-service/internal/pkg/constvars"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZapLogger builds the JSON logger. Every line carries the service name,
// environment and API version so that log shipping can tell instances apart.
func NewZapLogger(driverConfig *config.DriverConfig, internalConfig *config.InternalConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(driverConfig.Logger.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	production := internalConfig.App.Env == constvars.AppEnvProduction

	cfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: !production,
		Encoding:    "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields: map[string]interface{}{
			"service": constvars.ServiceName,
			"env":     internalConfig.App.Env,
			"version": internalConfig.App.Version,
		},
	}

	if production {
		cfg.OutputPaths = []string{driverConfig.Logger.OutputFileName}
		cfg.ErrorOutputPaths = []string{"stderr", driverConfig.Logger.OutputErrorFileName}
		cfg.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("initializing zap logger: %w", err)
	}
	return zapLogger.Named("identity"), nil
}
