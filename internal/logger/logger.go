package logger

import (
	"fmt"
	"time"

	"github.com/glassline/erp-api/internal/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new structured logger. JSON output is used when the
// format asks for it or the environment is production.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" || appCfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zapCfg.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

// WithRequest adds request context to logger
func WithRequest(logger *zap.Logger, method, path, requestID string) *zap.Logger {
	return logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
}

// WithSequence adds the number sequence being issued or repaired
func WithSequence(logger *zap.Logger, organizationID uuid.UUID, docType string, year int) *zap.Logger {
	return logger.With(
		zap.String("organizationID", organizationID.String()),
		zap.String("docType", docType),
		zap.Int("year", year),
	)
}

// WithJob tags scheduled job output with the job name and the run's start time
func WithJob(logger *zap.Logger, name string, startedAt time.Time) *zap.Logger {
	return logger.With(
		zap.String("job_name", name),
		zap.Time("started_at", startedAt),
	)
}
