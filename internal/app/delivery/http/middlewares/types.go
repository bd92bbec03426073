package middlewares

import (
	"primarycare-identity-service/internal/app/config"
	"time"

	"go.uber.org/zap"
)

// RequestMetrics records one observation per served request.
type RequestMetrics interface {
	ObserveRequest(method, route, status string, duration time.Duration)
}

type Middlewares struct {
	Log            *zap.Logger
	InternalConfig *config.InternalConfig
	Metrics        RequestMetrics
}

func NewMiddlewares(logger *zap.Logger, internalConfig *config.InternalConfig, metrics RequestMetrics) *Middlewares {
	return &Middlewares{
		Log:            logger,
		InternalConfig: internalConfig,
		Metrics:        metrics,
	}
}
