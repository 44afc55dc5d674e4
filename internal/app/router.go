package app

import (
	"github.com/yungbote/scorecard-dashboard/internal/http"
	"github.com/yungbote/scorecard-dashboard/internal/observability"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) http.RouterConfig {
	rc := http.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		AllowedOrigins:     cfg.AllowedOrigins,
		PathPrefix:         cfg.PrefixURL,
		IdentityMiddleware: middleware.Identity,
		HealthHandler:      handlers.Health,
		MetricsHandler:     handlers.Metrics,
		ScorecardHandler:   handlers.Scorecard,
		PolicyHandler:      handlers.Policy,
		RealtimeHandler:    handlers.Realtime,
	}
	if cfg.OtelEnabled {
		rc.ServiceName = cfg.AppName
	}
	return rc
}
