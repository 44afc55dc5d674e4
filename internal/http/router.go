package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/scorecard-dashboard/internal/http/handlers"
	httpMW "github.com/yungbote/scorecard-dashboard/internal/http/middleware"
	"github.com/yungbote/scorecard-dashboard/internal/observability"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

const metricsPath = "/metrics"

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	// AllowedOrigins overrides the local dev CORS origins.
	AllowedOrigins []string
	// PathPrefix mounts the whole API below a URL prefix, e.g. "/scorecard".
	PathPrefix string

	IdentityMiddleware *httpMW.IdentityMiddleware

	HealthHandler    *httpH.HealthHandler
	MetricsHandler   *httpH.MetricsHandler
	ScorecardHandler *httpH.ScorecardHandler
	PolicyHandler    *httpH.PolicyHandler
	RealtimeHandler  *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics, cfg.PathPrefix+metricsPath))
	r.Use(httpMW.RequestLogger(cfg.Log))

	root := r.Group(cfg.PathPrefix)

	// Health
	if cfg.HealthHandler != nil {
		root.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.MetricsHandler != nil {
		root.GET(metricsPath, cfg.MetricsHandler.Scrape)
	}

	api := root.Group("/api")
	if cfg.IdentityMiddleware != nil {
		api.Use(cfg.IdentityMiddleware.ResolveUser())
	}
	{
		// Scorecards
		if cfg.ScorecardHandler != nil {
			api.GET("/scorecards", cfg.ScorecardHandler.List)
			api.GET("/scorecards/options", cfg.ScorecardHandler.Options)
			api.POST("/scorecards", cfg.ScorecardHandler.Save)
			api.GET("/scorecards/:filename", cfg.ScorecardHandler.Get)
			api.PUT("/scorecards/:filename", cfg.ScorecardHandler.Overwrite)
			api.POST("/scorecards/:filename/archive", cfg.ScorecardHandler.Archive)
		}

		// Policies, pricing and comparison
		if cfg.PolicyHandler != nil {
			api.GET("/scorecards/:filename/view", cfg.PolicyHandler.ScorecardView)
			api.GET("/policies", cfg.PolicyHandler.Catalogue)
			api.POST("/policies/price", cfg.PolicyHandler.Price)
			api.POST("/policies/treemap.png", cfg.PolicyHandler.PriceTreemap)
			api.GET("/compare", cfg.PolicyHandler.Compare)
			api.GET("/compare/treemap.png", cfg.PolicyHandler.CompareTreemap)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}
	}

	return r
}
