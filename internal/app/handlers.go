package app

import (
	httpH "github.com/yungbote/scorecard-dashboard/internal/http/handlers"
	"github.com/yungbote/scorecard-dashboard/internal/observability"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Metrics   *httpH.MetricsHandler
	Scorecard *httpH.ScorecardHandler
	Policy    *httpH.PolicyHandler
	Realtime  *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, repos Repos, services Services, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{
		Health: httpH.NewHealthHandler(),
		Scorecard: httpH.NewScorecardHandlerWithDeps(httpH.ScorecardHandlerDeps{
			Log:     log,
			Store:   repos.Scorecards,
			Catalog: repos.Catalog,
		}),
		Policy: httpH.NewPolicyHandlerWithDeps(httpH.PolicyHandlerDeps{
			Log:      log,
			Policies: services.Policies,
			Treemap:  services.Treemap,
		}),
		Realtime: httpH.NewRealtimeHandler(log, services.Hub),
	}
	if metrics != nil {
		h.Metrics = httpH.NewMetricsHandler(metrics)
	}
	return h
}
