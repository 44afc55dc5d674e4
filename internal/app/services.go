package app

import (
	"fmt"

	"github.com/yungbote/scorecard-dashboard/internal/modules/policy"
	"github.com/yungbote/scorecard-dashboard/internal/modules/treemap"
	"github.com/yungbote/scorecard-dashboard/internal/observability"
	"github.com/yungbote/scorecard-dashboard/internal/platform/fileformat"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
	"github.com/yungbote/scorecard-dashboard/internal/realtime"
)

type Services struct {
	Formats  *fileformat.Registry
	Hub      *realtime.SSEHub
	Notifier *realtime.Notifier
	Treemap  *treemap.Renderer
	Policies *policy.Service
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	renderer, err := treemap.NewRenderer(treemap.Config{FontPath: cfg.TreemapFontPath})
	if err != nil {
		return Services{}, fmt.Errorf("init treemap renderer: %w", err)
	}

	hub := realtime.NewSSEHub(log, metrics)
	var pub realtime.Publisher
	if clients.Bus != nil {
		pub = clients.Bus
	}

	return Services{
		Formats:  fileformat.Default(),
		Hub:      hub,
		Notifier: realtime.NewNotifier(log, hub, pub, metrics),
		Treemap:  renderer,
	}, nil
}

// wirePolicies runs after the repos since the policy service loads saved
// scorecards through the store.
func wirePolicies(log *logger.Logger, cfg Config, clients Clients, repos Repos, metrics *observability.Metrics) *policy.Service {
	return policy.NewService(policy.ServiceDeps{
		Log:          log,
		Objects:      clients.Objects,
		Formats:      fileformat.Default(),
		Scorecards:   repos.Scorecards,
		Metrics:      metrics,
		CatalogueKey: cfg.PolicyCatalogKey,
	})
}
