package app

import (
	"github.com/yungbote/scorecard-dashboard/internal/modules/scorecard"
	"github.com/yungbote/scorecard-dashboard/internal/observability"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

type Repos struct {
	Scorecards *scorecard.Store
	Catalog    *scorecard.Catalog
}

func wireRepos(log *logger.Logger, clients Clients, services Services, metrics *observability.Metrics) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Scorecards: scorecard.NewStore(scorecard.StoreDeps{
			Log:     log,
			Objects: clients.Objects,
			Formats: services.Formats,
			Metrics: metrics,
			Events:  services.Notifier,
		}),
		Catalog: scorecard.NewCatalog(scorecard.CatalogDeps{
			Log:     log,
			Objects: clients.Objects,
			Formats: services.Formats,
			Metrics: metrics,
		}),
	}
}
