package app

import (
	"github.com/yungbote/scorecard-dashboard/internal/observability"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

// Core is the storage-backed part of the app: store, catalog and policy
// service over the configured object store, without the HTTP surface.
type Core struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
}

func NewCore(log *logger.Logger, cfg Config, metrics *observability.Metrics) (*Core, error) {
	clientset, err := wireClients(log, cfg, metrics)
	if err != nil {
		return nil, err
	}
	serviceset, err := wireServices(log, cfg, clientset, metrics)
	if err != nil {
		clientset.Close()
		return nil, err
	}
	reposet := wireRepos(log, clientset, serviceset, metrics)
	serviceset.Policies = wirePolicies(log, cfg, clientset, reposet, metrics)
	return &Core{
		Log:      log,
		Cfg:      cfg,
		Clients:  clientset,
		Repos:    reposet,
		Services: serviceset,
	}, nil
}

func (c *Core) Close() {
	if c == nil {
		return
	}
	c.Clients.Close()
}
