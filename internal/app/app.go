package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/scorecard-dashboard/internal/http"
	"github.com/yungbote/scorecard-dashboard/internal/observability"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

const otelShutdownTimeout = 5 * time.Second

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Metrics  *observability.Metrics
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *http.Server

	cancel       context.CancelFunc
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.NewWithLevel(logMode, os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	metrics := observability.Init(log)
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	}.WithEnv())

	core, err := NewCore(log, cfg, metrics)
	if err != nil {
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, core.Repos, core.Services, metrics)
	middleware := wireMiddleware(log, cfg)
	server := http.NewServer(wireRouter(log, cfg, metrics, handlerset, middleware))

	return &App{
		Log:          log,
		Cfg:          cfg,
		Metrics:      metrics,
		Clients:      core.Clients,
		Repos:        core.Repos,
		Services:     core.Services,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Start begins background work: the optional metrics listener and relaying
// bus messages onto the local hub.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.StartForwarder(ctx, a.Services.Notifier.Forward); err != nil {
			return fmt.Errorf("start sse bus forwarder: %w", err)
		}
	}
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Serving scorecard dashboard", "addr", a.Cfg.Addr(), "prefix", a.Cfg.PrefixURL)
	return a.Server.Run(ctx, a.Cfg.Addr())
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
