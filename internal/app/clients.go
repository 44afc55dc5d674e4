package app

import (
	"fmt"

	"github.com/yungbote/scorecard-dashboard/internal/observability"
	"github.com/yungbote/scorecard-dashboard/internal/platform/gcp"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
	"github.com/yungbote/scorecard-dashboard/internal/platform/objectstore"
	"github.com/yungbote/scorecard-dashboard/internal/realtime/bus"
)

type Clients struct {
	Objects objectstore.Store
	Bucket  gcp.BucketService
	Bus     bus.Bus
}

func wireClients(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	storage, err := resolveObjectStore(log, cfg)
	if err != nil {
		return Clients{}, fmt.Errorf("init object storage: %w", err)
	}

	var b bus.Bus
	if cfg.RedisAddr != "" {
		rb, err := bus.NewRedisBus(log, bus.RedisConfig{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel}, metrics)
		if err != nil {
			if storage.Bucket != nil {
				_ = storage.Bucket.Close()
			}
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		b = rb
	}

	return Clients{
		Objects: storage.Objects,
		Bucket:  storage.Bucket,
		Bus:     b,
	}, nil
}

func (c Clients) Close() {
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Bucket != nil {
		_ = c.Bucket.Close()
	}
}
