package app

import (
	httpMW "github.com/yungbote/scorecard-dashboard/internal/http/middleware"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

type Middleware struct {
	Identity *httpMW.IdentityMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Identity: httpMW.NewIdentityMiddleware(log, cfg.SessionJWTSecret),
	}
}
