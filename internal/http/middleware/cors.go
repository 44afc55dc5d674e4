package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// DefaultAllowedOrigins are the local dev servers of the dashboard frontend.
var DefaultAllowedOrigins = []string{
	"http://localhost:80",
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:8050",
	"http://127.0.0.1:80",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:8050",
}

// CORS allows origins, or DefaultAllowedOrigins when none are given.
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", headerPageHref, headerRequestID, headerTraceID},
		ExposeHeaders:    []string{headerRequestID, headerTraceID},
		AllowCredentials: true,
	})
}
