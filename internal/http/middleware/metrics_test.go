package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scorecard-dashboard/internal/observability"
)

func TestMetricsRecordsMatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.New()

	r := gin.New()
	r.Use(Metrics(m, "/metrics"))
	r.GET("/api/scorecards/:filename", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, target := range []string{"/api/scorecards/a", "/api/scorecards/b", "/metrics", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`scorecard_api_requests_total{method="GET",route="/api/scorecards/:filename",status="404"} 2`,
		`scorecard_api_requests_total{method="GET",route="unmatched",status="404"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, `route="/metrics"`) {
		t.Fatalf("scrape route should not be counted:\n%s", out)
	}
}
