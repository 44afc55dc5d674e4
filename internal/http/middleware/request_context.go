package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/scorecard-dashboard/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachRequestContext gives every request a RequestData carrying its request
// and trace ids. Incoming ids are kept; the trace id otherwise comes from the
// active span, then a fresh uuid. Both ids are echoed as response headers.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		rd := ctxutil.GetRequestData(ctx)
		if rd == nil {
			rd = &ctxutil.RequestData{}
			ctx = ctxutil.WithRequestData(ctx, rd)
			c.Request = c.Request.WithContext(ctx)
		}
		rd.RequestID = firstNonEmpty(c.GetHeader(headerRequestID), rd.RequestID)
		if rd.RequestID == "" {
			rd.RequestID = uuid.NewString()
		}
		rd.TraceID = firstNonEmpty(c.GetHeader(headerTraceID), rd.TraceID)
		if sc := trace.SpanContextFromContext(ctx); rd.TraceID == "" && sc.HasTraceID() {
			rd.TraceID = sc.TraceID().String()
		}
		if rd.TraceID == "" {
			rd.TraceID = uuid.NewString()
		}

		c.Set("request_id", rd.RequestID)
		c.Set("trace_id", rd.TraceID)
		c.Header(headerRequestID, rd.RequestID)
		c.Header(headerTraceID, rd.TraceID)
		c.Next()
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
