package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/scorecard-dashboard/internal/platform/envutil"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

// Metrics is the process's Prometheus registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *Gauge
	apiErrors    *Counter
	storeOps     *CounterVec
	storeLatency *HistogramVec

	catalogSkipped *CounterVec
	catalogSize    *Gauge

	sseClients  *Gauge
	sseDropped  *Counter
	busMessages *CounterVec

	exposition []promWriter
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide metrics once. It returns nil unless
// METRICS_ENABLED is set.
func Init(log *logger.Logger) *Metrics {
	if !envutil.Bool("METRICS_ENABLED", false) {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

var apiLabels = []string{"method", "route", "status"}

// New returns a fresh, unshared Metrics set.
func New() *Metrics {
	m := &Metrics{
		apiRequests:    NewCounterVec("scorecard_api_requests_total", "Total API requests by method/route/status.", apiLabels),
		apiLatency:     NewHistogramVec("scorecard_api_request_duration_seconds", "API request latency in seconds by method/route/status.", apiLabels, []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}),
		apiInflight:    NewGauge("scorecard_api_inflight_requests", "In-flight API requests."),
		apiErrors:      NewCounter("scorecard_api_requests_error_total", "API requests answered with a 5xx status."),
		storeOps:       NewCounterVec("scorecard_store_operations_total", "Scorecard store operations by op/status.", []string{"op", "status"}),
		storeLatency:   NewHistogramVec("scorecard_store_operation_duration_seconds", "Scorecard store operation latency in seconds by op.", []string{"op"}, nil),
		catalogSkipped: NewCounterVec("scorecard_catalog_skipped_total", "Metadata sidecars skipped while listing, by reason.", []string{"reason"}),
		catalogSize:    NewGauge("scorecard_catalog_active", "Active scorecards seen by the last listing."),
		sseClients:     NewGauge("scorecard_sse_clients", "Connected SSE clients."),
		sseDropped:     NewCounter("scorecard_sse_dropped_total", "SSE messages dropped because a client buffer was full."),
		busMessages:    NewCounterVec("scorecard_bus_messages_total", "Realtime bus messages by direction/status.", []string{"direction", "status"}),
	}
	m.exposition = []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiErrors,
		m.storeOps, m.storeLatency,
		m.catalogSkipped, m.catalogSize,
		m.sseClients, m.sseDropped, m.busMessages,
	}
	return m
}

// StartServer serves the exposition on its own listener until ctx is done.
// A blank addr leaves the metrics reachable only through the API router.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	addr = strings.TrimSpace(addr)
	if m == nil || addr == "" {
		return
	}
	if log == nil {
		log = logger.NewNop()
	}
	srv := &http.Server{Addr: addr, Handler: http.HandlerFunc(m.WriteHTTP), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		log.Info("metrics listener started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics listener failed", "addr", addr, "error", err)
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, pw := range m.exposition {
		if err := pw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method, route, status = orDefault(method, "UNKNOWN"), orDefault(route, "unknown"), orDefault(status, "0")
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	if strings.HasPrefix(status, "5") {
		m.apiErrors.Inc()
	}
}

// TrackInflight counts one in-flight request; call the returned func when it ends.
func (m *Metrics) TrackInflight() func() {
	if m == nil {
		return func() {}
	}
	m.apiInflight.Inc()
	return m.apiInflight.Dec
}

// ObserveStoreOp records one scorecard store or catalog operation. status is
// "ok" or an error class such as "not_found".
func (m *Metrics) ObserveStoreOp(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.storeOps.Inc(op, status)
	m.storeLatency.Observe(dur.Seconds(), op)
}

func (m *Metrics) StoreOpCount(op, status string) float64 {
	if m == nil {
		return 0
	}
	return m.storeOps.Value(op, status)
}

func (m *Metrics) IncCatalogSkipped(reason string) {
	if m != nil {
		m.catalogSkipped.Inc(reason)
	}
}

func (m *Metrics) CatalogSkipped(reason string) float64 {
	if m == nil {
		return 0
	}
	return m.catalogSkipped.Value(reason)
}

func (m *Metrics) SetCatalogSize(n int) {
	if m != nil {
		m.catalogSize.Set(float64(n))
	}
}

func (m *Metrics) SetSSEClients(n int) {
	if m != nil {
		m.sseClients.Set(float64(n))
	}
}

func (m *Metrics) IncSSEDropped() {
	if m != nil {
		m.sseDropped.Inc()
	}
}

func (m *Metrics) IncBusMessage(direction, status string) {
	if m != nil {
		m.busMessages.Inc(direction, status)
	}
}
