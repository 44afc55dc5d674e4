package observability

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// series is one metric family in Prometheus text format: a name, a type, a
// fixed label schema and one value per label set.
type series struct {
	name       string
	help       string
	kind       string
	labelNames []string

	mu     sync.RWMutex
	values map[string]float64
}

func newSeries(kind, name, help string, labels []string) *series {
	s := &series{name: name, help: help, kind: kind, labelNames: labels, values: map[string]float64{}}
	if len(labels) == 0 {
		s.values[""] = 0
	}
	return s
}

func (s *series) add(delta float64, labels []string) {
	key := labelString(s.labelNames, labels)
	s.mu.Lock()
	s.values[key] += delta
	s.mu.Unlock()
}

func (s *series) set(v float64, labels []string) {
	key := labelString(s.labelNames, labels)
	s.mu.Lock()
	s.values[key] = v
	s.mu.Unlock()
}

func (s *series) get(labels []string) float64 {
	key := labelString(s.labelNames, labels)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

func (s *series) write(w io.Writer) error {
	if err := writeHeader(w, s.name, s.help, s.kind); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range sortedKeys(s.values) {
		if _, err := fmt.Fprintf(w, "%s%s %g\n", s.name, k, s.values[k]); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(w io.Writer, name, help, kind string) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
	return err
}

// CounterVec is a counter partitioned by labels.
type CounterVec struct{ s *series }

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{s: newSeries("counter", name, help, labels)}
}

func (c *CounterVec) Inc(values ...string) { c.Add(1, values...) }

func (c *CounterVec) Add(v float64, values ...string) {
	if c != nil {
		c.s.add(v, values)
	}
}

// Value returns the current count for one label set.
func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	return c.s.get(values)
}

func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.s.write(w)
}

type Counter struct{ s *series }

func NewCounter(name, help string) *Counter {
	return &Counter{s: newSeries("counter", name, help, nil)}
}

func (c *Counter) Inc() { c.Add(1) }

func (c *Counter) Add(v float64) {
	if c != nil {
		c.s.add(v, nil)
	}
}

func (c *Counter) Value() float64 {
	if c == nil {
		return 0
	}
	return c.s.get(nil)
}

func (c *Counter) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.s.write(w)
}

type Gauge struct{ s *series }

func NewGauge(name, help string) *Gauge {
	return &Gauge{s: newSeries("gauge", name, help, nil)}
}

func (g *Gauge) Set(v float64) {
	if g != nil {
		g.s.set(v, nil)
	}
}

func (g *Gauge) Inc() { g.add(1) }
func (g *Gauge) Dec() { g.add(-1) }

func (g *Gauge) add(v float64) {
	if g != nil {
		g.s.add(v, nil)
	}
}

func (g *Gauge) Value() float64 {
	if g == nil {
		return 0
	}
	return g.s.get(nil)
}

func (g *Gauge) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	return g.s.write(w)
}

var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// HistogramVec keeps cumulative bucket counts per label set.
type HistogramVec struct {
	name       string
	help       string
	labelNames []string
	buckets    []float64

	mu     sync.Mutex
	values map[string]*histogram
}

type histogram struct {
	counts []uint64 // per bucket, then +Inf
	sum    float64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}
	return &HistogramVec{name: name, help: help, labelNames: labels, buckets: buckets, values: map[string]*histogram{}}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	key := labelString(h.labelNames, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	hist := h.values[key]
	if hist == nil {
		hist = &histogram{counts: make([]uint64, len(h.buckets)+1)}
		h.values[key] = hist
	}
	hist.sum += v
	for i, b := range h.buckets {
		if v <= b {
			hist.counts[i]++
		}
	}
	hist.counts[len(h.buckets)]++
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if err := writeHeader(w, h.name, h.help, "histogram"); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, k := range sortedKeys(h.values) {
		hist := h.values[k]
		for i, n := range hist.counts {
			le := "+Inf"
			if i < len(h.buckets) {
				le = strconv.FormatFloat(h.buckets[i], 'g', -1, 64)
			}
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, le), n); err != nil {
				return err
			}
		}
		total := hist.counts[len(h.buckets)]
		if _, err := fmt.Fprintf(w, "%s_sum%s %g\n%s_count%s %d\n", h.name, k, hist.sum, h.name, k, total); err != nil {
			return err
		}
	}
	return nil
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// labelString renders values against names as {a="x",b="y"}. Missing values
// are reported as "unknown".
func labelString(names []string, values []string) string {
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, len(names))
	for i, name := range names {
		val := "unknown"
		if i < len(values) {
			val = values[i]
		}
		parts[i] = name + `="` + labelEscaper.Replace(val) + `"`
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// withLe adds the le label to an already rendered label set.
func withLe(labels string, le string) string {
	pair := `le="` + labelEscaper.Replace(le) + `"`
	if inner := strings.TrimSuffix(strings.TrimPrefix(labels, "{"), "}"); inner != "" {
		return "{" + inner + "," + pair + "}"
	}
	return "{" + pair + "}"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
