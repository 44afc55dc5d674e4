package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseRatio(t *testing.T) {
	cases := map[string]float64{
		"":     defaultSampleRatio,
		"nope": defaultSampleRatio,
		"0.5":  0.5,
		" 1 ":  1,
		"-2":   0,
		"3":    1,
	}
	for raw, want := range cases {
		if got := parseRatio(raw); got != want {
			t.Fatalf("parseRatio(%q): want=%v got=%v", raw, want, got)
		}
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" authorization = Bearer x ,broken,=v,k=, tenant=ops")
	want := map[string]string{"authorization": "Bearer x", "tenant": "ops"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("parseHeaders (-want +got):\n%s", diff)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty headers should be nil")
	}
}

func TestWithEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_SAMPLER_RATIO", "0.25")
	cfg := OtelConfig{}.WithEnv()
	if !cfg.Enabled || cfg.Endpoint != "collector:4318" || cfg.SampleRatio != 0.25 {
		t.Fatalf("WithEnv: got=%+v", cfg)
	}
	if cfg.ServiceName != "scorecard-dashboard" {
		t.Fatalf("service name: got=%q", cfg.ServiceName)
	}
}

func TestSpanHelpersWithoutProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test.op")
	if ctx == nil || span == nil {
		t.Fatalf("StartSpan returned nil")
	}
	EndSpan(span, errors.New("boom"))
}
