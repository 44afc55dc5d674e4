package bus

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
	"github.com/yungbote/scorecard-dashboard/internal/realtime"
)

func TestDecodeMessage(t *testing.T) {
	msg, err := decodeMessage(`{"channel":"scorecards","event":"ScorecardArchived","data":{"filename":"a"}}`)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	if msg.Channel != realtime.ChannelScorecards || msg.Event != realtime.SSEEventScorecardArchived {
		t.Fatalf("decoded: got=%+v", msg)
	}
	for _, bad := range []string{"{", `{"event":"x"}`, `{"channel":"scorecards"}`} {
		if _, err := decodeMessage(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestNewRedisBusValidation(t *testing.T) {
	if _, err := NewRedisBus(nil, RedisConfig{Addr: "localhost:6379"}, nil); err == nil {
		t.Fatalf("expected error without logger")
	}
	if _, err := NewRedisBus(logger.NewNop(), RedisConfig{Addr: "  "}, nil); err == nil || !strings.Contains(err.Error(), "REDIS_ADDR") {
		t.Fatalf("expected missing REDIS_ADDR error, got=%v", err)
	}
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(" cache:6379 ")
	if err != nil || opts.Addr != "cache:6379" {
		t.Fatalf("plain addr: opts=%+v err=%v", opts, err)
	}
	opts, err = redisOptions("redis://:pw@cache:6380/2")
	if err != nil {
		t.Fatalf("url addr: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.DB != 2 || opts.Password != "pw" {
		t.Fatalf("url addr: got addr=%q db=%d", opts.Addr, opts.DB)
	}
	if opts.DialTimeout != dialTimeout {
		t.Fatalf("dial timeout: want=%v got=%v", dialTimeout, opts.DialTimeout)
	}
	if _, err := redisOptions("redis://cache:6380/notadb"); err == nil {
		t.Fatalf("expected error for bad db")
	}
}

func TestRedisBusNilSafe(t *testing.T) {
	var b *RedisBus
	if err := b.Publish(context.Background(), realtime.SSEMessage{}); err == nil {
		t.Fatalf("expected error publishing on nil bus")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close on nil bus: %v", err)
	}
}

func TestRedisBusRoundTripIntegration(t *testing.T) {
	if !strings.EqualFold(os.Getenv("SC_RUN_REDIS_INTEGRATION"), "true") {
		t.Skip("set SC_RUN_REDIS_INTEGRATION=true and REDIS_ADDR to run")
	}
	b, err := NewRedisBus(logger.NewNop(), RedisConfig{Addr: os.Getenv("REDIS_ADDR"), Channel: "scorecard-sse-test"}, nil)
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan realtime.SSEMessage, 1)
	if err := b.StartForwarder(ctx, func(m realtime.SSEMessage) { got <- m }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	want := realtime.SSEMessage{Channel: realtime.ChannelScorecards, Event: realtime.SSEEventScorecardSaved}
	if err := b.Publish(ctx, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case m := <-got:
		if m.Event != want.Event {
			t.Fatalf("event: want=%s got=%s", want.Event, m.Event)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for forwarded message")
	}
}
