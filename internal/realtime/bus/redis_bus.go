package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/scorecard-dashboard/internal/observability"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
	"github.com/yungbote/scorecard-dashboard/internal/realtime"
)

const (
	DefaultChannel = "scorecard-sse"
	dialTimeout    = 5 * time.Second
)

var errNotReady = errors.New("redis bus not initialized")

type RedisConfig struct {
	// Addr is host:port or a redis:// URL.
	Addr    string
	Channel string
}

// RedisBus relays SSE messages over one Redis pub/sub channel.
type RedisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	metrics *observability.Metrics
}

func NewRedisBus(log *logger.Logger, cfg RedisConfig, metrics *observability.Metrics) (*RedisBus, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	opts, err := redisOptions(cfg.Addr)
	if err != nil {
		return nil, err
	}
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}

	rdb := goredis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	return &RedisBus{
		log:     log.With("service", "RedisBus", "channel", channel),
		rdb:     rdb,
		channel: channel,
		metrics: metrics,
	}, nil
}

func redisOptions(addr string) (*goredis.Options, error) {
	addr = strings.TrimSpace(addr)
	switch {
	case addr == "":
		return nil, errors.New("missing REDIS_ADDR")
	case strings.Contains(addr, "://"):
		opts, err := goredis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_ADDR: %w", err)
		}
		opts.DialTimeout = dialTimeout
		return opts, nil
	default:
		return &goredis.Options{Addr: addr, DialTimeout: dialTimeout}, nil
	}
}

func (b *RedisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b == nil || b.rdb == nil {
		return errNotReady
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode bus message: %w", err)
	}
	return b.rdb.Publish(ctx, b.channel, payload).Err()
}

// StartForwarder subscribes and hands every decoded message to onMsg until
// ctx is done. The subscription is confirmed before it returns.
func (b *RedisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if b == nil || b.rdb == nil {
		return errNotReady
	}
	if onMsg == nil {
		return errors.New("onMsg callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	go b.forward(ctx, sub, onMsg)
	return nil
}

func (b *RedisBus) forward(ctx context.Context, sub *goredis.PubSub, onMsg func(m realtime.SSEMessage)) {
	defer sub.Close()
	in := sub.Channel()
	for {
		var m *goredis.Message
		select {
		case <-ctx.Done():
			return
		case m = <-in:
		}
		if m == nil {
			return
		}
		msg, err := decodeMessage(m.Payload)
		if err != nil {
			b.metrics.IncBusMessage("in", "bad_payload")
			b.log.Warn("dropping bus payload", "error", err)
			continue
		}
		onMsg(msg)
	}
}

func decodeMessage(payload string) (realtime.SSEMessage, error) {
	var msg realtime.SSEMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return realtime.SSEMessage{}, err
	}
	if msg.Channel == "" || msg.Event == "" {
		return realtime.SSEMessage{}, errors.New("message without channel or event")
	}
	return msg, nil
}

func (b *RedisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
