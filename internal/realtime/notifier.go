package realtime

import (
	"context"
	"time"

	"github.com/yungbote/scorecard-dashboard/internal/modules/scorecard"
	"github.com/yungbote/scorecard-dashboard/internal/observability"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

const publishTimeout = 2 * time.Second

// Publisher fans a message out to every replica, including this one.
type Publisher interface {
	Publish(ctx context.Context, msg SSEMessage) error
}

// Notifier turns store events into SSE messages. With a Publisher the
// message travels through it; otherwise it is broadcast on the local hub.
type Notifier struct {
	log     *logger.Logger
	hub     *SSEHub
	pub     Publisher
	metrics *observability.Metrics
}

func NewNotifier(log *logger.Logger, hub *SSEHub, pub Publisher, metrics *observability.Metrics) *Notifier {
	if log == nil {
		log = logger.NewNop()
	}
	return &Notifier{
		log:     log.With("service", "ScorecardNotifier"),
		hub:     hub,
		pub:     pub,
		metrics: metrics,
	}
}

func MessageFor(ev scorecard.Event) SSEMessage {
	return SSEMessage{Channel: ChannelScorecards, Event: SSEEvent(ev.Type), Data: ev}
}

// PublishScorecardEvent falls back to a local broadcast when the publisher fails.
func (n *Notifier) PublishScorecardEvent(ctx context.Context, ev scorecard.Event) {
	msg := MessageFor(ev)
	if n.pub != nil {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		err := n.pub.Publish(pctx, msg)
		cancel()
		if err == nil {
			n.metrics.IncBusMessage("out", "ok")
			return
		}
		n.metrics.IncBusMessage("out", "error")
		n.log.Warn("scorecard event publish failed; broadcasting locally", "event", string(ev.Type), "filename", ev.Filename, "error", err)
	}
	if n.hub != nil {
		n.hub.Broadcast(msg)
	}
}

// Forward is the bus callback that re-broadcasts remote messages locally.
func (n *Notifier) Forward(msg SSEMessage) {
	n.metrics.IncBusMessage("in", "ok")
	if n.hub != nil {
		n.hub.Broadcast(msg)
	}
}
