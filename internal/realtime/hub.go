package realtime

import (
	"strings"
	"sync"
	"time"

	"github.com/yungbote/scorecard-dashboard/internal/observability"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

const heartbeatInterval = 15 * time.Second

// SSEHub fans messages out to the clients subscribed to their channel.
type SSEHub struct {
	log       *logger.Logger
	metrics   *observability.Metrics
	heartbeat time.Duration

	mu      sync.RWMutex
	clients map[*SSEClient]struct{}
	topics  map[string]map[*SSEClient]struct{}
}

func NewSSEHub(log *logger.Logger, metrics *observability.Metrics) *SSEHub {
	if log == nil {
		log = logger.NewNop()
	}
	return &SSEHub{
		log:       log.With("component", "SSEHub"),
		metrics:   metrics,
		heartbeat: heartbeatInterval,
		clients:   map[*SSEClient]struct{}{},
		topics:    map[string]map[*SSEClient]struct{}{},
	}
}

// NewSSEClient registers a client with no subscriptions.
func (hub *SSEHub) NewSSEClient(user string) *SSEClient {
	c := newSSEClient(user)
	hub.mu.Lock()
	hub.clients[c] = struct{}{}
	n := len(hub.clients)
	hub.mu.Unlock()
	hub.metrics.SetSSEClients(n)
	return c
}

func (hub *SSEHub) ClientCount() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.clients)
}

// Subscribers reports how many clients listen on channel.
func (hub *SSEHub) Subscribers(channel string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.topics[channel])
}

// AddChannel subscribes client to channel. Blank channels are ignored.
func (hub *SSEHub) AddChannel(client *SSEClient, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()
	subs := hub.topics[channel]
	if subs == nil {
		subs = map[*SSEClient]struct{}{}
		hub.topics[channel] = subs
	}
	subs[client] = struct{}{}
	client.channels[channel] = struct{}{}
	hub.log.Debug("SSE client subscribed", "client_id", client.ID, "channel", channel)
}

func (hub *SSEHub) RemoveChannel(client *SSEClient, channel string) {
	channel = strings.TrimSpace(channel)
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.dropLocked(client, channel)
}

func (hub *SSEHub) dropLocked(client *SSEClient, channel string) {
	delete(client.channels, channel)
	subs := hub.topics[channel]
	delete(subs, client)
	if len(subs) == 0 {
		delete(hub.topics, channel)
	}
}

// RemoveClient unsubscribes client everywhere and forgets it.
func (hub *SSEHub) RemoveClient(client *SSEClient) {
	hub.mu.Lock()
	for ch := range client.channels {
		hub.dropLocked(client, ch)
	}
	delete(hub.clients, client)
	n := len(hub.clients)
	hub.mu.Unlock()
	hub.metrics.SetSSEClients(n)
	hub.log.Debug("SSE client removed", "client_id", client.ID)
}

// Broadcast delivers msg to every subscriber of its channel. A client whose
// buffer is full misses the message.
func (hub *SSEHub) Broadcast(msg SSEMessage) {
	if msg.Channel == "" {
		return
	}
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	for c := range hub.topics[msg.Channel] {
		if !c.offer(msg) {
			hub.metrics.IncSSEDropped()
			hub.log.Warn("SSE buffer full; message dropped", "client_id", c.ID, "event", string(msg.Event))
		}
	}
}

// CloseClient removes client and closes its outbound channel. Safe to call twice.
func (hub *SSEHub) CloseClient(client *SSEClient) {
	client.once.Do(func() {
		close(client.done)
		hub.RemoveClient(client)
		close(client.Outbound)
	})
}
