package realtime

import (
	"sync"

	"github.com/google/uuid"
)

const outboundBuffer = 10

// SSEClient is one connected event-stream consumer. Outbound is closed when
// the hub closes the client.
type SSEClient struct {
	ID       uuid.UUID
	User     string
	Outbound chan SSEMessage

	// channels is guarded by the owning hub's lock.
	channels map[string]struct{}
	done     chan struct{}
	once     sync.Once
}

func newSSEClient(user string) *SSEClient {
	return &SSEClient{
		ID:       uuid.New(),
		User:     user,
		Outbound: make(chan SSEMessage, outboundBuffer),
		channels: map[string]struct{}{},
		done:     make(chan struct{}),
	}
}

// offer queues msg without blocking and reports whether it fit.
func (c *SSEClient) offer(msg SSEMessage) bool {
	select {
	case c.Outbound <- msg:
		return true
	default:
		return false
	}
}
