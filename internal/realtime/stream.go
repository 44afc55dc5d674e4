package realtime

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ServeHTTP streams the client's messages as server-sent events until the
// request ends or the client is closed.
func (hub *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *SSEClient) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	ticker := time.NewTicker(hub.heartbeat)
	defer ticker.Stop()

	emit := func(frame func(io.Writer) error) bool {
		if err := frame(w); err != nil {
			hub.log.Debug("SSE write failed", "client_id", client.ID, "error", err)
			return false
		}
		flusher.Flush()
		return true
	}

	if !emit(comment("connected")) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.done:
			return
		case <-ticker.C:
			if !emit(comment("ping")) {
				return
			}
		case msg, open := <-client.Outbound:
			if !open {
				return
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				hub.log.Warn("SSE message not encodable", "event", string(msg.Event), "error", err)
				continue
			}
			if !emit(event(msg.Event, payload)) {
				return
			}
		}
	}
}

func comment(text string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := fmt.Fprintf(w, ": %s\n\n", text)
		return err
	}
}

func event(name SSEEvent, payload []byte) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
		return err
	}
}
