package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
	"github.com/yungbote/scorecard-dashboard/internal/realtime"
)

type RealtimeHandler struct {
	Log *logger.Logger
	Hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &RealtimeHandler{Log: log.With("handler", "RealtimeHandler"), Hub: hub}
}

// GET /api/sse/stream
//
// Every stream is subscribed to the scorecards channel; there is no per-user
// channel because saved scorecards are shared by everyone.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	user := requestUser(c)
	client := h.Hub.NewSSEClient(user)
	h.Hub.AddChannel(client, realtime.ChannelScorecards)
	h.Log.Info("SSEStream open", "user", user, "client_id", client.ID.String())

	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	h.Hub.CloseClient(client)
	h.Log.Debug("SSEStream closed", "client_id", client.ID.String())
}
