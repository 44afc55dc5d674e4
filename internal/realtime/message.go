package realtime

type SSEEvent string

const (
	SSEEventScorecardSaved       SSEEvent = "ScorecardSaved"
	SSEEventScorecardOverwritten SSEEvent = "ScorecardOverwritten"
	SSEEventScorecardArchived    SSEEvent = "ScorecardArchived"
)

// ChannelScorecards carries every scorecard change.
const ChannelScorecards = "scorecards"

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}
