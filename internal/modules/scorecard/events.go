package scorecard

import (
	"context"

	"github.com/yungbote/scorecard-dashboard/internal/domain"
)

type EventType string

const (
	EventSaved       EventType = "ScorecardSaved"
	EventOverwritten EventType = "ScorecardOverwritten"
	EventArchived    EventType = "ScorecardArchived"
)

// Event announces a change to the set of saved scorecards.
type Event struct {
	Type     EventType                 `json:"type"`
	Filename string                    `json:"filename"`
	Metadata *domain.ScorecardMetadata `json:"metadata,omitempty"`
}

// EventSink receives store events after the change is persisted. Publishing
// must not block the caller for long and its failures never fail the operation.
type EventSink interface {
	PublishScorecardEvent(ctx context.Context, ev Event)
}

type nopSink struct{}

func (nopSink) PublishScorecardEvent(context.Context, Event) {}
