// Package domain defines the entities shared between the activity framework,
// the orchestration layer and the persistence collaborators.
package domain

import (
	"context"
	"time"
)

// ActivityState is the lifecycle state of an activity.
type ActivityState string

const (
	StateDraft     ActivityState = "draft"
	StatePublished ActivityState = "published"
	StateActive    ActivityState = "active"
	StateExpired   ActivityState = "expired"
)

// AllStates lists every lifecycle state in order.
var AllStates = []ActivityState{StateDraft, StatePublished, StateActive, StateExpired}

// Valid reports whether s is one of the four lifecycle states.
func (s ActivityState) Valid() bool {
	switch s {
	case StateDraft, StatePublished, StateActive, StateExpired:
		return true
	}
	return false
}

// Activity is an interactive activity within a session. Config holds the
// kind-specific configuration document validated against the kind's schema;
// Metadata holds operational settings (duration_seconds, max_responses, ...).
type Activity struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"session_id"`
	Kind       string         `json:"kind"`
	Config     map[string]any `json:"config"`
	OrderIndex int            `json:"order_index"`
	State      ActivityState  `json:"state"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Response is one participant's processed submission against an activity.
// Payload is the normalized document produced by the kind's response
// processing; raw participant input is never stored.
type Response struct {
	ID            string         `json:"id"`
	SessionID     string         `json:"session_id"`
	ActivityID    string         `json:"activity_id"`
	ParticipantID string         `json:"participant_id"`
	Payload       map[string]any `json:"payload"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ResponseSummary aggregates response counts for an activity.
type ResponseSummary struct {
	TotalResponses     int        `json:"total_responses"`
	UniqueParticipants int        `json:"unique_participants"`
	LastUpdated        *time.Time `json:"last_updated,omitempty"`
}

// Store captures the persistence operations the orchestrator relies on.
// Implementations own transaction boundaries; the framework never retains a
// record across calls.
type Store interface {
	CreateActivity(ctx context.Context, activity *Activity) error
	GetActivity(ctx context.Context, id string) (*Activity, error)
	ListSessionActivities(ctx context.Context, sessionID string, offset, limit int) ([]Activity, error)
	UpdateActivity(ctx context.Context, activity *Activity) error
	DeleteActivity(ctx context.Context, id string) error
	// ListDueActive returns the active activities whose expiration time has
	// passed as of now.
	ListDueActive(ctx context.Context, now time.Time) ([]Activity, error)

	CreateResponse(ctx context.Context, response *Response) error
	ListActivityResponses(ctx context.Context, activityID string) ([]Response, error)
	SummarizeResponses(ctx context.Context, activityID string) (*ResponseSummary, error)
}
