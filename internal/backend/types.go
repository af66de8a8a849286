package backend

import "time"

// Event is the betting-event projection the event store exposes. The
// store owns the full record; this service only reads the fields it
// needs to reconcile and proposes transitions back.
type Event struct {
	ID         int       `json:"event_id"`
	PlayerName string    `json:"player_name"`
	StatType   string    `json:"stat_type"`
	LeagueID   int       `json:"league"`
	StartTime  time.Time `json:"start_time"`
	InProgress bool      `json:"in_progress"`
	IsComplete bool      `json:"is_complete"`
	Result     *float64  `json:"result,omitempty"`
}

// Open reports whether the event still accepts transitions.
func (e Event) Open() bool {
	return !e.IsComplete
}

// Action is a lifecycle transition proposed to the event store.
type Action string

const (
	// ActionUpdate records a provisional result and marks the event
	// in progress.
	ActionUpdate Action = "update"
	// ActionComplete finalizes the event with its result.
	ActionComplete Action = "complete"
	// ActionDNP closes the event with no result because the player
	// never appeared.
	ActionDNP Action = "dnp"
)

// Mutation is one proposed transition. Result is nil for DNP.
type Mutation struct {
	EventID int      `json:"event_id"`
	Action  Action   `json:"action"`
	Result  *float64 `json:"result,omitempty"`
}

// Float64 is a convenience for building Mutation results.
func Float64(v float64) *float64 { return &v }
