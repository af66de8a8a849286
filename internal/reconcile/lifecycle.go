package reconcile

import (
	"time"

	"github.com/fortuna/themis/internal/backend"
	"github.com/fortuna/themis/internal/boxscore"
)

// DNPGracePeriod is how long past an event's scheduled start a missing
// player is still treated as "game not started yet" rather than DNP.
const DNPGracePeriod = 3 * time.Hour

// Decide maps a matched event's game status and candidate result to a
// mutation. Scheduled and unknown statuses are non-actionable; events
// transition forward only, never backward.
func Decide(event backend.Event, status boxscore.Status, result float64) *backend.Mutation {
	if event.IsComplete {
		return nil
	}

	switch {
	case status == boxscore.StatusFinal:
		return &backend.Mutation{
			EventID: event.ID,
			Action:  backend.ActionComplete,
			Result:  backend.Float64(result),
		}
	case status.Live():
		return &backend.Mutation{
			EventID: event.ID,
			Action:  backend.ActionUpdate,
			Result:  backend.Float64(result),
		}
	default:
		return nil
	}
}

// DecideNotFound handles an event whose player matched no snapshot. Once
// the grace period after the scheduled start has elapsed the player is
// marked DNP with no result; before that the event is skipped and
// revisited next pass.
func DecideNotFound(event backend.Event, ref time.Time) *backend.Mutation {
	if event.IsComplete {
		return nil
	}
	if event.StartTime.IsZero() || ref.Sub(event.StartTime) <= DNPGracePeriod {
		return nil
	}
	return &backend.Mutation{
		EventID: event.ID,
		Action:  backend.ActionDNP,
	}
}
