package boxscore

import (
	"time"

	"github.com/fortuna/themis/internal/league"
)

// Status is a game's lifecycle state as derived from the provider.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusHalftime   Status = "halftime"
	StatusFinal      Status = "final"

	// StatusUnknown marks a provider status name outside the known set.
	// Callers must treat it as non-actionable: no update, no completion.
	StatusUnknown Status = "unknown"
)

// Live reports whether the game is underway (including halftime).
func (s Status) Live() bool {
	return s == StatusInProgress || s == StatusHalftime
}

// Provider status names.
const (
	rawStatusFinal      = "STATUS_FINAL"
	rawStatusInProgress = "STATUS_IN_PROGRESS"
	rawStatusHalftime   = "STATUS_HALFTIME"
	rawStatusScheduled  = "STATUS_SCHEDULED"
)

// Classify derives a game's status from a provider event block.
//
// The status name is only trusted when the event's start date falls within
// [refDate, refDate+1d]; the provider is known to return stale entries from
// earlier rounds and placeholder entries for future dates, and those must
// never trigger event updates. Outside the window, and for unparseable
// dates, the game is treated as scheduled.
func Classify(event map[string]interface{}, refDate time.Time, lg league.League) Status {
	start, ok := parseEventDate(extractString(event, "date"), lg)
	if !ok {
		return StatusScheduled
	}

	if !withinDayWindow(start, refDate) {
		return StatusScheduled
	}

	return mapStatusName(rawStatusName(event))
}

// StatusIndex classifies every status block a normalizer can find in a
// document, keyed by game id. The result is scoped to one pass and never
// cached across passes.
func StatusIndex(n Normalizer, doc map[string]interface{}, refDate time.Time, lg league.League) map[string]Status {
	index := make(map[string]Status)
	for _, block := range n.StatusBlocks(doc) {
		id := extractString(block, "id")
		if id == "" {
			continue
		}
		index[id] = Classify(block, refDate, lg)
	}
	return index
}

// rawStatusName digs the status name out of an event block. Basketball
// events carry it at statusType.name; football at status.type.name.
func rawStatusName(event map[string]interface{}) string {
	if name := extractString(extractMap(event, "statusType"), "name"); name != "" {
		return name
	}
	return extractString(extractMap(extractMap(event, "status"), "type"), "name")
}

func mapStatusName(name string) Status {
	switch name {
	case rawStatusFinal:
		return StatusFinal
	case rawStatusInProgress:
		return StatusInProgress
	case rawStatusHalftime:
		return StatusHalftime
	case rawStatusScheduled:
		return StatusScheduled
	case "":
		return StatusScheduled
	default:
		return StatusUnknown
	}
}

func parseEventDate(raw string, lg league.League) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range lg.DateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// withinDayWindow checks start's calendar date against [ref, ref+1d],
// compared by date only; the one-day slack absorbs UTC offsets.
func withinDayWindow(start, ref time.Time) bool {
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}

	startDay := day(start)
	refDay := day(ref)
	return !startDay.Before(refDay) && !startDay.After(refDay.AddDate(0, 0, 1))
}
