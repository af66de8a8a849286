package league

import "strings"

// Sport selects which box-score layout a league uses.
type Sport string

const (
	Basketball Sport = "basketball"
	Football   Sport = "football"
)

// League describes one supported competition and how to reach its provider
// endpoints. The ID is the backend's league identifier for betting events.
type League struct {
	ID             int
	Slug           string
	Sport          Sport
	ScoreboardPath string // appended to the scoreboard API base
	BoxscorePath   string // appended to the boxscore CDN base
	DateLayouts    []string

	// SearchForwardDays widens the scoreboard lookup: when the reference
	// date has no events, scan forward day by day up to this many days and
	// use the first date that has games. Football schedules are sparse
	// enough to need this; basketball plays near-daily.
	SearchForwardDays int

	// PacificDateShift converts the reference date to US/Pacific and steps
	// back one day before querying the scoreboard. College basketball
	// slates roll over on Pacific time.
	PacificDateShift bool
}

// Event date layouts the provider has been observed to use. Basketball
// timestamps carry seconds, football omits them. Both are attempted for
// every league.
const (
	dateLayoutSeconds = "2006-01-02T15:04:05Z"
	dateLayoutMinutes = "2006-01-02T15:04Z"
)

var (
	NBA = League{
		ID:             7,
		Slug:           "nba",
		Sport:          Basketball,
		ScoreboardPath: "basketball/nba",
		BoxscorePath:   "nba",
		DateLayouts:    []string{dateLayoutSeconds, dateLayoutMinutes},
	}

	CBB = League{
		ID:               8,
		Slug:             "cbb",
		Sport:            Basketball,
		ScoreboardPath:   "basketball/mens-college-basketball",
		BoxscorePath:     "mens-college-basketball",
		DateLayouts:      []string{dateLayoutSeconds, dateLayoutMinutes},
		PacificDateShift: true,
	}

	NFL = League{
		ID:                9,
		Slug:              "nfl",
		Sport:             Football,
		ScoreboardPath:    "football/nfl",
		BoxscorePath:      "nfl",
		DateLayouts:       []string{dateLayoutMinutes, dateLayoutSeconds},
		SearchForwardDays: 14,
	}
)

// All lists every supported league in processing order.
var All = []League{NBA, NFL, CBB}

// FromSlug resolves a league by its short name.
func FromSlug(slug string) (League, bool) {
	for _, lg := range All {
		if strings.EqualFold(lg.Slug, slug) {
			return lg, true
		}
	}
	return League{}, false
}

// FromID resolves a league by its backend identifier.
func FromID(id int) (League, bool) {
	for _, lg := range All {
		if lg.ID == id {
			return lg, true
		}
	}
	return League{}, false
}

// ParseSlugs converts a comma-separated league list into League values,
// silently dropping unknown entries.
func ParseSlugs(csv string) []League {
	var leagues []League
	for _, part := range strings.Split(csv, ",") {
		if lg, ok := FromSlug(strings.TrimSpace(part)); ok {
			leagues = append(leagues, lg)
		}
	}
	return leagues
}
