package boxscore

import "github.com/fortuna/themis/internal/league"

// ParseScoreboard extracts the day's games from a raw scoreboard
// document. Events with no competitions contribute nothing; competitor
// details are best-effort and may be empty.
func ParseScoreboard(doc map[string]interface{}, lg league.League) []GameRecord {
	var games []GameRecord
	for _, rawEvent := range extractArray(doc, "events") {
		event := asMap(rawEvent)
		start, _ := parseEventDate(extractString(event, "date"), lg)

		for _, rawComp := range extractArray(event, "competitions") {
			comp := asMap(rawComp)
			id := extractString(comp, "id")
			if id == "" {
				continue
			}

			game := GameRecord{
				ID:        id,
				StartTime: start,
				Status:    StatusScheduled,
			}
			for _, rawCompetitor := range extractArray(comp, "competitors") {
				competitor := asMap(rawCompetitor)
				abbrev := extractString(extractMap(competitor, "team"), "abbreviation")
				switch extractString(competitor, "homeAway") {
				case "home":
					game.HomeTeam = abbrev
				case "away":
					game.AwayTeam = abbrev
				}
			}
			games = append(games, game)
		}
	}
	return games
}

// GameIDs returns just the identifiers from a parsed scoreboard.
func GameIDs(games []GameRecord) []string {
	ids := make([]string, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	return ids
}
