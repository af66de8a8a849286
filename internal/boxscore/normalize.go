package boxscore

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/themis/internal/league"
)

// ErrNotAvailable signals that the provider has not published the box
// score yet. Callers retry on the next pass instead of treating it as a
// fetch or parse failure.
var ErrNotAvailable = errors.New("box score not yet available")

// Normalizer converts a league's raw box-score document into uniform
// player snapshots.
type Normalizer interface {
	Normalize(doc map[string]interface{}) ([]PlayerSnapshot, error)
	StatusBlocks(doc map[string]interface{}) []map[string]interface{}
}

// ForLeague returns the normalizer matching a league's sport.
func ForLeague(lg league.League, logger *zap.Logger) Normalizer {
	if lg.Sport == league.Football {
		return NewFootballNormalizer(logger)
	}
	return NewBasketballNormalizer(logger)
}

// teamPlayers pulls gamepackageJSON.boxscore.players out of a raw
// document. Exactly two team entries are required; anything else means
// the provider has not published the box score for this game yet.
func teamPlayers(doc map[string]interface{}) ([]map[string]interface{}, error) {
	gamepackage := extractMap(doc, "gamepackageJSON")
	players := extractArray(extractMap(gamepackage, "boxscore"), "players")
	if len(players) != 2 {
		return nil, ErrNotAvailable
	}

	teams := make([]map[string]interface{}, 2)
	for i, entry := range players {
		teams[i] = asMap(entry)
	}
	return teams, nil
}

func teamAbbreviation(teamEntry map[string]interface{}) string {
	return extractString(extractMap(teamEntry, "team"), "abbreviation")
}

// athleteSnapshot builds one snapshot from a category athlete entry.
// Returns false when the athlete's value list does not line up with the
// category's key list; the caller skips the athlete and moves on.
func athleteSnapshot(entry map[string]interface{}, keys, labels []string, category, team, opponent string, logger *zap.Logger) (PlayerSnapshot, bool) {
	athlete := extractMap(entry, "athlete")
	name := extractString(athlete, "displayName")
	if name == "" {
		return PlayerSnapshot{}, false
	}

	stats := extractStrings(entry, "stats")
	stats = padAdjustedQBR(keys, stats)
	if len(stats) != len(keys) {
		logger.Warn("athlete stat count does not match category keys",
			zap.String("player", name),
			zap.String("category", category),
			zap.Int("keys", len(keys)),
			zap.Int("values", len(stats)))
		return PlayerSnapshot{}, false
	}

	rows := make([]StatRow, 0, len(keys))
	for i, key := range keys {
		label := key
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}
		rows = append(rows, StatRow{Key: key, Label: label, Value: stats[i]})
	}

	return PlayerSnapshot{
		Name:     name,
		Team:     team,
		Opponent: opponent,
		Meta: PlayerMeta{
			Starter:    extractBool(entry, "starter"),
			DidNotPlay: extractBool(entry, "didNotPlay"),
			Ejected:    extractBool(entry, "ejected"),
			Active:     extractBool(entry, "active"),
			Reason:     extractString(entry, "reason"),
			Jersey:     extractString(athlete, "jersey"),
			Category:   category,
		},
		Rows: rows,
	}, true
}

// padAdjustedQBR works around a provider quirk: quarterback lines that
// include adjQBR sometimes arrive with one value fewer than keys. The
// final value is duplicated so the lists line up again.
func padAdjustedQBR(keys, stats []string) []string {
	if len(stats)+1 != len(keys) || len(stats) == 0 {
		return stats
	}
	for _, key := range keys {
		if key == "adjQBR" {
			return append(stats, stats[len(stats)-1])
		}
	}
	return stats
}

// BasketballNormalizer handles the single-category basketball layout:
// one statistics block per team, one row set per player.
type BasketballNormalizer struct {
	logger *zap.Logger
}

func NewBasketballNormalizer(logger *zap.Logger) *BasketballNormalizer {
	return &BasketballNormalizer{logger: logger}
}

func (n *BasketballNormalizer) Normalize(doc map[string]interface{}) ([]PlayerSnapshot, error) {
	teams, err := teamPlayers(doc)
	if err != nil {
		return nil, err
	}

	abbrevs := []string{teamAbbreviation(teams[0]), teamAbbreviation(teams[1])}

	var snapshots []PlayerSnapshot
	for i, teamEntry := range teams {
		stats := extractArray(teamEntry, "statistics")
		if len(stats) == 0 {
			continue
		}

		category := asMap(stats[0])
		keys := extractStrings(category, "keys")
		labels := extractStrings(category, "labels")
		if len(labels) == 0 {
			labels = extractStrings(category, "names")
		}

		for _, raw := range extractArray(category, "athletes") {
			snapshot, ok := athleteSnapshot(asMap(raw), keys, labels, "", abbrevs[i], abbrevs[1-i], n.logger)
			if !ok {
				continue
			}
			snapshots = append(snapshots, snapshot)
		}
	}
	return snapshots, nil
}

// StatusBlocks returns the season-series event entries carrying the
// game's status for basketball documents.
func (n *BasketballNormalizer) StatusBlocks(doc map[string]interface{}) []map[string]interface{} {
	gamepackage := extractMap(doc, "gamepackageJSON")
	series := extractArray(gamepackage, "seasonseries")
	if len(series) == 0 {
		return nil
	}

	var blocks []map[string]interface{}
	for _, raw := range extractArray(asMap(series[0]), "events") {
		blocks = append(blocks, asMap(raw))
	}
	return blocks
}

// FootballNormalizer handles the multi-category football layout. The
// same player shows up under passing, rushing, receiving and so on, so
// category rows are merged into one snapshot per name.
type FootballNormalizer struct {
	logger *zap.Logger
}

func NewFootballNormalizer(logger *zap.Logger) *FootballNormalizer {
	return &FootballNormalizer{logger: logger}
}

func (n *FootballNormalizer) Normalize(doc map[string]interface{}) ([]PlayerSnapshot, error) {
	teams, err := teamPlayers(doc)
	if err != nil {
		return nil, err
	}

	abbrevs := []string{teamAbbreviation(teams[0]), teamAbbreviation(teams[1])}

	var order []string
	merged := make(map[string]*PlayerSnapshot)

	for i, teamEntry := range teams {
		for _, rawCategory := range extractArray(teamEntry, "statistics") {
			category := asMap(rawCategory)
			categoryName := extractString(category, "name")
			keys := extractStrings(category, "keys")
			labels := extractStrings(category, "labels")
			if len(labels) == 0 {
				labels = extractStrings(category, "names")
			}

			for _, raw := range extractArray(category, "athletes") {
				snapshot, ok := athleteSnapshot(asMap(raw), keys, labels, categoryName, abbrevs[i], abbrevs[1-i], n.logger)
				if !ok {
					continue
				}

				if existing, seen := merged[snapshot.Name]; seen {
					existing.AppendRows(snapshot.Rows)
					continue
				}
				copied := snapshot
				merged[snapshot.Name] = &copied
				order = append(order, snapshot.Name)
			}
		}
	}

	snapshots := make([]PlayerSnapshot, 0, len(order))
	for _, name := range order {
		snapshots = append(snapshots, *merged[name])
	}
	return snapshots, nil
}

// StatusBlocks returns the header competition block carrying the game's
// status for football documents.
func (n *FootballNormalizer) StatusBlocks(doc map[string]interface{}) []map[string]interface{} {
	gamepackage := extractMap(doc, "gamepackageJSON")
	competitions := extractArray(extractMap(gamepackage, "header"), "competitions")
	if len(competitions) == 0 {
		return nil
	}
	return []map[string]interface{}{asMap(competitions[0])}
}
