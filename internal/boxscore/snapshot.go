package boxscore

import "time"

// GameRecord is one game discovered on a scoreboard. Status starts as
// scheduled and is refreshed from the box-score document on every pass.
type GameRecord struct {
	ID        string
	StartTime time.Time
	Status    Status
	HomeTeam  string
	AwayTeam  string
}

// StatRow is one raw statistic as the provider reports it: a machine key,
// a display label, and the unparsed value string.
type StatRow struct {
	Key   string
	Label string
	Value string
}

// PlayerMeta carries the provider's per-athlete flags.
type PlayerMeta struct {
	Starter    bool
	DidNotPlay bool
	Ejected    bool
	Active     bool
	Reason     string
	Jersey     string
	Category   string
}

// PlayerSnapshot is one player's full stat line from a single box-score
// fetch. Snapshots are rebuilt from scratch on every pass and never
// persisted by the pipeline.
type PlayerSnapshot struct {
	Name       string
	Team       string
	Opponent   string
	Meta       PlayerMeta
	Rows       []StatRow
	GameID     string
	GameStatus Status
}

// Row returns the first row with the given key, if present.
func (s *PlayerSnapshot) Row(key string) (StatRow, bool) {
	for _, row := range s.Rows {
		if row.Key == key {
			return row, true
		}
	}
	return StatRow{}, false
}

// AppendRows merges additional rows into the snapshot. Football players
// appear in several category blocks and their rows accumulate rather than
// overwrite.
func (s *PlayerSnapshot) AppendRows(rows []StatRow) {
	s.Rows = append(s.Rows, rows...)
}
