package reconcile

import (
	"strings"
	"unicode"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/fortuna/themis/internal/boxscore"
	"github.com/fortuna/themis/internal/stats"
)

// DefaultMatchThreshold is the minimum fuzzy similarity (0-100) accepted
// when a betting event's player name has no exact snapshot match.
const DefaultMatchThreshold = 85

// PlayerStats pairs a player's snapshot with its resolved stat line.
type PlayerStats struct {
	Snapshot boxscore.PlayerSnapshot
	Line     stats.Line
}

// SnapshotSet is one pass's accumulated player data for a league, keyed
// by normalized player name. A name colliding across two simultaneous
// games overwrites; last write wins.
type SnapshotSet map[string]PlayerStats

// Add inserts a player, replacing any earlier snapshot under the same
// normalized name.
func (s SnapshotSet) Add(snapshot boxscore.PlayerSnapshot, line stats.Line) {
	s[NormalizeName(snapshot.Name)] = PlayerStats{Snapshot: snapshot, Line: line}
}

var nameFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName folds diacritics and case so that the provider's
// spelling and the event creator's spelling compare equal when they
// differ only in accents or capitalization.
func NormalizeName(name string) string {
	folded, _, err := transform.String(nameFolder, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// Matcher resolves betting-event player names against a snapshot set.
type Matcher struct {
	threshold int
	logger    *zap.Logger
}

func NewMatcher(threshold int, logger *zap.Logger) *Matcher {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	return &Matcher{threshold: threshold, logger: logger}
}

// Find resolves a player name: exact match on the normalized form first,
// then the best fuzzy match at or above the threshold. Returns false
// when neither succeeds.
func (m *Matcher) Find(set SnapshotSet, playerName string) (PlayerStats, bool) {
	normalized := NormalizeName(playerName)
	if ps, ok := set[normalized]; ok {
		return ps, true
	}

	bestScore := 0
	var best PlayerStats
	for candidate, ps := range set {
		score := fuzzy.Ratio(normalized, candidate)
		if score > bestScore {
			bestScore = score
			best = ps
		}
	}

	if bestScore >= m.threshold {
		m.logger.Debug("fuzzy player match",
			zap.String("event_player", playerName),
			zap.String("matched", best.Snapshot.Name),
			zap.Int("score", bestScore))
		return best, true
	}
	return PlayerStats{}, false
}
