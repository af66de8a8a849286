package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fortuna/themis/internal/boxscore"
	"github.com/fortuna/themis/internal/stats"
)

func snapshotSetWith(names ...string) SnapshotSet {
	set := make(SnapshotSet)
	for _, name := range names {
		set.Add(boxscore.PlayerSnapshot{Name: name}, stats.Line{})
	}
	return set
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "luka doncic", NormalizeName("Luka Dončić"))
	assert.Equal(t, "luka doncic", NormalizeName("  Luka Doncic "))
	assert.Equal(t, "nikola jokic", NormalizeName("Nikola Jokić"))
}

func TestFindExactAfterDiacriticFold(t *testing.T) {
	t.Parallel()

	set := snapshotSetWith("Luka Doncic")
	matcher := NewMatcher(0, zap.NewNop())

	// Diacritic variant matches without the fuzzy path.
	ps, ok := matcher.Find(set, "Luka Dončić")
	require.True(t, ok)
	assert.Equal(t, "Luka Doncic", ps.Snapshot.Name)
}

func TestFindFuzzy(t *testing.T) {
	t.Parallel()

	set := snapshotSetWith("Luka Doncic", "Kyrie Irving")
	matcher := NewMatcher(0, zap.NewNop())

	// Typo within the similarity threshold.
	ps, ok := matcher.Find(set, "Luca Doncic")
	require.True(t, ok)
	assert.Equal(t, "Luka Doncic", ps.Snapshot.Name)
}

func TestFindRejectsLowSimilarity(t *testing.T) {
	t.Parallel()

	set := snapshotSetWith("Luka Doncic")
	matcher := NewMatcher(0, zap.NewNop())

	_, ok := matcher.Find(set, "Victor Wembanyama")
	assert.False(t, ok)

	_, ok = matcher.Find(SnapshotSet{}, "Anyone")
	assert.False(t, ok)
}

func TestSnapshotSetLastWriteWins(t *testing.T) {
	t.Parallel()

	set := make(SnapshotSet)
	set.Add(boxscore.PlayerSnapshot{Name: "John Smith", GameID: "1"}, stats.Line{})
	set.Add(boxscore.PlayerSnapshot{Name: "John Smith", GameID: "2"}, stats.Line{})

	require.Len(t, set, 1)
	assert.Equal(t, "2", set[NormalizeName("John Smith")].Snapshot.GameID)
}
