package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/themis/internal/league"
)

func TestEvaluateKey(t *testing.T) {
	t.Parallel()

	line := Resolve(lukaRows())

	v, err := Key("points").Evaluate(line)
	require.NoError(t, err)
	assert.Equal(t, 16.0, v)

	v, err = Key("absent").Evaluate(line)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestEvaluateSum(t *testing.T) {
	t.Parallel()

	line := Resolve(lukaRows())

	expr := Sum(Key("points"), Key("rebounds"), Key("assists"))
	v, err := expr.Evaluate(line)
	require.NoError(t, err)
	assert.Equal(t, 29.0, v)
}

func TestEvaluateMadeAttempted(t *testing.T) {
	t.Parallel()

	line := Resolve(lukaRows())

	made, err := MadeAttempted("fieldGoalsMade-fieldGoalsAttempted", true).Evaluate(line)
	require.NoError(t, err)
	assert.Equal(t, 4.0, made)

	attempted, err := MadeAttempted("fieldGoalsMade-fieldGoalsAttempted", false).Evaluate(line)
	require.NoError(t, err)
	assert.Equal(t, 9.0, attempted)
}

func TestEvaluateFantasyScore(t *testing.T) {
	t.Parallel()

	line := Resolve(lukaRows())

	// 2*4 - 9 + 2 + 3 - 4 + 6 + 2*7 + 4*2 + 4*1 - 2*3 = 26
	v, err := Formula(FormulaFantasy).Evaluate(line)
	require.NoError(t, err)
	assert.Equal(t, 26.0, v)
}

func TestEvaluateUnknownFormula(t *testing.T) {
	t.Parallel()

	_, err := Formula("nonsense").Evaluate(Line{})
	assert.Error(t, err)
}

func TestResolveStatType(t *testing.T) {
	t.Parallel()

	line := Resolve(lukaRows())

	tests := []struct {
		statType string
		want     float64
	}{
		{"Points", 16},
		{"Pts", 16},
		{"Rebounds", 6},
		{"+/-", 8},
		{"FG Made", 4},
		{"FG Attempted", 9},
		{"Fantasy Score", 26},
		{"Points+Rebounds", 22},
		{"Pts+Rebs+Asts", 29},
	}

	for _, tt := range tests {
		expr, ok := ResolveStatType(league.NBA, tt.statType)
		require.True(t, ok, "stat type %q", tt.statType)

		v, err := expr.Evaluate(line)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v, "stat type %q", tt.statType)
	}
}

func TestResolveStatTypeUnrecognized(t *testing.T) {
	t.Parallel()

	_, ok := ResolveStatType(league.NBA, "Triple Doubles")
	assert.False(t, ok)

	// A combination with one unknown part fails entirely.
	_, ok = ResolveStatType(league.NBA, "Points+Vibes")
	assert.False(t, ok)
}

func TestResolveStatTypeFootball(t *testing.T) {
	t.Parallel()

	expr, ok := ResolveStatType(league.NFL, "Rush+Rec Yds")
	require.True(t, ok)
	assert.Equal(t, KindSum, expr.Kind)

	completions, ok := ResolveStatType(league.NFL, "Completions")
	require.True(t, ok)
	assert.Equal(t, KindMadeAttempted, completions.Kind)
	assert.True(t, completions.WantMade)
}
