package stats

import (
	"strconv"
	"strings"

	"github.com/fortuna/themis/internal/boxscore"
)

// Value is one resolved statistic. Shooting stats stay in their raw
// made-attempted string form; everything else is parsed to an integer,
// defaulting to 0 when the provider sends something unparseable.
type Value struct {
	Raw      string
	Int      int
	Compound bool
}

// Line is a player's resolved stat map, keyed by the provider's
// statistic key.
type Line map[string]Value

// Int returns the parsed integer for a key, 0 when absent.
func (l Line) Int(key string) int {
	return l[key].Int
}

// MadeAttempted splits the compound value stored at key. Absent keys and
// malformed values yield 0.
func (l Line) MadeAttempted(key string, wantMade bool) int {
	return SplitMadeAttempted(l[key].Raw, wantMade)
}

const plusMinusKey = "plusMinus"

// Resolve converts a snapshot's raw rows into a Line. Compound keys
// (made-attempted pairs, written with '-' or '/') keep their raw string;
// plus/minus drops a leading '+' before parsing; all other values are
// parsed as integers with 0 on failure.
func Resolve(rows []boxscore.StatRow) Line {
	line := make(Line, len(rows))
	for _, row := range rows {
		line[row.Key] = resolveValue(row)
	}
	return line
}

func resolveValue(row boxscore.StatRow) Value {
	if strings.ContainsAny(row.Key, "-/") {
		return Value{Raw: row.Value, Compound: true}
	}

	raw := row.Value
	if row.Key == plusMinusKey {
		raw = strings.TrimPrefix(raw, "+")
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		n = 0
	}
	return Value{Raw: row.Value, Int: n}
}

// SplitMadeAttempted picks the made or attempted half of a compound
// shooting value such as "4-9". Malformed input yields 0.
func SplitMadeAttempted(s string, wantMade bool) int {
	sep := "-"
	if !strings.Contains(s, sep) {
		sep = "/"
	}

	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return 0
	}

	part := parts[1]
	if wantMade {
		part = parts[0]
	}

	n, err := strconv.Atoi(strings.TrimSpace(part))
	if err != nil {
		return 0
	}
	return n
}
