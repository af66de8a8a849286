package stats

import (
	"strings"

	"github.com/fortuna/themis/internal/league"
)

// Statistic-type tables map the human-entered stat names on betting
// events to expressions over provider keys. Basketball leagues share one
// table; football has its own.

var basketballTable = map[string]Expression{
	"Points":    Key("points"),
	"Pts":       Key("points"),
	"Rebounds":  Key("rebounds"),
	"Rebs":      Key("rebounds"),
	"Assists":   Key("assists"),
	"Asts":      Key("assists"),
	"Steals":    Key("steals"),
	"Stls":      Key("steals"),
	"Blocks":    Key("blocks"),
	"Blks":      Key("blocks"),
	"Turnovers": Key("turnovers"),
	"TOs":       Key("turnovers"),
	"Fouls":     Key("fouls"),
	"Fls":       Key("fouls"),
	"Minutes":   Key("minutes"),
	"+/-":       Key("plusMinus"),

	"FG Made":       MadeAttempted(keyFieldGoals, true),
	"FG Attempted":  MadeAttempted(keyFieldGoals, false),
	"3PT Made":      MadeAttempted(keyThrees, true),
	"3PT Attempted": MadeAttempted(keyThrees, false),
	"FT Made":       MadeAttempted(keyFreeThrows, true),
	"FT Attempted":  MadeAttempted(keyFreeThrows, false),

	"Fantasy Score": Formula(FormulaFantasy),
}

var footballTable = map[string]Expression{
	"Pass Yds":      Key("passingYards"),
	"Pass TDs":      Key("passingTouchdowns"),
	"Interceptions": Key("interceptions"),
	"Completions":   MadeAttempted("completions/passingAttempts", true),
	"Pass Attempts": MadeAttempted("completions/passingAttempts", false),

	"Rush Yds":      Key("rushingYards"),
	"Rush Attempts": Key("rushingAttempts"),
	"Rush TDs":      Key("rushingTouchdowns"),

	"Receptions": Key("receptions"),
	"Rec Yds":    Key("receivingYards"),
	"Rec TDs":    Key("receivingTouchdowns"),
	"Targets":    Key("receivingTargets"),

	"Tackles": Key("totalTackles"),
	"Sacks":   Key("sacks"),

	"Rush+Rec Yds":  Sum(Key("rushingYards"), Key("receivingYards")),
	"Rush+Rec TDs":  Sum(Key("rushingTouchdowns"), Key("receivingTouchdowns")),
	"Pass+Rush Yds": Sum(Key("passingYards"), Key("rushingYards")),
}

// TableFor returns the statistic-type table for a league's sport.
func TableFor(lg league.League) map[string]Expression {
	if lg.Sport == league.Football {
		return footballTable
	}
	return basketballTable
}

// ResolveStatType looks a betting event's statistic-type string up in a
// league's table. Unlisted '+'-joined combinations resolve part by part
// into a sum; any unrecognized part fails the whole lookup.
func ResolveStatType(lg league.League, statType string) (Expression, bool) {
	table := TableFor(lg)
	if expr, ok := table[statType]; ok {
		return expr, true
	}

	if !strings.Contains(statType, "+") || statType == "+/-" {
		return Expression{}, false
	}

	var terms []Expression
	for _, part := range strings.Split(statType, "+") {
		expr, ok := table[strings.TrimSpace(part)]
		if !ok {
			return Expression{}, false
		}
		terms = append(terms, expr)
	}
	return Sum(terms...), true
}
