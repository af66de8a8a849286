package stats

import "github.com/cockroachdb/errors"

// FormulaFantasy is the basketball fantasy-score formula.
const FormulaFantasy = "fantasy"

// Basketball compound shooting keys used by the fantasy formula.
const (
	keyFieldGoals = "fieldGoalsMade-fieldGoalsAttempted"
	keyThrees     = "threePointFieldGoalsMade-threePointFieldGoalsAttempted"
	keyFreeThrows = "freeThrowsMade-freeThrowsAttempted"
)

func evaluateFormula(name string, line Line) (float64, error) {
	switch name {
	case FormulaFantasy:
		return fantasyScore(line), nil
	default:
		return 0, errors.Newf("unknown formula %q", name)
	}
}

// fantasyScore applies the fixed coefficient table. Three-pointers score
// a bonus point on top of the regular made-field-goal credit.
func fantasyScore(line Line) float64 {
	score := 0
	score += 2 * line.MadeAttempted(keyFieldGoals, true)
	score += -1 * line.MadeAttempted(keyFieldGoals, false)
	score += 1 * line.MadeAttempted(keyThrees, true)
	score += 1 * line.MadeAttempted(keyFreeThrows, true)
	score += -1 * line.MadeAttempted(keyFreeThrows, false)
	score += 1 * line.Int("rebounds")
	score += 2 * line.Int("assists")
	score += 4 * line.Int("steals")
	score += 4 * line.Int("blocks")
	score += -2 * line.Int("turnovers")
	return float64(score)
}
