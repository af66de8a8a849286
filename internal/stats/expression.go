package stats

import "github.com/cockroachdb/errors"

// Kind discriminates the closed set of expression forms.
type Kind int

const (
	// KindKey reads a single integer statistic.
	KindKey Kind = iota
	// KindSum adds the results of nested expressions.
	KindSum
	// KindMadeAttempted reads one half of a compound shooting value.
	KindMadeAttempted
	// KindFormula evaluates a named derived metric.
	KindFormula
)

// Expression describes how to compute one number from a resolved stat
// line. It is a tagged union: exactly the fields of its Kind are set.
type Expression struct {
	Kind     Kind
	Key      string       // KindKey, KindMadeAttempted
	WantMade bool         // KindMadeAttempted
	Terms    []Expression // KindSum
	Formula  string       // KindFormula
}

func Key(key string) Expression {
	return Expression{Kind: KindKey, Key: key}
}

func Sum(terms ...Expression) Expression {
	return Expression{Kind: KindSum, Terms: terms}
}

func MadeAttempted(key string, wantMade bool) Expression {
	return Expression{Kind: KindMadeAttempted, Key: key, WantMade: wantMade}
}

func Formula(name string) Expression {
	return Expression{Kind: KindFormula, Formula: name}
}

// Evaluate computes the expression against a resolved line. Only an
// unknown formula name errors; missing keys evaluate to 0 like every
// other absent statistic.
func (e Expression) Evaluate(line Line) (float64, error) {
	switch e.Kind {
	case KindKey:
		return float64(line.Int(e.Key)), nil
	case KindSum:
		var total float64
		for _, term := range e.Terms {
			v, err := term.Evaluate(line)
			if err != nil {
				return 0, err
			}
			total += v
		}
		return total, nil
	case KindMadeAttempted:
		return float64(line.MadeAttempted(e.Key, e.WantMade)), nil
	case KindFormula:
		return evaluateFormula(e.Formula, line)
	default:
		return 0, errors.Newf("unknown expression kind %d", e.Kind)
	}
}
