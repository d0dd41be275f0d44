package lattice

import (
	"math"

	"optionPricer/internal/domain"
)

// OptionFunction describes how a claim pays at expiry and how a node value is formed from its continuation.
type OptionFunction interface {
	// Payoff returns the value at a terminal node with underlying price spot.
	Payoff(spot float64) float64
	// NodeValue combines the discounted continuation value with any early-exercise right at spot.
	NodeValue(continuation, spot float64) float64
}

// Vanilla is a plain put or call with American or European exercise.
type Vanilla struct {
	Strike float64
	Side   domain.PutCall
	Style  domain.ExerciseStyle
}

// NewVanilla builds the option function for a set of terms.
func NewVanilla(terms domain.OptionTerms) Vanilla {
	return Vanilla{Strike: terms.Strike(), Side: terms.Side(), Style: terms.Style()}
}

// Payoff implements OptionFunction.
func (v Vanilla) Payoff(spot float64) float64 {
	if v.Side == domain.Call {
		return math.Max(spot-v.Strike, 0)
	}
	return math.Max(v.Strike-spot, 0)
}

// NodeValue implements OptionFunction. American exercise compares against intrinsic at every node;
// dropping that comparison prices the European claim.
func (v Vanilla) NodeValue(continuation, spot float64) float64 {
	if v.Style == domain.European {
		return continuation
	}
	return math.Max(continuation, v.Payoff(spot))
}
