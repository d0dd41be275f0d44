package lattice

import (
	"fmt"
	"strings"

	"optionPricer/internal/domain"
)

// Inputs are the market and discretisation inputs for a single tree evaluation.
type Inputs struct {
	Spot          float64
	Volatility    float64
	Rate          float64 // discount rate
	DividendYield float64 // continuous yield, drift is Rate - DividendYield
	Expiry        float64 // years
	Steps         int
}

func (in Inputs) validate() error {
	switch {
	case !finite(in.Spot) || in.Spot <= 0:
		return fmt.Errorf("spot %v must be positive: %w", in.Spot, domain.ErrInvalidInput)
	case !finite(in.Volatility) || in.Volatility <= 0:
		return fmt.Errorf("tree volatility %v must be positive: %w", in.Volatility, domain.ErrInvalidInput)
	case !finite(in.Rate) || !finite(in.DividendYield):
		return fmt.Errorf("rate %v and dividend yield %v must be finite: %w", in.Rate, in.DividendYield, domain.ErrInvalidInput)
	case !finite(in.Expiry) || in.Expiry <= 0:
		return fmt.Errorf("tree expiry %v must be positive: %w", in.Expiry, domain.ErrInvalidInput)
	case in.Steps < 1:
		return fmt.Errorf("steps %d must be at least 1: %w", in.Steps, domain.ErrInvalidInput)
	}
	return nil
}

func (in Inputs) dt() float64 {
	return in.Expiry / float64(in.Steps)
}

// Tree is a recombining lattice that values an option by backward induction.
// Implementations hold no state; every call builds and discards its own node arrays.
type Tree interface {
	// Name returns "binomial" or "trinomial".
	Name() string
	// Price returns the per-unit value of fn at the root of the tree.
	Price(fn OptionFunction, spec Specification, in Inputs) (float64, error)
}

// Trees lists every supported tree shape.
func Trees() []Tree {
	return []Tree{Binomial{}, Trinomial{}}
}

// ParseTree resolves a configuration name to a Tree.
func ParseTree(name string) (Tree, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "binomial", "bin":
		return Binomial{}, nil
	case "trinomial", "tri":
		return Trinomial{}, nil
	default:
		return nil, fmt.Errorf("unknown tree %q: %w", name, domain.ErrUnsupportedLattice)
	}
}

func overflow(what string, v float64) error {
	return fmt.Errorf("%s is %v: %w", what, v, domain.ErrComputationOverflow)
}
