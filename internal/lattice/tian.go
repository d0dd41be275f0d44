package lattice

import (
	"fmt"
	"math"

	"optionPricer/internal/domain"
)

// Tian is the third-moment-matching binomial lattice. It has no trinomial form.
type Tian struct{}

// Name returns "tian".
func (Tian) Name() string { return "tian" }

// Binomial implements Specification.
func (Tian) Binomial(volatility, carry, dt float64) (BinomialParameters, error) {
	if err := checkStep(volatility, dt); err != nil {
		return BinomialParameters{}, err
	}
	growth := math.Exp(carry * dt)
	v := math.Exp(volatility * volatility * dt)
	root := math.Sqrt(v*v + 2*v - 3)
	up := 0.5 * growth * v * (v + 1 + root)
	down := 0.5 * growth * v * (v + 1 - root)
	p := BinomialParameters{
		Up:            up,
		Down:          down,
		UpProbability: (growth - down) / (up - down),
	}
	return p, p.validate()
}

// Trinomial always fails with ErrUnsupportedLattice.
func (Tian) Trinomial(volatility, carry, dt float64) (TrinomialParameters, error) {
	return TrinomialParameters{}, fmt.Errorf("tian lattice has no trinomial form: %w", domain.ErrUnsupportedLattice)
}
