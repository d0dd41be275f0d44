package lattice

import "math"

// JarrowRudd is the equal-probability lattice: the drift is carried by the node spacing
// rather than by skewed probabilities.
type JarrowRudd struct{}

// Name returns "jarrow-rudd".
func (JarrowRudd) Name() string { return "jarrow-rudd" }

// Binomial implements Specification with p = 1/2.
func (JarrowRudd) Binomial(volatility, carry, dt float64) (BinomialParameters, error) {
	if err := checkStep(volatility, dt); err != nil {
		return BinomialParameters{}, err
	}
	drift := (carry - 0.5*volatility*volatility) * dt
	move := volatility * math.Sqrt(dt)
	p := BinomialParameters{
		Up:            math.Exp(drift + move),
		Down:          math.Exp(drift - move),
		UpProbability: 0.5,
	}
	return p, p.validate()
}

// Trinomial implements Specification with fixed weights 1/6, 2/3, 1/6 and a drifting middle node.
func (JarrowRudd) Trinomial(volatility, carry, dt float64) (TrinomialParameters, error) {
	if err := checkStep(volatility, dt); err != nil {
		return TrinomialParameters{}, err
	}
	middle := math.Exp((carry - 0.5*volatility*volatility) * dt)
	dx := volatility * math.Sqrt(3*dt)
	p := TrinomialParameters{
		Up:                middle * math.Exp(dx),
		Middle:            middle,
		Down:              middle * math.Exp(-dx),
		UpProbability:     1.0 / 6,
		MiddleProbability: 2.0 / 3,
		DownProbability:   1.0 / 6,
	}
	return p, p.validate()
}
