package lattice

import "math"

// Trigeorgis is the log-transformed lattice matching the first two moments of ln(S) exactly.
type Trigeorgis struct{}

// Name returns "trigeorgis".
func (Trigeorgis) Name() string { return "trigeorgis" }

// Binomial implements Specification.
func (Trigeorgis) Binomial(volatility, carry, dt float64) (BinomialParameters, error) {
	if err := checkStep(volatility, dt); err != nil {
		return BinomialParameters{}, err
	}
	nu := carry - 0.5*volatility*volatility
	dx := math.Sqrt(volatility*volatility*dt + nu*nu*dt*dt)
	p := BinomialParameters{
		Up:            math.Exp(dx),
		Down:          math.Exp(-dx),
		UpProbability: 0.5 + 0.5*nu*dt/dx,
	}
	return p, p.validate()
}

// Trinomial implements Specification with space step vol*sqrt(3*dt).
func (Trigeorgis) Trinomial(volatility, carry, dt float64) (TrinomialParameters, error) {
	if err := checkStep(volatility, dt); err != nil {
		return TrinomialParameters{}, err
	}
	nu := carry - 0.5*volatility*volatility
	dx := volatility * math.Sqrt(3*dt)
	spread := (volatility*volatility*dt + nu*nu*dt*dt) / (dx * dx)
	skew := nu * dt / dx
	p := TrinomialParameters{
		Up:                math.Exp(dx),
		Middle:            1,
		Down:              math.Exp(-dx),
		UpProbability:     0.5 * (spread + skew),
		MiddleProbability: 1 - spread,
		DownProbability:   0.5 * (spread - skew),
	}
	return p, p.validate()
}
