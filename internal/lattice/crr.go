package lattice

import "math"

// CoxRossRubinstein is the symmetric lattice with up = exp(vol*sqrt(dt)) and down = 1/up.
type CoxRossRubinstein struct{}

// Name returns "crr".
func (CoxRossRubinstein) Name() string { return "crr" }

// Binomial implements Specification.
func (CoxRossRubinstein) Binomial(volatility, carry, dt float64) (BinomialParameters, error) {
	if err := checkStep(volatility, dt); err != nil {
		return BinomialParameters{}, err
	}
	up := math.Exp(volatility * math.Sqrt(dt))
	down := 1 / up
	p := BinomialParameters{
		Up:            up,
		Down:          down,
		UpProbability: (math.Exp(carry*dt) - down) / (up - down),
	}
	return p, p.validate()
}

// Trinomial implements Specification using the two-half-step construction:
// each trinomial step is two CRR half steps of length dt/2 merged into one.
func (CoxRossRubinstein) Trinomial(volatility, carry, dt float64) (TrinomialParameters, error) {
	if err := checkStep(volatility, dt); err != nil {
		return TrinomialParameters{}, err
	}
	dx := volatility * math.Sqrt(2*dt)
	growth := math.Exp(0.5 * carry * dt)
	halfUp := math.Exp(0.5 * dx)
	halfDown := math.Exp(-0.5 * dx)

	pu := math.Pow((growth-halfDown)/(halfUp-halfDown), 2)
	pd := math.Pow((halfUp-growth)/(halfUp-halfDown), 2)
	p := TrinomialParameters{
		Up:                math.Exp(dx),
		Middle:            1,
		Down:              math.Exp(-dx),
		UpProbability:     pu,
		MiddleProbability: 1 - pu - pd,
		DownProbability:   pd,
	}
	return p, p.validate()
}
