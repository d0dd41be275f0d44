package lattice

import "math"

// Binomial is the two-branch recombining tree.
type Binomial struct{}

// Name returns "binomial".
func (Binomial) Name() string { return "binomial" }

// Price implements Tree.
func (Binomial) Price(fn OptionFunction, spec Specification, in Inputs) (float64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}
	dt := in.dt()
	params, err := spec.Binomial(in.Volatility, in.Rate-in.DividendYield, dt)
	if err != nil {
		return 0, err
	}

	n := in.Steps
	if top := in.Spot * math.Pow(params.Up, float64(n)); !finite(top) {
		return 0, overflow("top terminal asset price", top)
	}

	discount := math.Exp(-in.Rate * dt)
	pUp := discount * params.UpProbability
	pDown := discount * params.DownProbability()
	ratio := params.Up / params.Down

	// Terminal layer: node j has j up moves and n-j down moves.
	values := make([]float64, n+1)
	spot := in.Spot * math.Pow(params.Down, float64(n))
	for j := 0; j <= n; j++ {
		values[j] = fn.Payoff(spot)
		spot *= ratio
	}

	for i := n - 1; i >= 0; i-- {
		spot = in.Spot * math.Pow(params.Down, float64(i))
		for j := 0; j <= i; j++ {
			values[j] = fn.NodeValue(pDown*values[j]+pUp*values[j+1], spot)
			spot *= ratio
		}
	}

	if !finite(values[0]) {
		return 0, overflow("binomial root value", values[0])
	}
	return values[0], nil
}
