package lattice

import "math"

// Trinomial is the three-branch recombining tree. Step i has 2i+1 nodes.
type Trinomial struct{}

// Name returns "trinomial".
func (Trinomial) Name() string { return "trinomial" }

// Price implements Tree.
func (Trinomial) Price(fn OptionFunction, spec Specification, in Inputs) (float64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}
	dt := in.dt()
	params, err := spec.Trinomial(in.Volatility, in.Rate-in.DividendYield, dt)
	if err != nil {
		return 0, err
	}

	n := in.Steps
	if top := in.Spot * math.Pow(params.Up, float64(n)); !finite(top) {
		return 0, overflow("top terminal asset price", top)
	}

	discount := math.Exp(-in.Rate * dt)
	pUp := discount * params.UpProbability
	pMid := discount * params.MiddleProbability
	pDown := discount * params.DownProbability
	ratio := params.Up / params.Middle

	// Node j at step i sits at spot * middle^i * ratio^(j-i); j == i is the middle path.
	lowest := func(i int) float64 {
		return in.Spot * math.Pow(params.Middle, float64(i)) * math.Pow(ratio, -float64(i))
	}

	values := make([]float64, 2*n+1)
	spot := lowest(n)
	for j := 0; j <= 2*n; j++ {
		values[j] = fn.Payoff(spot)
		spot *= ratio
	}

	for i := n - 1; i >= 0; i-- {
		spot = lowest(i)
		for j := 0; j <= 2*i; j++ {
			values[j] = fn.NodeValue(pDown*values[j]+pMid*values[j+1]+pUp*values[j+2], spot)
			spot *= ratio
		}
	}

	if !finite(values[0]) {
		return 0, overflow("trinomial root value", values[0])
	}
	return values[0], nil
}
