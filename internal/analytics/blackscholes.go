package analytics

import (
	"math"

	"optionPricer/internal/domain"
)

// BlackScholes returns the closed-form European price with a continuous dividend yield.
// Degenerate inputs (T <= 0 or vol <= 0) fall back to the discounted deterministic payoff.
func BlackScholes(side domain.PutCall, spot, strike, expiry, rate, dividendYield, volatility float64) float64 {
	discount := math.Exp(-rate * expiry)
	forward := spot * math.Exp((rate-dividendYield)*expiry)

	if expiry <= 0 || volatility <= 0 {
		if side == domain.Call {
			return discount * math.Max(forward-strike, 0)
		}
		return discount * math.Max(strike-forward, 0)
	}

	sqrtT := math.Sqrt(expiry)
	d1 := (math.Log(spot/strike) + (rate-dividendYield+0.5*volatility*volatility)*expiry) / (volatility * sqrtT)
	d2 := d1 - volatility*sqrtT

	if side == domain.Call {
		return discount * (forward*normCdf(d1) - strike*normCdf(d2))
	}
	return discount * (strike*normCdf(-d2) - forward*normCdf(-d1))
}

// normCdf is the standard normal cumulative distribution function.
func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
