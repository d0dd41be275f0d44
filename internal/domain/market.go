package domain

import (
	"fmt"
	"strings"
	"time"
)

// MarketData holds the observable inputs for valuing an option on one underlying.
type MarketData struct {
	Symbol        string    // Underlying symbol (e.g., "ETHUSDT")
	Spot          float64   // Current underlying price
	Volatility    float64   // Annualized volatility (0.2 for 20%)
	Rate          float64   // Continuously compounded risk-free rate
	DividendYield float64   // Continuous dividend or funding yield, 0 if none
	AsOf          time.Time // Observation time
}

// CostOfCarry returns the drift used for the underlying in the risk-neutral measure.
func (m MarketData) CostOfCarry() float64 {
	return m.Rate - m.DividendYield
}

// Validate checks that the inputs can be fed to a pricer.
func (m MarketData) Validate() error {
	var errs []string
	if !isFinite(m.Spot) || m.Spot <= 0 {
		errs = append(errs, fmt.Sprintf("spot %v must be positive", m.Spot))
	}
	if !isFinite(m.Volatility) || m.Volatility < 0 {
		errs = append(errs, fmt.Sprintf("volatility %v must be finite and non-negative", m.Volatility))
	}
	if !isFinite(m.Rate) {
		errs = append(errs, fmt.Sprintf("rate %v is not finite", m.Rate))
	}
	if !isFinite(m.DividendYield) {
		errs = append(errs, fmt.Sprintf("dividend yield %v is not finite", m.DividendYield))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(errs, "; "), ErrInvalidInput)
	}
	return nil
}
