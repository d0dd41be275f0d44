package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Valuation is a single priced snapshot of an option trade.
type Valuation struct {
	ID            int64           // Unique identifier (usually from DB)
	RunID         string          // Revaluation run that produced this row
	TradeID       int64           // Trade that was valued (0 for ad-hoc pricing)
	Symbol        string          // Underlying symbol
	Spot          float64         // Spot used
	Volatility    float64         // Volatility used
	Rate          float64         // Risk-free rate used
	DividendYield float64         // Dividend yield used
	Lattice       string          // Lattice specification name (e.g., "crr")
	Tree          string          // "binomial" or "trinomial"
	Steps         int             // Number of time steps
	UnitPrice     float64         // Price of one unit of underlying exposure
	PresentValue  decimal.Decimal // UnitPrice * Multiplier * Quantity
	ValuedAt      time.Time       // When the valuation was produced
}
