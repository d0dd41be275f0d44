package ports

import (
	"context"

	"optionPricer/internal/domain"
)

// MarketDataProvider supplies the market inputs needed to value an option on a given underlying.
type MarketDataProvider interface {
	// MarketData returns spot, volatility, rate and dividend yield for the symbol as of now.
	MarketData(ctx context.Context, symbol string) (domain.MarketData, error)
}
