package ports

import (
	"context"
	"time"

	"optionPricer/internal/domain"
)

// OptionTradeRepository defines the interface for storing and retrieving option positions.
type OptionTradeRepository interface {
	// CreateTrade saves a new option trade and returns its assigned ID.
	CreateTrade(ctx context.Context, trade *domain.OptionTrade) (int64, error)
	// FindTradeByID retrieves a trade by its unique ID.
	// Returns nil, nil if not found.
	FindTradeByID(ctx context.Context, id int64) (*domain.OptionTrade, error)
	// FindActiveTrades retrieves all trades whose expiry date is not before asOf.
	FindActiveTrades(ctx context.Context, asOf time.Time) ([]*domain.OptionTrade, error)
}

// ValuationRepository defines the interface for storing valuation history.
type ValuationRepository interface {
	// SaveValuation stores a pricing result and returns its assigned ID.
	SaveValuation(ctx context.Context, v *domain.Valuation) (int64, error)
	// FindValuationsByTrade retrieves the most recent valuations for a trade, newest first.
	FindValuationsByTrade(ctx context.Context, tradeID int64, limit int) ([]*domain.Valuation, error)
	// LatestValuation retrieves the most recent valuation for a trade.
	// Returns nil, nil if the trade has never been valued.
	LatestValuation(ctx context.Context, tradeID int64) (*domain.Valuation, error)
}
