package domain

import "time"

const hoursPerYear = 365 * 24

// OptionTrade represents an option position held in the book.
type OptionTrade struct {
	ID         int64         // Unique identifier (usually from DB)
	Symbol     string        // Underlying symbol (e.g., "ETHUSDT")
	Quantity   float64       // Signed number of contracts
	Multiplier float64       // Contract size
	Strike     float64       // Strike price
	ExpiryDate time.Time     // Expiry timestamp
	Side       PutCall       // CALL or PUT
	Style      ExerciseStyle // AMERICAN or EUROPEAN
	CreatedAt  time.Time     // When the trade was captured
}

// YearsToExpiry measures time to expiry on an ACT/365F basis, floored at zero.
func (t *OptionTrade) YearsToExpiry(asOf time.Time) float64 {
	if !t.ExpiryDate.After(asOf) {
		return 0
	}
	return t.ExpiryDate.Sub(asOf).Hours() / hoursPerYear
}

// Terms resolves the trade into pricing terms as of the given time.
func (t *OptionTrade) Terms(asOf time.Time) (OptionTerms, error) {
	return NewOptionTerms(t.Quantity, t.Multiplier, t.Strike, t.YearsToExpiry(asOf), t.Side, t.Style)
}

// IsExpired checks whether the trade has reached its expiry at asOf.
func (t *OptionTrade) IsExpired(asOf time.Time) bool {
	return !t.ExpiryDate.After(asOf)
}
