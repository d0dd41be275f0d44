package ports

import (
	"errors"

	"optionPricer/internal/domain"
)

// Standard application-level errors.
// Adapters and the pricing core wrap underlying failures with these so callers can match with errors.Is.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Pricing Errors (defined in domain)
	ErrInvalidInput        = domain.ErrInvalidInput
	ErrComputationOverflow = domain.ErrComputationOverflow
	ErrUnsupportedLattice  = domain.ErrUnsupportedLattice

	// Market Data Errors
	ErrMarketDataUnavailable = errors.New("market data source is unavailable")
	ErrConnectionFailed      = errors.New("failed to connect to the market data source")
	ErrRateLimited           = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed  = errors.New("market data authentication failed (check API keys)")
	ErrInsufficientHistory   = errors.New("not enough price history")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)
