package marketdata

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"optionPricer/internal/domain"
	"optionPricer/internal/ports"
)

const secondsPerYear = 365 * 24 * 60 * 60

// PeriodsPerYear converts a kline interval such as "1h", "4h", "1d" or "1w" into the number of
// such periods in a 365-day year. Crypto markets trade around the clock, so no trading-day calendar applies.
func PeriodsPerYear(interval string) (float64, error) {
	interval = strings.TrimSpace(interval)
	if len(interval) < 2 {
		return 0, fmt.Errorf("invalid kline interval %q: %w", interval, ports.ErrInvalidRequest)
	}
	n, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid kline interval %q: %w", interval, ports.ErrInvalidRequest)
	}

	var unit time.Duration
	switch interval[len(interval)-1] {
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	case 'w':
		unit = 7 * 24 * time.Hour
	case 'M':
		return 12 / float64(n), nil
	default:
		return 0, fmt.Errorf("invalid kline interval %q: %w", interval, ports.ErrInvalidRequest)
	}
	return secondsPerYear / (float64(n) * unit.Seconds()), nil
}

// RealizedVolatility computes the annualized sample standard deviation of close-to-close log returns.
func RealizedVolatility(klines []*domain.Kline, periodsPerYear float64) (float64, error) {
	if len(klines) < 3 {
		return 0, fmt.Errorf("need at least 3 klines for volatility, got %d: %w", len(klines), ports.ErrInsufficientHistory)
	}
	if periodsPerYear <= 0 {
		return 0, fmt.Errorf("periods per year %v must be positive: %w", periodsPerYear, ports.ErrInvalidRequest)
	}

	returns := make([]float64, 0, len(klines)-1)
	for i := 1; i < len(klines); i++ {
		prev, cur := klines[i-1].Close, klines[i].Close
		if prev <= 0 || cur <= 0 {
			return 0, fmt.Errorf("non-positive close at kline %d: %w", i, ports.ErrInvalidRequest)
		}
		returns = append(returns, math.Log(cur/prev))
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance * periodsPerYear), nil
}
