package marketdata

import (
	"fmt"
	"math"
	"strings"

	"optionPricer/internal/domain"
	"optionPricer/internal/ports"
)

// Estimator turns a window of klines into an annualized volatility.
type Estimator interface {
	// Estimate computes the annualized volatility for the given klines.
	Estimate(klines []*domain.Kline, periodsPerYear float64) (float64, error)

	// RequiredKlines returns the minimum number of klines needed.
	RequiredKlines() int

	// Name returns the name of the estimator.
	Name() string
}

// CloseToClose is the sample standard deviation of log close returns.
type CloseToClose struct{}

func (CloseToClose) Name() string { return "close-to-close" }
func (CloseToClose) RequiredKlines() int { return 3 }

// Estimate implements Estimator via RealizedVolatility.
func (CloseToClose) Estimate(klines []*domain.Kline, periodsPerYear float64) (float64, error) {
	return RealizedVolatility(klines, periodsPerYear)
}

// Parkinson estimates volatility from each bar's high/low range.
type Parkinson struct{}

func (Parkinson) Name() string { return "parkinson" }
func (Parkinson) RequiredKlines() int { return 2 }

// Estimate computes sqrt(sum(ln(H/L)^2) / (4 ln2 n) * periodsPerYear).
func (p Parkinson) Estimate(klines []*domain.Kline, periodsPerYear float64) (float64, error) {
	if len(klines) < p.RequiredKlines() {
		return 0, fmt.Errorf("need at least %d klines for parkinson volatility, got %d: %w", p.RequiredKlines(), len(klines), ports.ErrInsufficientHistory)
	}
	if periodsPerYear <= 0 {
		return 0, fmt.Errorf("periods per year %v must be positive: %w", periodsPerYear, ports.ErrInvalidRequest)
	}

	var sum float64
	for i, k := range klines {
		if k.Low <= 0 || k.High < k.Low {
			return 0, fmt.Errorf("invalid high/low %v/%v at kline %d: %w", k.High, k.Low, i, ports.ErrInvalidRequest)
		}
		r := math.Log(k.High / k.Low)
		sum += r * r
	}
	variance := sum / (4 * math.Ln2 * float64(len(klines)))
	return math.Sqrt(variance * periodsPerYear), nil
}

// ParseEstimator resolves a configuration name to an Estimator.
func ParseEstimator(name string) (Estimator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "close", "close-to-close":
		return CloseToClose{}, nil
	case "parkinson", "high-low":
		return Parkinson{}, nil
	default:
		return nil, fmt.Errorf("unknown volatility estimator %q: %w", name, ports.ErrInvalidRequest)
	}
}
