package analytics

import (
	"fmt"
	"math"
	"sort"

	"optionPricer/internal/domain"
	"optionPricer/internal/pricer"
)

// ConvergencePoint is the lattice price at one step count compared against a benchmark.
type ConvergencePoint struct {
	Steps     int
	Price     float64
	Benchmark float64
	Error     float64 // Price - Benchmark
}

// ConvergenceReport summarises how a lattice price approaches its benchmark as steps grow.
type ConvergenceReport struct {
	Lattice       string
	Tree          string
	Benchmark     float64
	BenchmarkKind string // "black-scholes" or "finest-lattice"
	Points        []ConvergencePoint
}

// MaxAbsError returns the largest absolute error across all points.
func (r *ConvergenceReport) MaxAbsError() float64 {
	var worst float64
	for _, p := range r.Points {
		worst = math.Max(worst, math.Abs(p.Error))
	}
	return worst
}

// FinalAbsError returns the absolute error at the largest step count.
func (r *ConvergenceReport) FinalAbsError() float64 {
	if len(r.Points) == 0 {
		return 0
	}
	return math.Abs(r.Points[len(r.Points)-1].Error)
}

// Convergence prices the unit option at each step count using the pricer's defaults plus opts.
// European options are compared with Black-Scholes; American options with the price at the
// largest step count, since no closed form exists.
func Convergence(p *pricer.Pricer, terms domain.OptionTerms, market domain.MarketData, steps []int, opts ...pricer.Option) (*ConvergenceReport, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("convergence needs at least one step count: %w", domain.ErrInvalidInput)
	}
	sorted := append([]int(nil), steps...)
	sort.Ints(sorted)

	report := &ConvergenceReport{Points: make([]ConvergencePoint, 0, len(sorted))}
	prices := make([]float64, len(sorted))
	for i, n := range sorted {
		res, err := p.Price(terms, market, append(append([]pricer.Option(nil), opts...), pricer.WithSteps(n))...)
		if err != nil {
			return nil, fmt.Errorf("convergence at %d steps: %w", n, err)
		}
		prices[i] = res.UnitPrice
		report.Lattice = res.Lattice
		report.Tree = res.Tree
	}

	if terms.IsAmerican() {
		report.Benchmark = prices[len(prices)-1]
		report.BenchmarkKind = "finest-lattice"
	} else {
		report.Benchmark = BlackScholes(terms.Side(), market.Spot, terms.Strike(), terms.Expiry(),
			market.Rate, market.DividendYield, market.Volatility)
		report.BenchmarkKind = "black-scholes"
	}

	for i, n := range sorted {
		report.Points = append(report.Points, ConvergencePoint{
			Steps:     n,
			Price:     prices[i],
			Benchmark: report.Benchmark,
			Error:     prices[i] - report.Benchmark,
		})
	}
	return report, nil
}

// EarlyExercisePremium returns the American price minus the European price of the same terms,
// both per unit. It is non-negative up to floating point noise.
func EarlyExercisePremium(p *pricer.Pricer, terms domain.OptionTerms, market domain.MarketData, opts ...pricer.Option) (float64, error) {
	american, err := p.Price(terms.WithStyle(domain.American), market, opts...)
	if err != nil {
		return 0, fmt.Errorf("american leg: %w", err)
	}
	european, err := p.Price(terms.WithStyle(domain.European), market, opts...)
	if err != nil {
		return 0, fmt.Errorf("european leg: %w", err)
	}
	return american.UnitPrice - european.UnitPrice, nil
}
