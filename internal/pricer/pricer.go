package pricer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"optionPricer/internal/domain"
	"optionPricer/internal/lattice"
)

// Config holds the defaults a Pricer applies when a call does not override them.
type Config struct {
	Lattice lattice.Specification // Defaults to Cox-Ross-Rubinstein
	Tree    lattice.Tree          // Defaults to binomial
	Steps   int                   // Defaults to lattice.DefaultSteps
}

// Pricer values vanilla options on a lattice. It is stateless after construction and safe to share
// across goroutines.
type Pricer struct {
	lattice lattice.Specification
	tree    lattice.Tree
	steps   int
}

// Result is the outcome of one pricing call.
type Result struct {
	UnitPrice float64 // Root value of the lattice for one unit of underlying
	Value     float64 // UnitPrice * Multiplier * Quantity
	Lattice   string
	Tree      string
	Steps     int
}

// Option overrides a pricer default for a single call.
type Option func(*settings)

type settings struct {
	lattice lattice.Specification
	tree    lattice.Tree
	steps   int
}

// WithLattice prices with the given specification instead of the configured default.
func WithLattice(spec lattice.Specification) Option {
	return func(s *settings) {
		if spec != nil {
			s.lattice = spec
		}
	}
}

// WithTree prices on the given tree shape instead of the configured default.
func WithTree(tree lattice.Tree) Option {
	return func(s *settings) {
		if tree != nil {
			s.tree = tree
		}
	}
}

// WithSteps overrides the number of time steps.
func WithSteps(steps int) Option {
	return func(s *settings) {
		s.steps = steps
	}
}

// New creates a pricer, filling any zero-valued Config fields with defaults.
func New(cfg Config) (*Pricer, error) {
	p := &Pricer{lattice: cfg.Lattice, tree: cfg.Tree, steps: cfg.Steps}
	if p.lattice == nil {
		p.lattice = lattice.Default()
	}
	if p.tree == nil {
		p.tree = lattice.Binomial{}
	}
	if p.steps == 0 {
		p.steps = lattice.DefaultSteps
	}
	if p.steps < 1 {
		return nil, fmt.Errorf("pricer steps %d must be at least 1: %w", p.steps, domain.ErrInvalidInput)
	}
	return p, nil
}

// Lattice returns the default specification.
func (p *Pricer) Lattice() lattice.Specification { return p.lattice }

// Tree returns the default tree.
func (p *Pricer) Tree() lattice.Tree { return p.tree }

// Steps returns the default number of time steps.
func (p *Pricer) Steps() int { return p.steps }

// Price values the option described by terms under the given market data.
//
// Expiry 0 returns intrinsic value. Volatility 0 follows the deterministic forward path
// and, for American exercise, takes the best discounted exercise value on the step grid.
func (p *Pricer) Price(terms domain.OptionTerms, market domain.MarketData, opts ...Option) (Result, error) {
	s := settings{lattice: p.lattice, tree: p.tree, steps: p.steps}
	for _, opt := range opts {
		opt(&s)
	}

	if terms.IsZero() {
		return Result{}, fmt.Errorf("option terms not initialised: %w", domain.ErrInvalidInput)
	}
	if err := market.Validate(); err != nil {
		return Result{}, err
	}
	if s.steps < 1 {
		return Result{}, fmt.Errorf("steps %d must be at least 1: %w", s.steps, domain.ErrInvalidInput)
	}

	var unit float64
	var err error
	switch {
	case terms.Expiry() == 0:
		unit = terms.Intrinsic(market.Spot)
	case market.Volatility == 0:
		unit, err = deterministic(terms, market, s.steps)
	default:
		unit, err = s.tree.Price(lattice.NewVanilla(terms), s.lattice, lattice.Inputs{
			Spot:          market.Spot,
			Volatility:    market.Volatility,
			Rate:          market.Rate,
			DividendYield: market.DividendYield,
			Expiry:        terms.Expiry(),
			Steps:         s.steps,
		})
	}
	if err != nil {
		return Result{}, fmt.Errorf("pricing %s %s K=%v T=%v with %s/%s: %w",
			terms.Style(), terms.Side(), terms.Strike(), terms.Expiry(), s.lattice.Name(), s.tree.Name(), err)
	}

	value := unit * terms.Multiplier() * terms.Quantity()
	if !isFinite(value) {
		return Result{}, fmt.Errorf("trade value %v: %w", value, domain.ErrComputationOverflow)
	}
	return Result{
		UnitPrice: unit,
		Value:     value,
		Lattice:   s.lattice.Name(),
		Tree:      s.tree.Name(),
		Steps:     s.steps,
	}, nil
}

// PriceTrade resolves a stored trade against market data and returns a valuation record
// ready to be persisted.
func (p *Pricer) PriceTrade(ctx context.Context, trade *domain.OptionTrade, market domain.MarketData, opts ...Option) (*domain.Valuation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	asOf := market.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	terms, err := trade.Terms(asOf)
	if err != nil {
		return nil, fmt.Errorf("trade %d: %w", trade.ID, err)
	}
	res, err := p.Price(terms, market, opts...)
	if err != nil {
		return nil, fmt.Errorf("trade %d: %w", trade.ID, err)
	}
	return &domain.Valuation{
		TradeID:       trade.ID,
		Symbol:        trade.Symbol,
		Spot:          market.Spot,
		Volatility:    market.Volatility,
		Rate:          market.Rate,
		DividendYield: market.DividendYield,
		Lattice:       res.Lattice,
		Tree:          res.Tree,
		Steps:         res.Steps,
		UnitPrice:     res.UnitPrice,
		PresentValue:  decimal.NewFromFloat(res.Value),
		ValuedAt:      asOf,
	}, nil
}

// deterministic prices the zero-volatility limit: the underlying grows at the cost of carry
// and the holder exercises at the best grid time (or only at expiry for European style).
func deterministic(terms domain.OptionTerms, market domain.MarketData, steps int) (float64, error) {
	carry := market.CostOfCarry()
	dt := terms.Expiry() / float64(steps)

	first := steps
	if terms.IsAmerican() {
		first = 0
	}
	best := 0.0
	for k := first; k <= steps; k++ {
		t := float64(k) * dt
		v := math.Exp(-market.Rate*t) * terms.Intrinsic(market.Spot*math.Exp(carry*t))
		if !isFinite(v) {
			return 0, fmt.Errorf("deterministic payoff at t=%v is %v: %w", t, v, domain.ErrComputationOverflow)
		}
		best = math.Max(best, v)
	}
	return best, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
