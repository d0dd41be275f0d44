package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"optionPricer/config"
	"optionPricer/internal/domain"
	"optionPricer/internal/ports"
	"optionPricer/internal/pricer"
	"optionPricer/internal/utils"
)

// ValuationService revalues the option book against live market data.
type ValuationService struct {
	cfg        *config.Config
	logger     ports.Logger
	market     ports.MarketDataProvider
	trades     ports.OptionTradeRepository
	valuations ports.ValuationRepository
	pricer     *pricer.Pricer

	now func() time.Time
}

// RunSummary aggregates one revaluation run.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Trades     int // Active trades found
	Priced     int
	Failed     int
	TotalPV    decimal.Decimal
	BySymbol   map[string]decimal.Decimal
	Valuations []*domain.Valuation // Successful valuations ordered by trade ID
}

// NewValuationService creates a new application service instance.
func NewValuationService(
	cfg *config.Config,
	logger ports.Logger,
	market ports.MarketDataProvider,
	trades ports.OptionTradeRepository,
	valuations ports.ValuationRepository,
	p *pricer.Pricer,
) (*ValuationService, error) {
	if cfg == nil || logger == nil || market == nil || trades == nil || valuations == nil || p == nil {
		return nil, fmt.Errorf("missing required dependencies for ValuationService")
	}
	if cfg.PricingWorkers <= 0 {
		return nil, fmt.Errorf("configuration PricingWorkers must be positive")
	}
	if cfg.RevalueInterval <= 0 {
		return nil, fmt.Errorf("configuration RevalueInterval must be positive")
	}

	return &ValuationService{
		cfg:        cfg,
		logger:     logger,
		market:     market,
		trades:     trades,
		valuations: valuations,
		pricer:     p,
		now:        time.Now,
	}, nil
}

// Start revalues the book immediately and then on every RevalueInterval tick until ctx is
// cancelled or the process receives SIGINT/SIGTERM.
func (s *ValuationService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting Valuation Service...", map[string]interface{}{
		"lattice":  s.pricer.Lattice().Name(),
		"tree":     s.pricer.Tree().Name(),
		"steps":    s.pricer.Steps(),
		"workers":  s.cfg.PricingWorkers,
		"interval": s.cfg.RevalueInterval.String(),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	if p, ok := s.market.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			s.logger.Warn(ctx, "Market data source unreachable, runs will fail until it recovers", map[string]interface{}{"error": err.Error()})
		}
	}

	ticker := time.NewTicker(s.cfg.RevalueInterval)
	defer ticker.Stop()

	for {
		if _, err := s.RevalueAll(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error(ctx, err, "Revaluation run failed")
		}
		select {
		case <-ctx.Done():
			s.logger.Info(context.Background(), "Valuation Service stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// ImportTrades stores trades, typically loaded from a CSV file, and returns how many were saved.
func (s *ValuationService) ImportTrades(ctx context.Context, trades []*domain.OptionTrade) (int, error) {
	for i, t := range trades {
		if _, err := s.trades.CreateTrade(ctx, t); err != nil {
			return i, fmt.Errorf("importing trade %d (%s): %w", i+1, t.Symbol, err)
		}
	}
	s.logger.Info(ctx, "Trades imported", map[string]interface{}{"count": len(trades)})
	return len(trades), nil
}

type pricingJob struct {
	trade  *domain.OptionTrade
	market domain.MarketData
}

type pricingResult struct {
	trade     *domain.OptionTrade
	valuation *domain.Valuation
	err       error
}

// RevalueAll prices every active trade once. Market data is fetched once per symbol and
// trades are priced by a pool of PricingWorkers goroutines. A trade that fails is logged and
// counted; the run carries on with the rest of the book.
func (s *ValuationService) RevalueAll(ctx context.Context) (*RunSummary, error) {
	runID := uuid.NewString()
	ctx = ports.ContextWithRunID(ctx, runID)
	asOf := s.now()

	summary := &RunSummary{
		RunID:     runID,
		StartedAt: asOf,
		TotalPV:   decimal.Zero,
		BySymbol:  make(map[string]decimal.Decimal),
	}

	active, err := s.trades.FindActiveTrades(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("loading active trades: %w", err)
	}
	summary.Trades = len(active)
	if len(active) == 0 {
		summary.FinishedAt = s.now()
		s.logger.Info(ctx, "No active trades to revalue")
		return summary, nil
	}

	bySymbol := make(map[string][]*domain.OptionTrade)
	for _, t := range active {
		bySymbol[t.Symbol] = append(bySymbol[t.Symbol], t)
	}
	symbols := make([]string, 0, len(bySymbol))
	for sym := range bySymbol {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	jobs := make([]pricingJob, 0, len(active))
	for _, sym := range symbols {
		md, err := s.market.MarketData(ctx, sym)
		if err != nil {
			summary.Failed += len(bySymbol[sym])
			s.logger.Error(ctx, err, "Market data unavailable, skipping symbol", map[string]interface{}{
				"symbol": sym, "trades": len(bySymbol[sym]),
			})
			continue
		}
		if md.AsOf.IsZero() {
			md.AsOf = asOf
		}
		for _, t := range bySymbol[sym] {
			jobs = append(jobs, pricingJob{trade: t, market: md})
		}
	}

	for res := range s.price(ctx, runID, jobs) {
		if res.err != nil {
			summary.Failed++
			s.logger.Error(ctx, res.err, "Trade valuation failed", map[string]interface{}{
				"tradeID": res.trade.ID, "symbol": res.trade.Symbol,
			})
			continue
		}
		v := res.valuation
		summary.Priced++
		summary.TotalPV = summary.TotalPV.Add(v.PresentValue)
		summary.BySymbol[v.Symbol] = summary.BySymbol[v.Symbol].Add(v.PresentValue)
		summary.Valuations = append(summary.Valuations, v)
	}
	sort.Slice(summary.Valuations, func(i, j int) bool {
		return summary.Valuations[i].TradeID < summary.Valuations[j].TradeID
	})
	summary.FinishedAt = s.now()

	s.logger.Info(ctx, "Revaluation run complete", map[string]interface{}{
		"trades":   summary.Trades,
		"priced":   summary.Priced,
		"failed":   summary.Failed,
		"totalPV":  summary.TotalPV.StringFixed(2),
		"duration": summary.FinishedAt.Sub(summary.StartedAt).String(),
	})

	if s.cfg.ExportValuationsCSV != "" && len(summary.Valuations) > 0 {
		if err := utils.WriteValuationsToCSV(summary.Valuations, s.cfg.ExportValuationsCSV); err != nil {
			s.logger.Error(ctx, err, "Failed to export valuations", map[string]interface{}{"path": s.cfg.ExportValuationsCSV})
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("revaluation run %s interrupted: %w: %w", runID, ports.ErrContextCanceled, err)
	}
	return summary, nil
}

// price fans jobs out to the worker pool. The returned channel closes once every job has a result.
func (s *ValuationService) price(ctx context.Context, runID string, jobs []pricingJob) <-chan pricingResult {
	jobCh := make(chan pricingJob)
	resultCh := make(chan pricingResult, len(jobs))

	workers := s.cfg.PricingWorkers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				resultCh <- s.priceOne(ctx, runID, job)
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, job := range jobs {
			jobCh <- job
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	return resultCh
}

func (s *ValuationService) priceOne(ctx context.Context, runID string, job pricingJob) pricingResult {
	v, err := s.pricer.PriceTrade(ctx, job.trade, job.market)
	if err != nil {
		return pricingResult{trade: job.trade, err: err}
	}
	v.RunID = runID
	if _, err := s.valuations.SaveValuation(ctx, v); err != nil {
		return pricingResult{trade: job.trade, err: fmt.Errorf("saving valuation: %w", err)}
	}
	return pricingResult{trade: job.trade, valuation: v}
}
