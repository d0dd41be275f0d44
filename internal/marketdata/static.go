package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"optionPricer/internal/domain"
	"optionPricer/internal/ports"
)

// StaticProvider serves fixed market data per symbol. It backs offline runs and tests.
type StaticProvider struct {
	mu   sync.RWMutex
	data map[string]domain.MarketData
}

// NewStaticProvider creates a provider seeded with the given snapshots, keyed by their Symbol.
func NewStaticProvider(snapshots ...domain.MarketData) *StaticProvider {
	p := &StaticProvider{data: make(map[string]domain.MarketData, len(snapshots))}
	for _, s := range snapshots {
		p.data[s.Symbol] = s
	}
	return p
}

// Set replaces the snapshot for md.Symbol.
func (p *StaticProvider) Set(md domain.MarketData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[md.Symbol] = md
}

// MarketData implements ports.MarketDataProvider. A zero AsOf is stamped with the current time.
func (p *StaticProvider) MarketData(ctx context.Context, symbol string) (domain.MarketData, error) {
	if err := ctx.Err(); err != nil {
		return domain.MarketData{}, fmt.Errorf("static market data for %s: %w: %w", symbol, ports.ErrContextCanceled, err)
	}
	p.mu.RLock()
	md, ok := p.data[symbol]
	p.mu.RUnlock()
	if !ok {
		return domain.MarketData{}, fmt.Errorf("no static market data for %s: %w", symbol, ports.ErrNotFound)
	}
	if md.AsOf.IsZero() {
		md.AsOf = time.Now()
	}
	return md, nil
}
