package marketdata

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionPricer/internal/domain"
	"optionPricer/internal/ports"
)

func closes(values ...float64) []*domain.Kline {
	now := time.Now()
	klines := make([]*domain.Kline, len(values))
	for i, v := range values {
		klines[i] = &domain.Kline{OpenTime: now.Add(time.Duration(i) * time.Hour), Close: v}
	}
	return klines
}

func TestPeriodsPerYear(t *testing.T) {
	tests := []struct {
		interval string
		want     float64
		wantErr  bool
	}{
		{"1d", 365, false},
		{"1h", 8760, false},
		{"4h", 2190, false},
		{"1w", 365.0 / 7, false},
		{"15m", 35040, false},
		{"1M", 12, false},
		{"d", 0, true},
		{"0h", 0, true},
		{"3x", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.interval, func(t *testing.T) {
			got, err := PeriodsPerYear(tt.interval)
			if tt.wantErr {
				assert.ErrorIs(t, err, ports.ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRealizedVolatility(t *testing.T) {
	t.Run("constant growth has zero volatility", func(t *testing.T) {
		vol, err := RealizedVolatility(closes(100, 101, 102.01, 103.0301), 365)
		require.NoError(t, err)
		assert.InDelta(t, 0, vol, 1e-9)
	})

	t.Run("alternating moves", func(t *testing.T) {
		// log returns +a, -a, +a, -a: mean 0, sample variance 4a^2/3.
		up := 110.0
		vol, err := RealizedVolatility(closes(100, up, 100, up, 100), 365)
		require.NoError(t, err)
		a := math.Log(up / 100)
		assert.InDelta(t, math.Sqrt(4*a*a/3*365), vol, 1e-12)
	})

	t.Run("insufficient history", func(t *testing.T) {
		_, err := RealizedVolatility(closes(100, 101), 365)
		assert.ErrorIs(t, err, ports.ErrInsufficientHistory)
	})

	t.Run("bad close", func(t *testing.T) {
		_, err := RealizedVolatility(closes(100, 0, 101), 365)
		assert.ErrorIs(t, err, ports.ErrInvalidRequest)
	})
}

func TestStaticProvider(t *testing.T) {
	asOf := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	p := NewStaticProvider(domain.MarketData{Symbol: "BTCUSDT", Spot: 50000, Volatility: 0.6, AsOf: asOf})

	md, err := p.MarketData(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, md.Spot)
	assert.Equal(t, asOf, md.AsOf)

	_, err = p.MarketData(context.Background(), "ETHUSDT")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	p.Set(domain.MarketData{Symbol: "ETHUSDT", Spot: 3000, Volatility: 0.7})
	md, err = p.MarketData(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.False(t, md.AsOf.IsZero())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.MarketData(ctx, "BTCUSDT")
	assert.ErrorIs(t, err, ports.ErrContextCanceled)
}

func TestParkinson(t *testing.T) {
	bars := []*domain.Kline{
		{High: 110, Low: 100, Close: 105},
		{High: 121, Low: 110, Close: 115},
	}
	vol, err := Parkinson{}.Estimate(bars, 365)
	require.NoError(t, err)
	// Both bars span a factor of 1.1.
	a := math.Log(1.1)
	assert.InDelta(t, math.Sqrt(2*a*a/(4*math.Ln2*2)*365), vol, 1e-12)

	_, err = Parkinson{}.Estimate(bars[:1], 365)
	assert.ErrorIs(t, err, ports.ErrInsufficientHistory)

	_, err = Parkinson{}.Estimate([]*domain.Kline{{High: 90, Low: 100}, {High: 1, Low: 1}}, 365)
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)
}

func TestParseEstimator(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "close-to-close", false},
		{"close", "close-to-close", false},
		{"Parkinson", "parkinson", false},
		{"high-low", "parkinson", false},
		{"garch", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e, err := ParseEstimator(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ports.ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Name())
		})
	}
}

func TestCloseToCloseMatchesRealizedVolatility(t *testing.T) {
	bars := closes(100, 103, 99, 104, 101)
	want, err := RealizedVolatility(bars, 365)
	require.NoError(t, err)
	got, err := CloseToClose{}.Estimate(bars, 365)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 3, CloseToClose{}.RequiredKlines())
}
