package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"optionPricer/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}
func (m *mockLogger) Fatal(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "option-pricer-test-*")
	require.NoError(t, err)

	repo, err := NewRepository(Config{
		DBPath: filepath.Join(tmpDir, "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}
	return repo, cleanup
}

func newTrade(symbol string, expiry time.Time) *domain.OptionTrade {
	return &domain.OptionTrade{
		Symbol:     symbol,
		Quantity:   -2,
		Multiplier: 100,
		Strike:     100,
		ExpiryDate: expiry,
		Side:       domain.Put,
		Style:      domain.American,
	}
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}

func TestRepository_CreateAndFindTrade(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	expiry := time.Date(2030, 6, 30, 8, 0, 0, 0, time.UTC)
	trade := newTrade("ETHUSDT", expiry)
	trade.Style = ""

	id, err := repo.CreateTrade(ctx, trade)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))
	assert.Equal(t, id, trade.ID)

	found, err := repo.FindTradeByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "ETHUSDT", found.Symbol)
	assert.Equal(t, -2.0, found.Quantity)
	assert.Equal(t, 100.0, found.Multiplier)
	assert.Equal(t, domain.Put, found.Side)
	assert.Equal(t, domain.American, found.Style)
	assert.True(t, expiry.Equal(found.ExpiryDate), "expiry %v != %v", expiry, found.ExpiryDate)
	assert.False(t, found.CreatedAt.IsZero())

	missing, err := repo.FindTradeByID(ctx, 9999)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_FindActiveTrades(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	asOf := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, tc := range []struct {
		symbol string
		expiry time.Time
	}{
		{"BTCUSDT", asOf.AddDate(0, 3, 0)},
		{"ETHUSDT", asOf.AddDate(0, -1, 0)},
		{"SOLUSDT", asOf},
		{"BNBUSDT", asOf.AddDate(0, 1, 0)},
	} {
		_, err := repo.CreateTrade(ctx, newTrade(tc.symbol, tc.expiry))
		require.NoError(t, err)
	}

	active, err := repo.FindActiveTrades(ctx, asOf)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, "SOLUSDT", active[0].Symbol)
	assert.Equal(t, "BNBUSDT", active[1].Symbol)
	assert.Equal(t, "BTCUSDT", active[2].Symbol)

	none, err := repo.FindActiveTrades(ctx, asOf.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_Valuations(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	tradeID, err := repo.CreateTrade(ctx, newTrade("BTCUSDT", time.Now().AddDate(1, 0, 0)))
	require.NoError(t, err)

	latest, err := repo.LatestValuation(ctx, tradeID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	pvs := []string{"-1214.7455971449802", "-1190.25", "-1201.000000001"}
	for i, pv := range pvs {
		v := &domain.Valuation{
			RunID:         "run-" + pv,
			TradeID:       tradeID,
			Symbol:        "BTCUSDT",
			Spot:          100,
			Volatility:    0.2,
			Rate:          0.05,
			DividendYield: 0,
			Lattice:       "crr",
			Tree:          "binomial",
			Steps:         50,
			UnitPrice:     6.07,
			PresentValue:  decimal.RequireFromString(pv),
			ValuedAt:      base.Add(time.Duration(i) * time.Hour),
		}
		id, err := repo.SaveValuation(ctx, v)
		require.NoError(t, err)
		assert.Equal(t, id, v.ID)
	}

	history, err := repo.FindValuationsByTrade(ctx, tradeID, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, pvs[2], history[0].PresentValue.String())
	assert.Equal(t, pvs[1], history[1].PresentValue.String())
	assert.Equal(t, "crr", history[0].Lattice)
	assert.Equal(t, 50, history[0].Steps)

	latest, err = repo.LatestValuation(ctx, tradeID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, decimal.RequireFromString(pvs[2]).Equal(latest.PresentValue))
	assert.True(t, base.Add(2*time.Hour).Equal(latest.ValuedAt))

	other, err := repo.FindValuationsByTrade(ctx, tradeID+1, 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}
