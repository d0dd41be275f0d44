package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionPricer/internal/adapters/logger"
	"optionPricer/internal/lattice"
	"optionPricer/internal/ports"
)

var configKeys = []string{
	"BINANCE_API_KEY", "BINANCE_API_SECRET", "IS_TESTNET",
	"PRICER_LATTICE", "PRICER_TREE", "PRICER_STEPS",
	"RISK_FREE_RATE", "DIVIDEND_YIELD", "VOL_INTERVAL", "VOL_LOOKBACK", "VOL_ESTIMATOR",
	"PRICING_WORKERS", "REVALUE_INTERVAL_SECONDS", "DB_PATH", "LOG_LEVEL",
	"IMPORT_TRADES_CSV", "EXPORT_VALUATIONS_CSV",
}

// clearEnv blanks every key so a developer's .env or shell cannot leak into the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, lattice.CoxRossRubinstein{}, cfg.Lattice)
	assert.Equal(t, lattice.Binomial{}, cfg.Tree)
	assert.Equal(t, 50, cfg.Steps)
	assert.Equal(t, 0.05, cfg.RiskFreeRate)
	assert.Equal(t, 0.0, cfg.DividendYield)
	assert.Equal(t, "1d", cfg.VolInterval)
	assert.Equal(t, 90, cfg.VolLookback)
	assert.Equal(t, "close-to-close", cfg.VolEstimator.Name())
	assert.Equal(t, 4, cfg.PricingWorkers)
	assert.Equal(t, 5*time.Minute, cfg.RevalueInterval)
	assert.Equal(t, "./data/option_pricer.db", cfg.DBPath)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.IsTestnet)
	assert.Empty(t, cfg.ImportTradesCSV)
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRICER_LATTICE", "jarrow-rudd")
	t.Setenv("PRICER_TREE", "trinomial")
	t.Setenv("PRICER_STEPS", "200")
	t.Setenv("RISK_FREE_RATE", "0.03")
	t.Setenv("DIVIDEND_YIELD", "0.01")
	t.Setenv("VOL_INTERVAL", "4h")
	t.Setenv("VOL_ESTIMATOR", "parkinson")
	t.Setenv("PRICING_WORKERS", "8")
	t.Setenv("REVALUE_INTERVAL_SECONDS", "60")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("EXPORT_VALUATIONS_CSV", "out.csv")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "jarrow-rudd", cfg.Lattice.Name())
	assert.Equal(t, "trinomial", cfg.Tree.Name())
	assert.Equal(t, 200, cfg.Steps)
	assert.Equal(t, 0.03, cfg.RiskFreeRate)
	assert.Equal(t, 0.01, cfg.DividendYield)
	assert.Equal(t, "4h", cfg.VolInterval)
	assert.Equal(t, "parkinson", cfg.VolEstimator.Name())
	assert.Equal(t, 8, cfg.PricingWorkers)
	assert.Equal(t, time.Minute, cfg.RevalueInterval)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "out.csv", cfg.ExportValuationsCSV)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg string
	}{
		{"unknown lattice", map[string]string{"PRICER_LATTICE": "hull-white"}, "PRICER_LATTICE"},
		{"unknown tree", map[string]string{"PRICER_TREE": "quadrinomial"}, "PRICER_TREE"},
		{"tian trinomial", map[string]string{"PRICER_LATTICE": "tian", "PRICER_TREE": "trinomial"}, "cannot build a trinomial tree"},
		{"zero steps", map[string]string{"PRICER_STEPS": "0"}, "PRICER_STEPS must be at least 1"},
		{"bad steps", map[string]string{"PRICER_STEPS": "fifty"}, "invalid PRICER_STEPS"},
		{"bad rate", map[string]string{"RISK_FREE_RATE": "5%"}, "invalid RISK_FREE_RATE"},
		{"bad interval", map[string]string{"VOL_INTERVAL": "daily"}, "invalid VOL_INTERVAL"},
		{"bad estimator", map[string]string{"VOL_ESTIMATOR": "garch"}, "invalid VOL_ESTIMATOR"},
		{"short lookback", map[string]string{"VOL_LOOKBACK": "1"}, "VOL_LOOKBACK must be at least 2"},
		{"no workers", map[string]string{"PRICING_WORKERS": "0"}, "PRICING_WORKERS must be positive"},
		{"no interval", map[string]string{"REVALUE_INTERVAL_SECONDS": "-5"}, "REVALUE_INTERVAL_SECONDS must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := LoadConfig()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ports.ErrConfigurationError)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
