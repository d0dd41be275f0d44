package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"optionPricer/internal/adapters/logger"
	"optionPricer/internal/lattice"
	"optionPricer/internal/marketdata"
	"optionPricer/internal/ports"
)

// Config holds all application configuration.
type Config struct {
	// Binance API (public market data endpoints work without keys)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Pricing defaults
	Lattice lattice.Specification
	Tree    lattice.Tree
	Steps   int

	// Market inputs not observable on the exchange
	RiskFreeRate  float64 // Continuously compounded, e.g. 0.05 for 5%
	DividendYield float64 // Continuous yield, e.g. 0.01 for 1%

	// Realized volatility window
	VolInterval  string               // Kline interval, e.g. "1d"
	VolLookback  int                  // Number of returns
	VolEstimator marketdata.Estimator // close-to-close or parkinson

	// Revaluation
	PricingWorkers  int
	RevalueInterval time.Duration

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel

	// Optional CSV hooks
	ImportTradesCSV     string // Seed trades from this file at startup
	ExportValuationsCSV string // Write each run's valuations to this file
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)

	// Pricing defaults
	cfg.Lattice, err = lattice.ParseSpecification(getEnv("PRICER_LATTICE", "crr"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid PRICER_LATTICE: %v", err))
	}
	cfg.Tree, err = lattice.ParseTree(getEnv("PRICER_TREE", "binomial"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid PRICER_TREE: %v", err))
	}
	if _, ok := cfg.Tree.(lattice.Trinomial); ok && cfg.Lattice != nil {
		if _, err := cfg.Lattice.Trinomial(0.2, 0, 1.0/lattice.DefaultSteps); errors.Is(err, ports.ErrUnsupportedLattice) {
			errs = append(errs, fmt.Sprintf("PRICER_LATTICE %s cannot build a trinomial tree: %v", cfg.Lattice.Name(), err))
		}
	}

	cfg.Steps, err = getEnvAsIntRequired("PRICER_STEPS", lattice.DefaultSteps)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid PRICER_STEPS: %v", err))
	} else if cfg.Steps < 1 {
		errs = append(errs, "PRICER_STEPS must be at least 1")
	}

	// Market inputs
	cfg.RiskFreeRate, err = getEnvAsFloatRequired("RISK_FREE_RATE", 0.05)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RISK_FREE_RATE: %v", err))
	}
	cfg.DividendYield, err = getEnvAsFloatRequired("DIVIDEND_YIELD", 0.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid DIVIDEND_YIELD: %v", err))
	}

	// Volatility window
	cfg.VolInterval = getEnv("VOL_INTERVAL", "1d")
	if _, err := marketdata.PeriodsPerYear(cfg.VolInterval); err != nil {
		errs = append(errs, fmt.Sprintf("invalid VOL_INTERVAL: %v", err))
	}
	cfg.VolLookback, err = getEnvAsIntRequired("VOL_LOOKBACK", 90)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid VOL_LOOKBACK: %v", err))
	} else if cfg.VolLookback < 2 {
		errs = append(errs, "VOL_LOOKBACK must be at least 2")
	} else if cfg.VolLookback > 1498 {
		errs = append(errs, "VOL_LOOKBACK cannot exceed 1498 (Binance kline limit)")
	}

	cfg.VolEstimator, err = marketdata.ParseEstimator(getEnv("VOL_ESTIMATOR", "close-to-close"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid VOL_ESTIMATOR: %v", err))
	}

	// Revaluation
	cfg.PricingWorkers = getEnvAsInt("PRICING_WORKERS", 4)
	if cfg.PricingWorkers <= 0 {
		errs = append(errs, "PRICING_WORKERS must be positive")
	}
	revalueSeconds := getEnvAsInt("REVALUE_INTERVAL_SECONDS", 300)
	if revalueSeconds <= 0 {
		errs = append(errs, "REVALUE_INTERVAL_SECONDS must be positive")
	}
	cfg.RevalueInterval = time.Duration(revalueSeconds) * time.Second

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/option_pricer.db")

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	// CSV hooks
	cfg.ImportTradesCSV = getEnv("IMPORT_TRADES_CSV", "")
	cfg.ExportValuationsCSV = getEnv("EXPORT_VALUATIONS_CSV", "")

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s: %w", strings.Join(errs, "; "), ports.ErrConfigurationError)
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
