package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"optionPricer/config"
	"optionPricer/internal/adapters/binanceclient"
	"optionPricer/internal/adapters/logger"
	"optionPricer/internal/adapters/sqlite"
	"optionPricer/internal/app"
	"optionPricer/internal/pricer"
	"optionPricer/internal/utils"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()

	// 4. Initialize Market Data (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:        cfg.APIKey,
		SecretKey:     cfg.SecretKey,
		UseTestnet:    cfg.IsTestnet,
		Logger:        appLogger,
		Rate:          cfg.RiskFreeRate,
		DividendYield: cfg.DividendYield,
		VolInterval:   cfg.VolInterval,
		VolLookback:   cfg.VolLookback,
		Estimator:     cfg.VolEstimator,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	// 5. Initialize Pricer
	optionPricer, err := pricer.New(pricer.Config{
		Lattice: cfg.Lattice,
		Tree:    cfg.Tree,
		Steps:   cfg.Steps,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize pricer")
		log.Fatalf("FATAL: Failed to initialize pricer: %v", err)
	}

	// 6. Initialize Application Service
	valuationService, err := app.NewValuationService(
		cfg,
		appLogger,
		binanceClient,
		repo,
		repo,
		optionPricer,
	)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize valuation service")
		log.Fatalf("FATAL: Failed to initialize valuation service: %v", err)
	}

	// 7. Optionally seed the book
	if cfg.ImportTradesCSV != "" {
		trades, err := utils.ReadOptionTradesFromCSV(cfg.ImportTradesCSV)
		if err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to read trades CSV", map[string]interface{}{"path": cfg.ImportTradesCSV})
			log.Fatalf("FATAL: Failed to read trades CSV: %v", err)
		}
		if _, err := valuationService.ImportTrades(context.Background(), trades); err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to import trades")
			log.Fatalf("FATAL: Failed to import trades: %v", err)
		}
	}

	// 8. Start the Service
	if err := valuationService.Start(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Valuation service exited with error")
		log.Fatalf("FATAL: Valuation service exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
