package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"optionPricer/config"
	"optionPricer/internal/adapters/binanceclient"
	"optionPricer/internal/adapters/logger"
	"optionPricer/internal/marketdata"
	"optionPricer/internal/utils"
)

var (
	symbol = flag.String("symbol", "ETHUSDT", "Binance futures symbol")
	outDir = flag.String("out", "data", "directory for the kline CSV (empty to skip writing)")
)

func main() {
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)

	// 3. Initialize Market Data (Binance Adapter)
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
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	klines, err := binanceClient.GetKlines(ctx, *symbol, cfg.VolInterval, cfg.VolLookback+1)
	if err != nil {
		log.Fatalf("Error fetching klines: %v", err)
	}
	periods, err := marketdata.PeriodsPerYear(cfg.VolInterval)
	if err != nil {
		log.Fatalf("Invalid VOL_INTERVAL: %v", err)
	}
	realized, err := cfg.VolEstimator.Estimate(klines, periods)
	if err != nil {
		log.Fatalf("Error estimating volatility: %v", err)
	}
	fmt.Printf("%s %s x%d: %s volatility %.4f\n", *symbol, cfg.VolInterval, len(klines), cfg.VolEstimator.Name(), realized)

	if *outDir == "" {
		return
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Error creating %s: %v", *outDir, err)
	}
	filename := filepath.Join(*outDir, fmt.Sprintf("%s_%s_%s.csv", *symbol, cfg.VolInterval, time.Now().Format("20060102")))
	if err := utils.WriteKlinesToCSV(klines, filename); err != nil {
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Saved klines", map[string]interface{}{"filename": filename, "count": len(klines)})
}
