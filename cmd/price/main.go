package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"optionPricer/internal/adapters/binanceclient"
	"optionPricer/internal/adapters/logger"
	"optionPricer/internal/analytics"
	"optionPricer/internal/domain"
	"optionPricer/internal/lattice"
	"optionPricer/internal/marketdata"
	"optionPricer/internal/ports"
	"optionPricer/internal/pricer"
)

var (
	side        = flag.String("side", "put", "option side: call or put")
	style       = flag.String("style", "american", "exercise style: american or european")
	strike      = flag.Float64("strike", 100, "strike price")
	expiry      = flag.Float64("expiry", 1, "time to expiry in years")
	spot        = flag.Float64("spot", 100, "underlying spot price (ignored with -symbol)")
	vol         = flag.Float64("vol", 0.2, "annualized volatility (ignored with -symbol)")
	rate        = flag.Float64("rate", 0.05, "continuously compounded risk-free rate")
	div         = flag.Float64("div", 0, "continuous dividend yield")
	qty         = flag.Float64("qty", 1, "signed quantity of contracts")
	mult        = flag.Float64("mult", 1, "contract multiplier")
	latticeName = flag.String("lattice", "crr", "lattice: crr, jarrow-rudd, trigeorgis, tian")
	treeName    = flag.String("tree", "binomial", "tree: binomial or trinomial")
	steps       = flag.Int("steps", lattice.DefaultSteps, "number of time steps")
	symbol      = flag.String("symbol", "", "fetch spot and realized volatility for this Binance futures symbol")
	volInterval = flag.String("vol-interval", "1d", "kline interval for realized volatility")
	volLookback = flag.Int("vol-lookback", 90, "returns in the realized volatility window")
	verbose     = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()

	level := logger.LevelWarn
	if *verbose {
		level = logger.LevelDebug
	}
	appLogger := logger.NewStdLogger(level)

	pc, err := domain.ParsePutCall(*side)
	if err != nil {
		log.Fatalf("Invalid -side: %v", err)
	}
	es, err := domain.ParseExerciseStyle(*style)
	if err != nil {
		log.Fatalf("Invalid -style: %v", err)
	}
	terms, err := domain.NewOptionTerms(*qty, *mult, *strike, *expiry, pc, es)
	if err != nil {
		log.Fatalf("Invalid option terms: %v", err)
	}
	spec, err := lattice.ParseSpecification(*latticeName)
	if err != nil {
		log.Fatalf("Invalid -lattice: %v", err)
	}
	tree, err := lattice.ParseTree(*treeName)
	if err != nil {
		log.Fatalf("Invalid -tree: %v", err)
	}
	p, err := pricer.New(pricer.Config{Lattice: spec, Tree: tree, Steps: *steps})
	if err != nil {
		log.Fatalf("Invalid pricer settings: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	provider, err := marketDataProvider(appLogger)
	if err != nil {
		log.Fatalf("Market data setup failed: %v", err)
	}
	sym := *symbol
	if sym == "" {
		sym = "MANUAL"
	}
	market, err := provider.MarketData(ctx, sym)
	if err != nil {
		log.Fatalf("Market data unavailable: %v", err)
	}

	res, err := p.Price(terms, market)
	if err != nil {
		log.Fatalf("Pricing failed: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Underlying\t%s\n", market.Symbol)
	fmt.Fprintf(w, "Spot\t%.6f\n", market.Spot)
	fmt.Fprintf(w, "Volatility\t%.6f\n", market.Volatility)
	fmt.Fprintf(w, "Rate / Yield\t%.4f / %.4f\n", market.Rate, market.DividendYield)
	fmt.Fprintf(w, "Model\t%s %s, %d steps\n", res.Lattice, res.Tree, res.Steps)
	fmt.Fprintf(w, "Unit price\t%.10f\n", res.UnitPrice)
	fmt.Fprintf(w, "Trade value\t%.10f\n", res.Value)
	if market.Volatility > 0 && terms.Expiry() > 0 {
		bs := analytics.BlackScholes(terms.Side(), market.Spot, terms.Strike(), terms.Expiry(),
			market.Rate, market.DividendYield, market.Volatility)
		fmt.Fprintf(w, "Black-Scholes (European)\t%.10f\n", bs)
		if terms.IsAmerican() {
			premium, err := analytics.EarlyExercisePremium(p, terms, market)
			if err != nil {
				log.Fatalf("Early exercise premium failed: %v", err)
			}
			fmt.Fprintf(w, "Early exercise premium\t%.10f\n", premium)
		}
	}
	w.Flush()
}

func marketDataProvider(appLogger ports.Logger) (ports.MarketDataProvider, error) {
	if *symbol == "" {
		return marketdata.NewStaticProvider(domain.MarketData{
			Symbol:        "MANUAL",
			Spot:          *spot,
			Volatility:    *vol,
			Rate:          *rate,
			DividendYield: *div,
		}), nil
	}
	return binanceclient.New(binanceclient.Config{
		Logger:        appLogger,
		Rate:          *rate,
		DividendYield: *div,
		VolInterval:   *volInterval,
		VolLookback:   *volLookback,
	})
}
