package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"optionPricer/internal/analytics"
	"optionPricer/internal/domain"
	"optionPricer/internal/lattice"
	"optionPricer/internal/pricer"
)

var (
	side        = flag.String("side", "put", "option side: call or put")
	style       = flag.String("style", "american", "exercise style: american or european")
	strike      = flag.Float64("strike", 100, "strike price")
	expiry      = flag.Float64("expiry", 1, "time to expiry in years")
	spot        = flag.Float64("spot", 100, "underlying spot price")
	vol         = flag.Float64("vol", 0.2, "annualized volatility")
	rate        = flag.Float64("rate", 0.05, "continuously compounded risk-free rate")
	div         = flag.Float64("div", 0, "continuous dividend yield")
	stepList    = flag.String("steps", "10,25,50,100,200,500", "comma-separated step counts")
	latticeName = flag.String("lattice", "all", "lattice name or 'all'")
	treeName    = flag.String("tree", "all", "tree name or 'all'")
)

func main() {
	flag.Parse()

	pc, err := domain.ParsePutCall(*side)
	if err != nil {
		log.Fatalf("Invalid -side: %v", err)
	}
	es, err := domain.ParseExerciseStyle(*style)
	if err != nil {
		log.Fatalf("Invalid -style: %v", err)
	}
	terms, err := domain.NewOptionTerms(1, 1, *strike, *expiry, pc, es)
	if err != nil {
		log.Fatalf("Invalid option terms: %v", err)
	}
	market := domain.MarketData{Symbol: "MANUAL", Spot: *spot, Volatility: *vol, Rate: *rate, DividendYield: *div}
	if err := market.Validate(); err != nil {
		log.Fatalf("Invalid market data: %v", err)
	}
	steps, err := parseSteps(*stepList)
	if err != nil {
		log.Fatalf("Invalid -steps: %v", err)
	}
	specs, err := selectSpecifications(*latticeName)
	if err != nil {
		log.Fatalf("Invalid -lattice: %v", err)
	}
	trees, err := selectTrees(*treeName)
	if err != nil {
		log.Fatalf("Invalid -tree: %v", err)
	}

	p, err := pricer.New(pricer.Config{})
	if err != nil {
		log.Fatalf("Failed to create pricer: %v", err)
	}

	fmt.Printf("%s %s K=%g T=%g S=%g vol=%g r=%g q=%g\n\n", es, pc, *strike, *expiry, *spot, *vol, *rate, *div)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Lattice\tTree\tSteps\tPrice\tBenchmark\tError\t")
	for _, spec := range specs {
		for _, tree := range trees {
			report, err := analytics.Convergence(p, terms, market, steps, pricer.WithLattice(spec), pricer.WithTree(tree))
			if errors.Is(err, domain.ErrUnsupportedLattice) {
				fmt.Fprintf(w, "%s\t%s\t-\tunsupported\t-\t-\t\n", spec.Name(), tree.Name())
				continue
			}
			if err != nil {
				log.Printf("Convergence failed for %s %s: %v", spec.Name(), tree.Name(), err)
				continue
			}
			for _, pt := range report.Points {
				fmt.Fprintf(w, "%s\t%s\t%d\t%.8f\t%.8f\t%+.2e\t\n",
					report.Lattice, report.Tree, pt.Steps, pt.Price, pt.Benchmark, pt.Error)
			}
		}
	}
	w.Flush()

	if terms.IsAmerican() {
		fmt.Println("\nBenchmark: price at the largest step count of each lattice (no closed form for American exercise).")
	} else {
		fmt.Println("\nBenchmark: Black-Scholes closed form.")
	}
}

func parseSteps(s string) ([]int, error) {
	var steps []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("step count %q must be a positive integer", part)
		}
		steps = append(steps, n)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("no step counts given")
	}
	return steps, nil
}

func selectSpecifications(name string) ([]lattice.Specification, error) {
	if strings.EqualFold(name, "all") {
		return lattice.Specifications(), nil
	}
	spec, err := lattice.ParseSpecification(name)
	if err != nil {
		return nil, err
	}
	return []lattice.Specification{spec}, nil
}

func selectTrees(name string) ([]lattice.Tree, error) {
	if strings.EqualFold(name, "all") {
		return lattice.Trees(), nil
	}
	tree, err := lattice.ParseTree(name)
	if err != nil {
		return nil, err
	}
	return []lattice.Tree{tree}, nil
}
