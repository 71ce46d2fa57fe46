package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/vsinha/blendopt/pkg/interfaces/cli/commands"
)

func main() {
	// Command line flags
	var (
		lotsFile     = flag.String("lots", "", "Path to lots CSV file")
		analysesFile = flag.String("analyses", "", "Path to lot analyses CSV file")
		specsFile    = flag.String("specs", "", "Path to specifications CSV file")
		costsFile    = flag.String("costs", "", "Path to cost profiles CSV file")
		configFile   = flag.String("config", "", "Path to YAML run configuration (optional)")
		productCode  = flag.String("product", "", "Product code to blend")
		customerID   = flag.String("customer", "", "Customer for specification resolution (optional)")
		warehouse    = flag.String("warehouse", "", "Warehouse filter (optional)")
		requiredMass = flag.String("mass", "", "Required blend mass in kg")
		strategy     = flag.String("strategy", "", "Strategy: strict_fefo, minimize_cost, fefo_cost_balanced, minimum_lot_count")
		compare      = flag.Bool("compare", false, "Compare strategies instead of running one")
		strategies   = flag.String("strategies", "", "Comma-separated strategies for -compare (default: all)")
		format       = flag.String("format", "text", "Output format: text, json")
		timeout      = flag.Duration("timeout", 0, "Abort evaluation after this duration (optional)")
		verbose      = flag.Bool("verbose", false, "Enable verbose output")
	)

	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	config := commands.Config{
		LotsFile:     *lotsFile,
		AnalysesFile: *analysesFile,
		SpecsFile:    *specsFile,
		CostsFile:    *costsFile,
		ConfigFile:   *configFile,
		ProductCode:  *productCode,
		CustomerID:   *customerID,
		Warehouse:    *warehouse,
		RequiredMass: *requiredMass,
		Strategy:     *strategy,
		Format:       *format,
		Verbose:      *verbose,
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	var err error
	if *compare {
		err = commands.NewCompareCommand(config, *strategies, logger).Execute(ctx)
	} else {
		err = commands.NewOptimizeCommand(config, logger).Execute(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
