package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vsinha/blendopt/pkg/application/services"
	"github.com/vsinha/blendopt/pkg/domain/entities"
	"github.com/vsinha/blendopt/pkg/interfaces/cli/output"
)

// CompareCommand runs every requested strategy over the same snapshot and
// prints the trade-off report
type CompareCommand struct {
	config     Config
	strategies string
	logger     zerolog.Logger
}

// NewCompareCommand creates a new compare command; strategies is a
// comma-separated list, empty meaning all
func NewCompareCommand(config Config, strategies string, logger zerolog.Logger) *CompareCommand {
	return &CompareCommand{config: config, strategies: strategies, logger: logger}
}

// Execute loads the planning data, runs the comparator, and prints the report
func (c *CompareCommand) Execute(ctx context.Context) error {
	format, err := output.ParseFormat(c.config.Format)
	if err != nil {
		return err
	}

	strategies, err := parseStrategyList(c.strategies)
	if err != nil {
		return err
	}

	env, err := buildEnvironment(c.config, c.logger)
	if err != nil {
		return err
	}

	req, err := env.buildRequest(ctx, c.config)
	if err != nil {
		return err
	}

	comparator := services.NewComparatorService(env.optimizer, c.logger)
	report, err := comparator.CompareScenarios(ctx, req, strategies, env.lotRepo)
	if err != nil {
		return fmt.Errorf("scenario comparison failed: %w", err)
	}

	rendered, err := output.RenderReport(report, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, rendered)

	return nil
}

// parseStrategyList parses a comma-separated strategy list; empty selects
// every strategy
func parseStrategyList(s string) ([]entities.Strategy, error) {
	if strings.TrimSpace(s) == "" {
		return entities.AllStrategies(), nil
	}
	var strategies []entities.Strategy
	for _, name := range strings.Split(s, ",") {
		strategy, err := entities.ParseStrategy(name)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, strategy)
	}
	return strategies, nil
}
