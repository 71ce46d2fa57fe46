package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/vsinha/blendopt/pkg/interfaces/cli/output"
)

// OptimizeCommand runs one optimization for a single strategy
type OptimizeCommand struct {
	config Config
	logger zerolog.Logger
}

// NewOptimizeCommand creates a new optimize command
func NewOptimizeCommand(config Config, logger zerolog.Logger) *OptimizeCommand {
	return &OptimizeCommand{config: config, logger: logger}
}

// Execute loads the planning data, runs the optimizer, and prints the outcome
func (c *OptimizeCommand) Execute(ctx context.Context) error {
	format, err := output.ParseFormat(c.config.Format)
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

	outcome, err := env.optimizer.Optimize(ctx, req, env.lotRepo)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	rendered, err := output.RenderOutcome(outcome, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, rendered)

	if c.config.Verbose {
		printRunEvents(env, outcome.RunID.String())
	}

	return nil
}

// printRunEvents dumps the run's event log for verbose mode
func printRunEvents(env *environment, runID string) {
	events, err := env.eventLog.ReadEvents(runID)
	if err != nil {
		return
	}
	for _, event := range events {
		env.logger.Info().
			Str("run", event.StreamID()).
			Str("event", event.Type()).
			Str("detail", event.Detail()).
			Time("at", event.Timestamp()).
			Msg("run event")
	}
}
