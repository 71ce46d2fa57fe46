package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vsinha/blendopt/pkg/application/dto"
	"github.com/vsinha/blendopt/pkg/domain/entities"
	"github.com/vsinha/blendopt/pkg/domain/repositories"
)

// ComparatorService runs the optimizer once per requested strategy against
// the same input snapshot and reports the trade-offs. Strategy evaluations
// are independent, so each runs in its own goroutine writing only to its own
// scenario slot.
type ComparatorService struct {
	optimizer *OptimizerService
	logger    zerolog.Logger
}

// NewComparatorService creates a scenario comparator
func NewComparatorService(optimizer *OptimizerService, logger zerolog.Logger) *ComparatorService {
	return &ComparatorService{
		optimizer: optimizer,
		logger:    logger,
	}
}

// CompareScenarios evaluates every requested strategy over the same inputs
// and produces one Scenario per strategy plus a comparative recommendation.
// The report is purely presentational over the already-computed results.
func (c *ComparatorService) CompareScenarios(
	ctx context.Context,
	req OptimizationRequest,
	strategies []entities.Strategy,
	lotRepo repositories.LotRepository,
) (*dto.ScenarioReport, error) {
	if len(strategies) == 0 {
		strategies = entities.AllStrategies()
	}

	scenarios := make([]dto.Scenario, len(strategies))
	errs := make([]error, len(strategies))

	var wg sync.WaitGroup
	for i, strategy := range strategies {
		wg.Add(1)
		go func(slot int, strategy entities.Strategy) {
			defer wg.Done()

			runReq := req
			runReq.Strategy = strategy

			outcome, err := c.optimizer.Optimize(ctx, runReq, lotRepo)
			if err != nil {
				errs[slot] = fmt.Errorf("strategy %s failed: %w", strategy, err)
				return
			}

			c.logger.Debug().
				Str("strategy", strategy.String()).
				Bool("feasible", outcome.Feasible).
				Int("candidates", outcome.EvaluatedCandidates).
				Msg("scenario evaluated")

			scenarios[slot] = dto.Scenario{
				Strategy: strategy,
				Outcome:  outcome,
				Feasible: outcome.Feasible,
			}
		}(i, strategy)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	report := &dto.ScenarioReport{
		ReportID:    uuid.New(),
		ProductCode: req.ProductCode,
		Scenarios:   scenarios,
	}
	c.summarize(report)
	return report, nil
}

// summarize picks the recommended strategy and writes the human-readable
// comparison line
func (c *ComparatorService) summarize(report *dto.ScenarioReport) {
	var best *dto.Scenario
	var baseline *dto.Scenario

	for i := range report.Scenarios {
		scenario := &report.Scenarios[i]
		if scenario.Strategy == entities.StrictFEFO && scenario.Feasible {
			baseline = scenario
		}
		if !scenario.Feasible {
			continue
		}
		if best == nil || betterFeasible(
			dto.EvaluatedCandidate{Candidate: scenario.Outcome.Recommendation.Candidate, Result: scenario.Outcome.Recommendation.Result},
			dto.EvaluatedCandidate{Candidate: best.Outcome.Recommendation.Candidate, Result: best.Outcome.Recommendation.Result},
		) {
			best = scenario
		}
	}

	if best == nil {
		report.AnyFeasible = false
		report.Recommendation = "no strategy produced a compliant blend; review the resolution options of the closest scenario"
		return
	}

	report.AnyFeasible = true
	report.Recommended = best.Strategy

	bestResult := best.Outcome.Recommendation.Result
	summary := fmt.Sprintf("%s recommends %d lots at blended cost %s",
		best.Strategy, best.Outcome.Recommendation.Candidate.LotCount(), bestResult.Cost.BlendedCost)

	if baseline != nil && baseline.Strategy != best.Strategy {
		baseCost := baseline.Outcome.Recommendation.Result.Cost.BlendedCost
		if baseCost.IsPositive() && baseCost.GreaterThan(bestResult.Cost.BlendedCost) {
			saving := baseCost.Sub(bestResult.Cost.BlendedCost).
				Div(baseCost).
				Mul(decimal.NewFromInt(100)).
				Round(1)
			summary += fmt.Sprintf("; saves %s%% over strict_fefo", saving)
		}
	}
	if bestResult.Compliance.CriticalFailures == 0 {
		summary += " with zero critical-parameter deviations"
	}

	report.Recommendation = summary
}
