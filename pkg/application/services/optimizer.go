package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/blendopt/pkg/application/dto"
	"github.com/vsinha/blendopt/pkg/domain/entities"
	"github.com/vsinha/blendopt/pkg/domain/repositories"
	"github.com/vsinha/blendopt/pkg/infrastructure/events"
)

// OptimizerConfig holds tuning knobs for candidate generation
type OptimizerConfig struct {
	// SubstitutionThresholdPercent is the minimum blended-cost saving, in
	// percent, before fefo_cost_balanced trades an older lot for a newer,
	// cheaper one
	SubstitutionThresholdPercent decimal.Decimal

	// MaxSubstitutionPasses bounds the balanced strategy's improvement loop
	MaxSubstitutionPasses int
}

// DefaultOptimizerConfig returns the standard configuration: 10% substitution
// threshold, 8 improvement passes
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		SubstitutionThresholdPercent: decimal.NewFromInt(10),
		MaxSubstitutionPasses:        8,
	}
}

// OptimizationRequest describes one optimization run. All inputs are
// immutable for the run's duration; the engine reads a lot snapshot at the
// start and never commits allocations externally.
type OptimizationRequest struct {
	ProductCode   entities.ProductCode
	Warehouse     string
	RequiredMass  decimal.Decimal
	Policy        entities.EligibilityPolicy
	Specification *entities.Specification
	CostProfile   *entities.CostProfile
	Strategy      entities.Strategy
}

// OptimizerService searches feasible lot combinations for a blend request.
// The run proceeds Init -> Generate -> Evaluate -> (Feasible | Infeasible):
// specification infeasibility is an expected business outcome returned as
// structured data, never an error.
type OptimizerService struct {
	selector   *SelectorService
	simulator  *SimulatorService
	compliance *ComplianceService
	cost       *CostService
	config     OptimizerConfig
	eventLog   events.EventStore
}

// NewOptimizerService creates an optimizer with the default configuration
func NewOptimizerService(
	selector *SelectorService,
	simulator *SimulatorService,
	compliance *ComplianceService,
	cost *CostService,
) *OptimizerService {
	return NewOptimizerServiceWithConfig(selector, simulator, compliance, cost, DefaultOptimizerConfig())
}

// NewOptimizerServiceWithConfig creates an optimizer with custom tuning
func NewOptimizerServiceWithConfig(
	selector *SelectorService,
	simulator *SimulatorService,
	compliance *ComplianceService,
	cost *CostService,
	config OptimizerConfig,
) *OptimizerService {
	return &OptimizerService{
		selector:   selector,
		simulator:  simulator,
		compliance: compliance,
		cost:       cost,
		config:     config,
	}
}

// RecordEventsTo attaches a run event log; nil disables recording
func (o *OptimizerService) RecordEventsTo(store events.EventStore) {
	o.eventLog = store
}

// Optimize runs the full pipeline for one strategy and returns either a
// recommendation or a ranked set of near-feasible alternatives with exactly
// four resolution options. Contract violations and dependency failures are
// errors; infeasibility never is.
func (o *OptimizerService) Optimize(
	ctx context.Context,
	req OptimizationRequest,
	lotRepo repositories.LotRepository,
) (*dto.OptimizationOutcome, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	runID := uuid.New()
	o.emit(runID, "run_started", fmt.Sprintf("%s %s %s", req.ProductCode, req.Strategy, req.RequiredMass))

	selection, err := o.selector.SelectCandidates(ctx, SelectionRequest{
		ProductCode:  req.ProductCode,
		Warehouse:    req.Warehouse,
		RequiredMass: req.RequiredMass,
		Policy:       req.Policy,
	}, lotRepo)
	if err != nil {
		return nil, fmt.Errorf("candidate selection failed: %w", err)
	}

	outcome := &dto.OptimizationOutcome{
		RunID:        runID,
		ProductCode:  req.ProductCode,
		Strategy:     req.Strategy,
		RequiredMass: req.RequiredMass,
		Shortage:     selection.Shortage,
	}

	evaluated, err := o.generateAndEvaluate(ctx, req, selection, req.Strategy, outcome)
	if err != nil {
		return nil, err
	}

	best, feasible := o.pickFeasible(req, evaluated)
	if feasible && !selection.HasShortage() {
		outcome.Feasible = true
		outcome.Recommendation = &dto.BlendRecommendation{
			Candidate:        best.Candidate,
			Result:           best.Result,
			RequiresApproval: best.Result.Cost.Band == entities.RequiresApproval,
		}
		o.emit(runID, "run_completed", "feasible")
		return outcome, nil
	}

	// Infeasible: widen the alternative pool with the other strategies'
	// base allocations so callers see the closest misses, then rank
	for _, strategy := range entities.AllStrategies() {
		if strategy == req.Strategy {
			continue
		}
		more, err := o.generateAndEvaluate(ctx, req, selection, strategy, outcome)
		if err != nil {
			return nil, err
		}
		evaluated = append(evaluated, more...)
	}

	outcome.Alternatives = rankAlternatives(dedupeCandidates(evaluated))
	outcome.Resolutions = o.buildResolutions(req, selection, outcome.Alternatives)
	o.emit(runID, "run_completed", "infeasible")
	return outcome, nil
}

// validateRequest enforces the optimization call contract
func validateRequest(req OptimizationRequest) error {
	if string(req.ProductCode) == "" {
		return fmt.Errorf("product code cannot be empty")
	}
	if !req.RequiredMass.IsPositive() {
		return fmt.Errorf("required mass must be positive, got %s", req.RequiredMass)
	}
	if req.Specification == nil {
		return fmt.Errorf("specification cannot be nil")
	}
	if req.CostProfile == nil {
		return fmt.Errorf("cost profile cannot be nil")
	}
	return nil
}

// generateAndEvaluate builds the strategy's candidates from a cloned
// selection and runs the simulate -> compliance -> cost pipeline on each
func (o *OptimizerService) generateAndEvaluate(
	ctx context.Context,
	req OptimizationRequest,
	selection *entities.SelectionResult,
	strategy entities.Strategy,
	outcome *dto.OptimizationOutcome,
) ([]dto.EvaluatedCandidate, error) {
	if err := checkDeadline(ctx); err != nil {
		return nil, err
	}

	ordered := orderForStrategy(selection.Clone().Candidates, strategy)
	components := allocate(ordered, req.RequiredMass)
	if len(components) == 0 {
		return nil, nil
	}

	candidate, err := entities.NewBlendCandidate(components)
	if err != nil {
		return nil, fmt.Errorf("failed to build candidate for %s: %w", strategy, err)
	}

	evaluated, err := o.evaluate(candidate, req)
	if err != nil {
		return nil, err
	}
	outcome.EvaluatedCandidates++
	o.emit(outcome.RunID, "candidate_evaluated", fmt.Sprintf("%s lots=%d", strategy, candidate.LotCount()))

	results := []dto.EvaluatedCandidate{*evaluated}

	if strategy == entities.FEFOCostBalanced {
		improved, extra, err := o.improveBySubstitution(ctx, req, ordered, *evaluated, outcome)
		if err != nil {
			return nil, err
		}
		outcome.EvaluatedCandidates += extra
		results = append([]dto.EvaluatedCandidate{improved}, results...)
	}

	return results, nil
}

// evaluate runs one candidate through the full pipeline
func (o *OptimizerService) evaluate(candidate *entities.BlendCandidate, req OptimizationRequest) (*dto.EvaluatedCandidate, error) {
	result, err := o.simulator.SimulateBlend(candidate)
	if err != nil {
		return nil, fmt.Errorf("simulation failed: %w", err)
	}

	o.compliance.CheckCompliance(result, req.Specification)

	assessment, err := o.cost.EvaluateCost(candidate, req.CostProfile)
	if err != nil {
		return nil, fmt.Errorf("cost evaluation failed: %w", err)
	}
	result.Cost = assessment

	return &dto.EvaluatedCandidate{Candidate: candidate, Result: result}, nil
}

// improveBySubstitution implements fefo_cost_balanced: starting from the
// strict-FEFO allocation, swap in a newer lot only when the blended cost
// drops by more than the threshold and the blend stays compliant
func (o *OptimizerService) improveBySubstitution(
	ctx context.Context,
	req OptimizationRequest,
	ordered []entities.CandidateLot,
	current dto.EvaluatedCandidate,
	outcome *dto.OptimizationOutcome,
) (dto.EvaluatedCandidate, int, error) {
	evaluations := 0
	threshold := o.config.SubstitutionThresholdPercent

	for pass := 0; pass < o.config.MaxSubstitutionPasses; pass++ {
		if err := checkDeadline(ctx); err != nil {
			return current, evaluations, err
		}

		improved := false
		used := make(map[entities.LotNumber]bool, len(current.Candidate.Components))
		for _, comp := range current.Candidate.Components {
			used[comp.Lot.LotNumber] = true
		}

		// Consider replacing the most expensive component first
		components := append([]entities.BlendComponent(nil), current.Candidate.Components...)
		sort.Slice(components, func(i, j int) bool {
			return components[i].Lot.UnitCost.GreaterThan(components[j].Lot.UnitCost)
		})

		for _, comp := range components {
			replacement, ok := findCheaperSubstitute(ordered, used, comp)
			if !ok {
				continue
			}

			variant := substitute(current.Candidate, comp.Lot.LotNumber, replacement, comp.Mass)
			candidate, err := entities.NewBlendCandidate(variant)
			if err != nil {
				continue
			}

			evaluatedVariant, err := o.evaluate(candidate, req)
			if err != nil {
				return current, evaluations, err
			}
			evaluations++

			if !isAcceptableSwap(current, *evaluatedVariant, threshold) {
				continue
			}

			current = *evaluatedVariant
			improved = true
			break
		}

		if !improved {
			break
		}
	}

	return current, evaluations, nil
}

// findCheaperSubstitute locates an unused candidate lot with enough usable
// mass and a strictly lower unit cost than the component being replaced
func findCheaperSubstitute(
	ordered []entities.CandidateLot,
	used map[entities.LotNumber]bool,
	comp entities.BlendComponent,
) (*entities.Lot, bool) {
	for _, candidate := range ordered {
		if used[candidate.Lot.LotNumber] {
			continue
		}
		if candidate.UsableMass.LessThan(comp.Mass) {
			continue
		}
		if candidate.Lot.UnitCost.GreaterThanOrEqual(comp.Lot.UnitCost) {
			continue
		}
		return candidate.Lot, true
	}
	return nil, false
}

// substitute rebuilds the component list with one lot swapped out
func substitute(
	candidate *entities.BlendCandidate,
	removed entities.LotNumber,
	replacement *entities.Lot,
	mass decimal.Decimal,
) []entities.BlendComponent {
	components := make([]entities.BlendComponent, 0, len(candidate.Components))
	for _, comp := range candidate.Components {
		if comp.Lot.LotNumber == removed {
			components = append(components, entities.BlendComponent{Lot: replacement, Mass: mass})
			continue
		}
		components = append(components, comp)
	}
	return components
}

// isAcceptableSwap accepts a substitution only when it saves more than the
// threshold percent and keeps the blend compliant and cost-recommendable
func isAcceptableSwap(current, variant dto.EvaluatedCandidate, thresholdPercent decimal.Decimal) bool {
	if variant.Result.Compliance.Status != entities.Compliant {
		return false
	}
	if variant.Result.Cost.Band == entities.Rejected {
		return false
	}
	currentCost := current.Result.Cost.BlendedCost
	if !currentCost.IsPositive() {
		return false
	}
	saving := currentCost.Sub(variant.Result.Cost.BlendedCost).
		Div(currentCost).
		Mul(decimal.NewFromInt(100))
	return saving.GreaterThan(thresholdPercent)
}

// pickFeasible returns the best feasible candidate by the engine ranking:
// lowest blended cost, then oldest average age
func (o *OptimizerService) pickFeasible(req OptimizationRequest, evaluated []dto.EvaluatedCandidate) (dto.EvaluatedCandidate, bool) {
	var best dto.EvaluatedCandidate
	found := false

	for _, cand := range evaluated {
		if cand.Result.Compliance.Status != entities.Compliant {
			continue
		}
		if cand.Result.Cost.Band == entities.Rejected {
			continue
		}
		if cand.Result.TotalMass.LessThan(req.RequiredMass) {
			continue
		}
		if !found || betterFeasible(cand, best) {
			best = cand
			found = true
		}
	}

	return best, found
}

func betterFeasible(a, b dto.EvaluatedCandidate) bool {
	if !a.Result.Cost.BlendedCost.Equal(b.Result.Cost.BlendedCost) {
		return a.Result.Cost.BlendedCost.LessThan(b.Result.Cost.BlendedCost)
	}
	return a.Result.AverageSequenceKey.LessThan(b.Result.AverageSequenceKey)
}

// rankAlternatives orders near-miss candidates by critical failure count,
// then deviation magnitude, then cost, ascending
func rankAlternatives(evaluated []dto.EvaluatedCandidate) []dto.EvaluatedCandidate {
	ranked := append([]dto.EvaluatedCandidate(nil), evaluated...)
	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := ranked[i].Result.Compliance, ranked[j].Result.Compliance
		if ci.CriticalFailures != cj.CriticalFailures {
			return ci.CriticalFailures < cj.CriticalFailures
		}
		di, dj := ci.CriticalDeviation(), cj.CriticalDeviation()
		if !di.Equal(dj) {
			return di.LessThan(dj)
		}
		return ranked[i].Result.Cost.BlendedCost.LessThan(ranked[j].Result.Cost.BlendedCost)
	})
	return ranked
}

// dedupeCandidates removes duplicate allocations produced by strategies that
// happen to pick the same lots and masses
func dedupeCandidates(evaluated []dto.EvaluatedCandidate) []dto.EvaluatedCandidate {
	seen := make(map[string]bool, len(evaluated))
	var unique []dto.EvaluatedCandidate
	for _, cand := range evaluated {
		key := ""
		for _, comp := range cand.Candidate.Components {
			key += fmt.Sprintf("%s=%s;", comp.Lot.LotNumber, comp.Mass)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, cand)
	}
	return unique
}

// buildResolutions returns the four resolution options, always in the same
// order: fail outright, relax non-critical windows, accept the best
// non-compliant candidate flagged as such, produce additional base material
func (o *OptimizerService) buildResolutions(
	req OptimizationRequest,
	selection *entities.SelectionResult,
	alternatives []dto.EvaluatedCandidate,
) []dto.ResolutionOption {
	options := make([]dto.ResolutionOption, 0, 4)

	options = append(options, dto.ResolutionOption{
		Kind:        dto.FailOutright,
		Description: fmt.Sprintf("reject the blend request for %s; no compliant combination exists in current inventory", req.ProductCode),
	})

	relax := dto.ResolutionOption{
		Kind:        dto.RelaxSpecification,
		Description: "widen the listed non-critical windows, pending external approval",
	}
	if len(alternatives) > 0 {
		relax.Relaxations = proposeRelaxations(req.Specification, alternatives[0])
	}
	if len(relax.Relaxations) == 0 {
		relax.Description = "no non-critical window failures to relax; relaxation cannot restore compliance"
	}
	options = append(options, relax)

	accept := dto.ResolutionOption{
		Kind:        dto.AcceptNonCompliant,
		Description: "accept the closest non-compliant blend, explicitly marked as out of specification",
	}
	if len(alternatives) > 0 {
		best := alternatives[0]
		accept.Candidate = &best
	} else {
		accept.Description = "no candidate blend could be constructed from eligible inventory"
	}
	options = append(options, accept)

	produce := dto.ResolutionOption{
		Kind: dto.ProduceBaseMaterial,
	}
	if selection.HasShortage() {
		produce.AdditionalMassNeeded = selection.Shortage
		produce.Description = fmt.Sprintf("produce %s additional base material to cover the eligible-mass deficit", selection.Shortage)
	} else {
		produce.AdditionalMassNeeded = req.RequiredMass
		produce.Description = fmt.Sprintf("produce a fresh %s base batch measured inside specification; current lots cannot reach it", req.RequiredMass)
	}
	options = append(options, produce)

	return options
}

// proposeRelaxations widens each failed flexible window just enough for the
// closest candidate's value to pass
func proposeRelaxations(spec *entities.Specification, closest dto.EvaluatedCandidate) []dto.SpecRelaxation {
	var relaxations []dto.SpecRelaxation
	for _, check := range closest.Result.Compliance.Checks {
		if check.Status != entities.Fail || check.Criticality != entities.Flexible {
			continue
		}
		// A window that failed because nothing measured it carries zero
		// deviation; there is no value to widen the window toward
		if check.Deviation.IsZero() {
			continue
		}
		window, ok := spec.Window(check.Parameter)
		if !ok {
			continue
		}
		relaxation := dto.SpecRelaxation{
			Parameter:   check.Parameter,
			CurrentMin:  window.Min,
			CurrentMax:  window.Max,
			ProposedMin: window.Min,
			ProposedMax: window.Max,
			Amount:      check.Deviation,
		}
		if check.Value.LessThan(window.Min) {
			relaxation.ProposedMin = check.Value
		} else {
			relaxation.ProposedMax = check.Value
		}
		relaxations = append(relaxations, relaxation)
	}
	return relaxations
}

// orderForStrategy re-sorts the FEFO-ordered candidates per strategy
func orderForStrategy(candidates []entities.CandidateLot, strategy entities.Strategy) []entities.CandidateLot {
	ordered := append([]entities.CandidateLot(nil), candidates...)
	switch strategy {
	case entities.MinimizeCost:
		sort.SliceStable(ordered, func(i, j int) bool {
			if !ordered[i].Lot.UnitCost.Equal(ordered[j].Lot.UnitCost) {
				return ordered[i].Lot.UnitCost.LessThan(ordered[j].Lot.UnitCost)
			}
			return ordered[i].Lot.SequenceKey < ordered[j].Lot.SequenceKey
		})
	case entities.MinimumLotCount:
		sort.SliceStable(ordered, func(i, j int) bool {
			if !ordered[i].UsableMass.Equal(ordered[j].UsableMass) {
				return ordered[i].UsableMass.GreaterThan(ordered[j].UsableMass)
			}
			return ordered[i].Lot.SequenceKey < ordered[j].Lot.SequenceKey
		})
	default:
		// StrictFEFO and FEFOCostBalanced start from the selector's
		// oldest-first order
	}
	return ordered
}

// allocate walks the ordered candidates taking mass until the requirement is
// met; a partial allocation is returned when eligible mass runs out
func allocate(ordered []entities.CandidateLot, requiredMass decimal.Decimal) []entities.BlendComponent {
	remaining := requiredMass
	var components []entities.BlendComponent

	for _, candidate := range ordered {
		if !remaining.IsPositive() {
			break
		}
		take := candidate.UsableMass
		if take.GreaterThan(remaining) {
			take = remaining
		}
		if !take.IsPositive() {
			continue
		}
		components = append(components, entities.BlendComponent{
			Lot:  candidate.Lot,
			Mass: take,
		})
		remaining = remaining.Sub(take)
	}

	return components
}

// checkDeadline converts an expired caller deadline into the evaluation
// timeout condition; nothing was committed, so no partial state remains
func checkDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("optimization aborted: %w", entities.ErrEvaluationTimeout)
	}
	return nil
}

// emit records a run event when an event log is attached. Recording is best
// effort: the in-memory store never returns an error, and lost telemetry must
// not alter the run's outcome.
func (o *OptimizerService) emit(runID uuid.UUID, eventType, detail string) {
	if o.eventLog == nil {
		return
	}
	_ = o.eventLog.AppendEvent(runID.String(), events.NewEvent(eventType, runID.String(), detail))
}
