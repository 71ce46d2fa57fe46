package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/blendopt/pkg/domain/entities"
)

// ResolutionKind identifies one of the four infeasibility resolution options
type ResolutionKind int

const (
	FailOutright ResolutionKind = iota
	RelaxSpecification
	AcceptNonCompliant
	ProduceBaseMaterial
)

// String method for ResolutionKind enum
func (k ResolutionKind) String() string {
	switch k {
	case FailOutright:
		return "fail_outright"
	case RelaxSpecification:
		return "relax_specification"
	case AcceptNonCompliant:
		return "accept_non_compliant"
	case ProduceBaseMaterial:
		return "produce_base_material"
	default:
		return "Unknown"
	}
}

// SpecRelaxation proposes widening one non-critical window so the closest
// candidate would pass; adoption is pending external approval
type SpecRelaxation struct {
	Parameter   entities.Parameter
	CurrentMin  decimal.Decimal
	CurrentMax  decimal.Decimal
	ProposedMin decimal.Decimal
	ProposedMax decimal.Decimal
	Amount      decimal.Decimal
}

// EvaluatedCandidate pairs a blend candidate with its fully evaluated result
type EvaluatedCandidate struct {
	Candidate *entities.BlendCandidate
	Result    *entities.BlendResult
}

// ResolutionOption describes one way forward when no compliant blend exists.
// Options are data only; the engine never executes them.
type ResolutionOption struct {
	Kind        ResolutionKind
	Description string

	// Relaxations is populated for RelaxSpecification
	Relaxations []SpecRelaxation

	// Candidate is populated for AcceptNonCompliant and carries the best
	// non-compliant blend, explicitly flagged as such
	Candidate *EvaluatedCandidate

	// AdditionalMassNeeded is populated for ProduceBaseMaterial; it is a
	// capacity statement only, the engine does not schedule production
	AdditionalMassNeeded decimal.Decimal
}

// BlendRecommendation is the engine's feasible result: a compliant candidate
// whose cost is not rejected
type BlendRecommendation struct {
	Candidate *entities.BlendCandidate
	Result    *entities.BlendResult

	// RequiresApproval is set when the blended cost lands above target but
	// within the hard maximum; the engine only recommends, it never routes
	// approvals
	RequiresApproval bool
}

// OptimizationOutcome is the complete result of one optimization run
type OptimizationOutcome struct {
	RunID        uuid.UUID
	ProductCode  entities.ProductCode
	Strategy     entities.Strategy
	RequiredMass decimal.Decimal

	Feasible       bool
	Recommendation *BlendRecommendation

	// Alternatives lists the closest non-compliant candidates, ranked by
	// critical failure count then deviation magnitude; populated when the
	// run is infeasible
	Alternatives []EvaluatedCandidate

	// Resolutions always carries exactly four options when infeasible
	Resolutions []ResolutionOption

	// Shortage is the deficit between required and eligible mass, zero when
	// inventory sufficed
	Shortage decimal.Decimal

	EvaluatedCandidates int
}

// Scenario is one strategy's full evaluation over a shared input snapshot
type Scenario struct {
	Strategy entities.Strategy
	Outcome  *OptimizationOutcome
	Feasible bool
}

// ScenarioReport compares scenarios across strategies and names the
// recommended one. Immutable once created.
type ScenarioReport struct {
	ReportID    uuid.UUID
	ProductCode entities.ProductCode
	Scenarios   []Scenario

	// Recommended is the strategy of the best feasible scenario; only
	// meaningful when AnyFeasible is true
	Recommended    entities.Strategy
	AnyFeasible    bool
	Recommendation string
}
