package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValuePrecision is the fixed decimal precision for simulated blend values.
// Rounding at a fixed precision keeps repeated simulations bit-identical.
const ValuePrecision = 4

// BlendComponent represents a single (lot, mass) contribution to a blend
type BlendComponent struct {
	Lot  *Lot
	Mass decimal.Decimal
}

// BlendCandidate represents a transient combination of lots under evaluation.
// Candidates are created per evaluation and never persisted.
type BlendCandidate struct {
	Components []BlendComponent
}

// NewBlendCandidate creates a validated BlendCandidate. Component masses must
// be positive and must not exceed the available mass of their lot; violations
// are programming-contract errors and fail fast.
func NewBlendCandidate(components []BlendComponent) (*BlendCandidate, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("blend candidate must have at least one component")
	}
	for _, comp := range components {
		if comp.Lot == nil {
			return nil, fmt.Errorf("blend component lot cannot be nil")
		}
		if !comp.Mass.IsPositive() {
			return nil, fmt.Errorf("component mass for lot %s must be positive, got %s",
				comp.Lot.LotNumber, comp.Mass)
		}
		if comp.Mass.GreaterThan(comp.Lot.AvailableMass) {
			return nil, fmt.Errorf("component mass %s exceeds available mass %s for lot %s",
				comp.Mass, comp.Lot.AvailableMass, comp.Lot.LotNumber)
		}
	}
	return &BlendCandidate{Components: components}, nil
}

// TotalMass returns the sum of all component masses
func (c *BlendCandidate) TotalMass() decimal.Decimal {
	total := decimal.Zero
	for _, comp := range c.Components {
		total = total.Add(comp.Mass)
	}
	return total
}

// LotCount returns the number of distinct lots in the candidate
func (c *BlendCandidate) LotCount() int {
	return len(c.Components)
}

// ParameterStatus represents the outcome of checking one parameter against a
// specification
type ParameterStatus int

const (
	Pass ParameterStatus = iota
	Fail
	NoSpec
)

// String method for ParameterStatus enum
func (s ParameterStatus) String() string {
	switch s {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case NoSpec:
		return "NO_SPEC"
	default:
		return "Unknown"
	}
}

// ComplianceStatus represents the overall compliance of a blend
type ComplianceStatus int

const (
	Compliant ComplianceStatus = iota
	NonCompliant
)

// String method for ComplianceStatus enum
func (s ComplianceStatus) String() string {
	switch s {
	case Compliant:
		return "COMPLIANT"
	case NonCompliant:
		return "NON_COMPLIANT"
	default:
		return "Unknown"
	}
}

// ParameterCheck records the evaluation of a single parameter
type ParameterCheck struct {
	Parameter   Parameter
	Value       decimal.Decimal
	Status      ParameterStatus
	Criticality Criticality
	Deviation   decimal.Decimal
}

// ComplianceReport records the full compliance evaluation of a blend against
// a specification
type ComplianceReport struct {
	Status           ComplianceStatus
	Checks           []ParameterCheck
	CriticalFailures int
	FlexibleFailures int
}

// CriticalDeviation returns the summed deviation magnitude across failed
// critical parameters; used to rank near-miss candidates
func (r *ComplianceReport) CriticalDeviation() decimal.Decimal {
	total := decimal.Zero
	for _, check := range r.Checks {
		if check.Status == Fail && check.Criticality == Critical {
			total = total.Add(check.Deviation)
		}
	}
	return total
}

// BlendResult represents the derived outcome of simulating a candidate.
// Immutable once fully computed; compliance and cost fields are populated by
// the downstream checker and evaluator.
type BlendResult struct {
	TotalMass decimal.Decimal
	Values    map[Parameter]decimal.Decimal

	// AverageSequenceKey is the mass-weighted average age ordering of the
	// blend; lower means older material
	AverageSequenceKey decimal.Decimal

	Compliance *ComplianceReport
	Cost       *CostAssessment
}
