package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/blendopt/pkg/domain/entities"
)

// CompliancePolicy configures how advisory failures affect overall status
type CompliancePolicy struct {
	// MaxFlexibleFailures escalates overall status to NON_COMPLIANT when
	// more than this many flexible windows fail; 0 means flexible failures
	// never escalate and stay advisory
	MaxFlexibleFailures int
}

// ComplianceService compares simulated blend values against a specification
type ComplianceService struct {
	policy CompliancePolicy
}

// NewComplianceService creates a compliance checker with the default policy
// (flexible failures never escalate)
func NewComplianceService() *ComplianceService {
	return NewComplianceServiceWithPolicy(CompliancePolicy{})
}

// NewComplianceServiceWithPolicy creates a compliance checker with a custom
// escalation policy
func NewComplianceServiceWithPolicy(policy CompliancePolicy) *ComplianceService {
	return &ComplianceService{policy: policy}
}

// CheckCompliance evaluates every specification window against the simulated
// values and attaches the report to the result. Overall status is COMPLIANT
// iff all critical windows pass; flexible failures are recorded as advisories
// and only flip the status under the escalation policy. Parameters measured
// on the blend but absent from the specification are reported NO_SPEC. The
// specification is never mutated.
func (c *ComplianceService) CheckCompliance(
	result *entities.BlendResult,
	spec *entities.Specification,
) *entities.ComplianceReport {
	report := &entities.ComplianceReport{
		Status: entities.Compliant,
		Checks: make([]entities.ParameterCheck, 0, len(spec.Windows)),
	}

	for _, window := range spec.Windows {
		check := entities.ParameterCheck{
			Parameter:   window.Parameter,
			Criticality: window.Criticality,
			Deviation:   decimal.Zero,
		}

		value, measured := result.Values[window.Parameter]
		switch {
		case !measured:
			// A window nothing was measured for cannot be verified
			check.Status = entities.Fail
		case window.Contains(value):
			check.Value = value
			check.Status = entities.Pass
		default:
			check.Value = value
			check.Status = entities.Fail
			check.Deviation = window.Deviation(value)
		}

		if check.Status == entities.Fail {
			switch window.Criticality {
			case entities.Critical:
				report.CriticalFailures++
			case entities.Flexible:
				report.FlexibleFailures++
			}
		}

		report.Checks = append(report.Checks, check)
	}

	// Surface measured parameters the specification says nothing about
	for _, param := range sortedParameters(result.Values) {
		if _, declared := spec.Window(param); declared {
			continue
		}
		report.Checks = append(report.Checks, entities.ParameterCheck{
			Parameter: param,
			Value:     result.Values[param],
			Status:    entities.NoSpec,
			Deviation: decimal.Zero,
		})
	}

	if report.CriticalFailures > 0 {
		report.Status = entities.NonCompliant
	}
	if c.policy.MaxFlexibleFailures > 0 && report.FlexibleFailures > c.policy.MaxFlexibleFailures {
		report.Status = entities.NonCompliant
	}

	result.Compliance = report
	return report
}

func sortedParameters(values map[entities.Parameter]decimal.Decimal) []entities.Parameter {
	params := make([]entities.Parameter, 0, len(values))
	for param := range values {
		params = append(params, param)
	}
	sort.Slice(params, func(i, j int) bool { return params[i] < params[j] })
	return params
}
