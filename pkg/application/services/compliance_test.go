package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/blendopt/pkg/domain/entities"
)

func simulateForCompliance(t *testing.T, analysis map[string]float64) *entities.BlendResult {
	t.Helper()

	lot := testLot(t, "LOT-A", 2024, 100, 100, 600, analysis)
	result, err := NewSimulatorService().SimulateBlend(mustCandidate(t, component(lot, 50)))
	if err != nil {
		t.Fatalf("SimulateBlend failed: %v", err)
	}
	return result
}

func TestCheckCompliance_FlexibleFailureStaysCompliant(t *testing.T) {
	result := simulateForCompliance(t, map[string]float64{"ph": 3.8, "acidity": 0.50})
	spec := testSpec(t,
		testWindow(t, "ph", 3.4, 4.1, entities.Critical),
		testWindow(t, "acidity", 0.30, 0.42, entities.Flexible),
	)

	report := NewComplianceService().CheckCompliance(result, spec)

	if report.Status != entities.Compliant {
		t.Errorf("expected COMPLIANT with only a flexible failure, got %s", report.Status)
	}
	if report.FlexibleFailures != 1 {
		t.Errorf("expected 1 flexible failure, got %d", report.FlexibleFailures)
	}
	if report.CriticalFailures != 0 {
		t.Errorf("expected no critical failures, got %d", report.CriticalFailures)
	}
}

func TestCheckCompliance_CriticalFailureIsNonCompliant(t *testing.T) {
	result := simulateForCompliance(t, map[string]float64{"ph": 4.5, "acidity": 0.35})
	spec := testSpec(t,
		testWindow(t, "ph", 3.4, 4.1, entities.Critical),
		testWindow(t, "acidity", 0.30, 0.42, entities.Flexible),
	)

	report := NewComplianceService().CheckCompliance(result, spec)

	if report.Status != entities.NonCompliant {
		t.Errorf("expected NON_COMPLIANT, got %s", report.Status)
	}
	if report.CriticalFailures != 1 {
		t.Errorf("expected 1 critical failure, got %d", report.CriticalFailures)
	}

	// Deviation is the distance above the max
	for _, check := range report.Checks {
		if check.Parameter == "ph" {
			if !check.Deviation.Equal(decimal.NewFromFloat(0.4)) {
				t.Errorf("expected ph deviation 0.4, got %s", check.Deviation)
			}
		}
	}
}

func TestCheckCompliance_UnspecifiedParameterIsNoSpec(t *testing.T) {
	result := simulateForCompliance(t, map[string]float64{"ph": 3.8, "turbidity": 1.2})
	spec := testSpec(t, testWindow(t, "ph", 3.4, 4.1, entities.Critical))

	report := NewComplianceService().CheckCompliance(result, spec)

	if report.Status != entities.Compliant {
		t.Fatalf("expected COMPLIANT, got %s", report.Status)
	}

	found := false
	for _, check := range report.Checks {
		if check.Parameter == "turbidity" {
			found = true
			if check.Status != entities.NoSpec {
				t.Errorf("expected NO_SPEC for turbidity, got %s", check.Status)
			}
		}
	}
	if !found {
		t.Error("expected a check entry for the unspecified parameter")
	}
}

func TestCheckCompliance_UnmeasuredWindowFails(t *testing.T) {
	result := simulateForCompliance(t, map[string]float64{"ph": 3.8})
	spec := testSpec(t,
		testWindow(t, "ph", 3.4, 4.1, entities.Critical),
		testWindow(t, "brix", 73.0, 76.0, entities.Critical),
	)

	report := NewComplianceService().CheckCompliance(result, spec)

	if report.Status != entities.NonCompliant {
		t.Errorf("expected NON_COMPLIANT when a critical window was never measured, got %s", report.Status)
	}
}

func TestCheckCompliance_FlexibleEscalationPolicy(t *testing.T) {
	spec := testSpec(t,
		testWindow(t, "ph", 3.4, 4.1, entities.Critical),
		testWindow(t, "acidity", 0.30, 0.42, entities.Flexible),
		testWindow(t, "color", 1.0, 2.0, entities.Flexible),
	)

	tests := []struct {
		name     string
		policy   CompliancePolicy
		expected entities.ComplianceStatus
	}{
		{
			name:     "default_never_escalates",
			policy:   CompliancePolicy{},
			expected: entities.Compliant,
		},
		{
			name:     "above_threshold_escalates",
			policy:   CompliancePolicy{MaxFlexibleFailures: 1},
			expected: entities.NonCompliant,
		},
		{
			name:     "at_threshold_stays_compliant",
			policy:   CompliancePolicy{MaxFlexibleFailures: 2},
			expected: entities.Compliant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Both flexible windows fail, the critical one passes
			result := simulateForCompliance(t, map[string]float64{
				"ph": 3.8, "acidity": 0.50, "color": 2.5,
			})

			report := NewComplianceServiceWithPolicy(tt.policy).CheckCompliance(result, spec)
			if report.Status != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, report.Status)
			}
			if report.FlexibleFailures != 2 {
				t.Errorf("expected 2 flexible failures exposed, got %d", report.FlexibleFailures)
			}
		})
	}
}

func TestEvaluateCost_Banding(t *testing.T) {
	profile := testProfile(t, 600, 800)

	tests := []struct {
		name     string
		unitCost float64
		expected entities.CostBand
	}{
		{"within_target", 590, entities.WithinTarget},
		{"requires_approval", 650, entities.RequiresApproval},
		{"rejected", 850, entities.Rejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lot := testLot(t, "LOT-A", 2024, 100, 100, tt.unitCost, map[string]float64{"ph": 3.8})
			assessment, err := NewCostService().EvaluateCost(
				mustCandidate(t, component(lot, 50)), profile)
			if err != nil {
				t.Fatalf("EvaluateCost failed: %v", err)
			}
			if assessment.Band != tt.expected {
				t.Errorf("cost %v: expected %s, got %s", tt.unitCost, tt.expected, assessment.Band)
			}
		})
	}
}

func TestEvaluateCost_WeightedBlend(t *testing.T) {
	cheap := testLot(t, "LOT-CHEAP", 2024, 100, 100, 500, map[string]float64{"ph": 3.8})
	dear := testLot(t, "LOT-DEAR", 2024, 110, 100, 800, map[string]float64{"ph": 3.8})

	assessment, err := NewCostService().EvaluateCost(
		mustCandidate(t, component(cheap, 75), component(dear, 25)),
		testProfile(t, 600, 800),
	)
	if err != nil {
		t.Fatalf("EvaluateCost failed: %v", err)
	}

	// (75*500 + 25*800) / 100 = 575
	if !assessment.BlendedCost.Equal(decimal.NewFromInt(575)) {
		t.Errorf("expected blended cost 575, got %s", assessment.BlendedCost)
	}
	if assessment.Band != entities.WithinTarget {
		t.Errorf("expected WITHIN_TARGET, got %s", assessment.Band)
	}
}
