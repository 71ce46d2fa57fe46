package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vsinha/blendopt/pkg/application/dto"
	"github.com/vsinha/blendopt/pkg/domain/entities"
)

// Format identifies a supported output format
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
)

// ParseFormat converts a format name into a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return Text, fmt.Errorf("invalid format: %s (expected: text or json)", s)
	}
}

// RenderOutcome formats one optimization outcome
func RenderOutcome(outcome *dto.OptimizationOutcome, format Format) (string, error) {
	switch format {
	case JSON:
		return renderJSON(outcome)
	default:
		return renderOutcomeText(outcome), nil
	}
}

// RenderReport formats a scenario comparison report
func RenderReport(report *dto.ScenarioReport, format Format) (string, error) {
	switch format {
	case JSON:
		return renderJSON(report)
	default:
		return renderReportText(report), nil
	}
}

func renderJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal output: %w", err)
	}
	return string(data), nil
}

func renderOutcomeText(outcome *dto.OptimizationOutcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Optimization run %s\n", outcome.RunID)
	fmt.Fprintf(&b, "Product: %s  Strategy: %s  Required mass: %s\n",
		outcome.ProductCode, outcome.Strategy, outcome.RequiredMass)

	if outcome.Feasible {
		rec := outcome.Recommendation
		fmt.Fprintf(&b, "Result: FEASIBLE (%d candidates evaluated)\n", outcome.EvaluatedCandidates)
		fmt.Fprintf(&b, "Blended cost: %s (%s)\n",
			rec.Result.Cost.BlendedCost, rec.Result.Cost.Band)
		if rec.RequiresApproval {
			b.WriteString("Cost is above target: approval recommended before release\n")
		}
		b.WriteString(renderComponents(rec.Candidate))
		b.WriteString(renderChecks(rec.Result.Compliance))
		return b.String()
	}

	fmt.Fprintf(&b, "Result: INFEASIBLE (%d candidates evaluated)\n", outcome.EvaluatedCandidates)
	if outcome.Shortage.IsPositive() {
		fmt.Fprintf(&b, "Eligible mass deficit: %s\n", outcome.Shortage)
	}
	if len(outcome.Alternatives) > 0 {
		fmt.Fprintf(&b, "Closest candidates (%d):\n", len(outcome.Alternatives))
		for i, alt := range outcome.Alternatives {
			compliance := alt.Result.Compliance
			fmt.Fprintf(&b, "  %d. %d lots, cost %s, critical failures %d (deviation %s), flexible failures %d\n",
				i+1, alt.Candidate.LotCount(), alt.Result.Cost.BlendedCost,
				compliance.CriticalFailures, compliance.CriticalDeviation(), compliance.FlexibleFailures)
		}
	}
	b.WriteString("Resolution options:\n")
	for i, option := range outcome.Resolutions {
		fmt.Fprintf(&b, "  %d. [%s] %s\n", i+1, option.Kind, option.Description)
		for _, relax := range option.Relaxations {
			fmt.Fprintf(&b, "     relax %s: [%s, %s] -> [%s, %s] (by %s)\n",
				relax.Parameter, relax.CurrentMin, relax.CurrentMax,
				relax.ProposedMin, relax.ProposedMax, relax.Amount)
		}
	}
	return b.String()
}

func renderReportText(report *dto.ScenarioReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Scenario report %s for %s\n", report.ReportID, report.ProductCode)
	for _, scenario := range report.Scenarios {
		fmt.Fprintf(&b, "--- %s ---\n", scenario.Strategy)
		if scenario.Feasible {
			rec := scenario.Outcome.Recommendation
			fmt.Fprintf(&b, "feasible: cost %s (%s), %d lots, avg age key %s\n",
				rec.Result.Cost.BlendedCost, rec.Result.Cost.Band,
				rec.Candidate.LotCount(), rec.Result.AverageSequenceKey)
		} else {
			fmt.Fprintf(&b, "infeasible: %d alternatives, shortage %s\n",
				len(scenario.Outcome.Alternatives), scenario.Outcome.Shortage)
		}
	}
	fmt.Fprintf(&b, "Recommendation: %s\n", report.Recommendation)
	return b.String()
}

func renderComponents(candidate *entities.BlendCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Components (%d lots):\n", candidate.LotCount())
	for _, comp := range candidate.Components {
		fmt.Fprintf(&b, "  %s (%s, %s): %s kg at %s/kg\n",
			comp.Lot.LotNumber, comp.Lot.SubType, comp.Lot.SequenceKey,
			comp.Mass, comp.Lot.UnitCost)
	}
	return b.String()
}

func renderChecks(report *entities.ComplianceReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Compliance: %s (critical failures %d, flexible failures %d)\n",
		report.Status, report.CriticalFailures, report.FlexibleFailures)
	for _, check := range report.Checks {
		switch check.Status {
		case entities.Fail:
			fmt.Fprintf(&b, "  %s: %s = %s (deviation %s, %s)\n",
				check.Status, check.Parameter, check.Value, check.Deviation, check.Criticality)
		case entities.NoSpec:
			fmt.Fprintf(&b, "  %s: %s = %s\n", check.Status, check.Parameter, check.Value)
		default:
			fmt.Fprintf(&b, "  %s: %s = %s\n", check.Status, check.Parameter, check.Value)
		}
	}
	return b.String()
}
