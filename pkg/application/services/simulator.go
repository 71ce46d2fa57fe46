package services

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/blendopt/pkg/domain/entities"
)

// SimulatorService computes weighted-average analytical values for blend
// candidates. Simulation is pure: identical inputs always produce identical
// results because every division rounds at entities.ValuePrecision.
type SimulatorService struct{}

// NewSimulatorService creates a new blend simulator
func NewSimulatorService() *SimulatorService {
	return &SimulatorService{}
}

// SimulateBlend computes the mass-weighted average of every parameter
// measured on at least one component lot. Lots missing a parameter are
// excluded from that parameter's weighted sum only, not from the blend.
// Contract violations (nil/empty candidate, non-positive component mass,
// lot mass exceeded) fail fast; a zero total mass fails with ErrEmptyBlend.
func (s *SimulatorService) SimulateBlend(candidate *entities.BlendCandidate) (*entities.BlendResult, error) {
	if err := validateCandidate(candidate); err != nil {
		return nil, err
	}

	totalMass := candidate.TotalMass()
	if totalMass.IsZero() {
		return nil, entities.ErrEmptyBlend
	}

	values := make(map[entities.Parameter]decimal.Decimal)
	for _, param := range blendParameters(candidate) {
		weightedSum := decimal.Zero
		measuredMass := decimal.Zero
		for _, comp := range candidate.Components {
			value, measured := comp.Lot.MeasuredValue(param)
			if !measured {
				continue
			}
			weightedSum = weightedSum.Add(comp.Mass.Mul(value))
			measuredMass = measuredMass.Add(comp.Mass)
		}
		if measuredMass.IsZero() {
			continue
		}
		values[param] = weightedSum.DivRound(measuredMass, entities.ValuePrecision)
	}

	ageSum := decimal.Zero
	for _, comp := range candidate.Components {
		ageSum = ageSum.Add(comp.Mass.Mul(decimal.NewFromInt(int64(comp.Lot.SequenceKey))))
	}

	return &entities.BlendResult{
		TotalMass:          totalMass,
		Values:             values,
		AverageSequenceKey: ageSum.DivRound(totalMass, entities.ValuePrecision),
	}, nil
}

// validateCandidate enforces the blend candidate contract
func validateCandidate(candidate *entities.BlendCandidate) error {
	if candidate == nil || len(candidate.Components) == 0 {
		return fmt.Errorf("blend candidate must have at least one component")
	}
	for _, comp := range candidate.Components {
		if comp.Lot == nil {
			return fmt.Errorf("blend component lot cannot be nil")
		}
		if comp.Mass.IsNegative() {
			return fmt.Errorf("component mass for lot %s cannot be negative, got %s",
				comp.Lot.LotNumber, comp.Mass)
		}
		if comp.Mass.GreaterThan(comp.Lot.AvailableMass) {
			return fmt.Errorf("component mass %s exceeds available mass %s for lot %s",
				comp.Mass, comp.Lot.AvailableMass, comp.Lot.LotNumber)
		}
	}
	return nil
}

// blendParameters returns the union of measured parameters across all
// component lots in a stable order
func blendParameters(candidate *entities.BlendCandidate) []entities.Parameter {
	seen := make(map[entities.Parameter]bool)
	var params []entities.Parameter
	for _, comp := range candidate.Components {
		for param := range comp.Lot.Analysis {
			if !seen[param] {
				seen[param] = true
				params = append(params, param)
			}
		}
	}
	sort.Slice(params, func(i, j int) bool { return params[i] < params[j] })
	return params
}
