package services

import (
	"github.com/vsinha/blendopt/pkg/domain/entities"

	"github.com/shopspring/decimal"
)

// CostService computes blended unit cost and bands it against a cost profile
type CostService struct{}

// NewCostService creates a new cost evaluator
func NewCostService() *CostService {
	return &CostService{}
}

// EvaluateCost computes the mass-weighted blended unit cost of a candidate
// and classifies it as WITHIN_TARGET, REQUIRES_APPROVAL, or REJECTED. A
// REJECTED band is terminal for the candidate; the optimizer must never
// recommend it.
func (s *CostService) EvaluateCost(
	candidate *entities.BlendCandidate,
	profile *entities.CostProfile,
) (*entities.CostAssessment, error) {
	if err := validateCandidate(candidate); err != nil {
		return nil, err
	}

	totalMass := candidate.TotalMass()
	if totalMass.IsZero() {
		return nil, entities.ErrEmptyBlend
	}

	weightedCost := decimal.Zero
	for _, comp := range candidate.Components {
		weightedCost = weightedCost.Add(comp.Mass.Mul(comp.Lot.UnitCost))
	}
	blendedCost := weightedCost.DivRound(totalMass, entities.ValuePrecision)

	return &entities.CostAssessment{
		BlendedCost: blendedCost,
		Band:        profile.Classify(blendedCost),
	}, nil
}
