package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CostBand classifies a blended unit cost against the cost profile
type CostBand int

const (
	WithinTarget CostBand = iota
	RequiresApproval
	Rejected
)

// String method for CostBand enum
func (b CostBand) String() string {
	switch b {
	case WithinTarget:
		return "WITHIN_TARGET"
	case RequiresApproval:
		return "REQUIRES_APPROVAL"
	case Rejected:
		return "REJECTED"
	default:
		return "Unknown"
	}
}

// CostProfile represents the configured cost thresholds for a product.
// Read-only input; owned externally.
type CostProfile struct {
	ProductCode ProductCode
	TargetCost  decimal.Decimal
	MaxCost     decimal.Decimal
}

// NewCostProfile creates a validated CostProfile
func NewCostProfile(productCode ProductCode, targetCost, maxCost decimal.Decimal) (*CostProfile, error) {
	if string(productCode) == "" {
		return nil, fmt.Errorf("product code cannot be empty")
	}
	if targetCost.IsNegative() {
		return nil, fmt.Errorf("target cost cannot be negative, got %s", targetCost)
	}
	if maxCost.LessThan(targetCost) {
		return nil, fmt.Errorf("max cost %s cannot be below target cost %s", maxCost, targetCost)
	}
	return &CostProfile{
		ProductCode: productCode,
		TargetCost:  targetCost,
		MaxCost:     maxCost,
	}, nil
}

// Classify bands a blended unit cost against the profile thresholds
func (p *CostProfile) Classify(blendedCost decimal.Decimal) CostBand {
	if blendedCost.LessThanOrEqual(p.TargetCost) {
		return WithinTarget
	}
	if blendedCost.LessThanOrEqual(p.MaxCost) {
		return RequiresApproval
	}
	return Rejected
}

// CostAssessment records the cost evaluation of a blend candidate
type CostAssessment struct {
	BlendedCost decimal.Decimal
	Band        CostBand
}
