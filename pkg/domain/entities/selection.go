package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EligibilityPolicy constrains which lots may enter a blend and how much of
// each sub-type the blend may carry. Passed explicitly into each call; the
// engine holds no ambient policy state.
type EligibilityPolicy struct {
	// AllowedSubTypes restricts candidate lots to these sub-types; empty
	// means all sub-types are eligible
	AllowedSubTypes []string

	// MaxSubTypePercent caps the share of required mass a sub-type may
	// contribute, in whole percent of required mass (e.g. 40 = 40%).
	// Sub-types absent from the map are uncapped.
	MaxSubTypePercent map[string]decimal.Decimal

	// MinShelfLifeDays excludes lots with less remaining shelf life
	MinShelfLifeDays int
}

// SubTypeAllowed reports whether a sub-type passes the allow-list
func (p *EligibilityPolicy) SubTypeAllowed(subType string) bool {
	if len(p.AllowedSubTypes) == 0 {
		return true
	}
	for _, allowed := range p.AllowedSubTypes {
		if allowed == subType {
			return true
		}
	}
	return false
}

// SubTypeCap returns the mass cap for a sub-type given the required total
// mass, and whether a cap applies
func (p *EligibilityPolicy) SubTypeCap(subType string, requiredMass decimal.Decimal) (decimal.Decimal, bool) {
	percent, ok := p.MaxSubTypePercent[subType]
	if !ok {
		return decimal.Zero, false
	}
	return requiredMass.Mul(percent).Div(decimal.NewFromInt(100)), true
}

// CandidateLot annotates a lot with the maximum mass usable under the
// eligibility policy's percentage caps
type CandidateLot struct {
	Lot        *Lot
	UsableMass decimal.Decimal
}

// SelectionResult represents the ordered candidate list for a blend request.
// A shortage is a legitimate planning outcome, never an error: when eligible
// mass falls short the full eligible list is returned with the deficit.
type SelectionResult struct {
	ProductCode  ProductCode
	RequiredMass decimal.Decimal
	Candidates   []CandidateLot
	Shortage     decimal.Decimal
}

// EligibleMass returns the total usable mass across all candidates
func (r *SelectionResult) EligibleMass() decimal.Decimal {
	total := decimal.Zero
	for _, candidate := range r.Candidates {
		total = total.Add(candidate.UsableMass)
	}
	return total
}

// HasShortage reports whether the eligible mass falls short of the request
func (r *SelectionResult) HasShortage() bool {
	return r.Shortage.IsPositive()
}

// Clone returns a deep copy of the selection so strategy evaluations can
// consume usable mass independently from the same snapshot
func (r *SelectionResult) Clone() *SelectionResult {
	candidates := make([]CandidateLot, len(r.Candidates))
	for i, candidate := range r.Candidates {
		candidates[i] = CandidateLot{
			Lot:        candidate.Lot.Clone(),
			UsableMass: candidate.UsableMass,
		}
	}
	return &SelectionResult{
		ProductCode:  r.ProductCode,
		RequiredMass: r.RequiredMass,
		Candidates:   candidates,
		Shortage:     r.Shortage,
	}
}

// Validate checks the internal consistency of a selection result
func (r *SelectionResult) Validate() error {
	for _, candidate := range r.Candidates {
		if candidate.UsableMass.IsNegative() {
			return fmt.Errorf("usable mass for lot %s cannot be negative", candidate.Lot.LotNumber)
		}
		if candidate.UsableMass.GreaterThan(candidate.Lot.AvailableMass) {
			return fmt.Errorf("usable mass %s exceeds available mass %s for lot %s",
				candidate.UsableMass, candidate.Lot.AvailableMass, candidate.Lot.LotNumber)
		}
	}
	return nil
}
