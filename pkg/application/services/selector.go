package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/blendopt/pkg/domain/entities"
	"github.com/vsinha/blendopt/pkg/domain/repositories"
)

// SelectorService orders and filters candidate lots for a blend request
// using FEFO ordering (oldest manufacturing sequence first)
type SelectorService struct {
	// now supplies the clock for shelf-life checks; overridable for tests
	now func() time.Time
}

// NewSelectorService creates a new FEFO/FIFO selector
func NewSelectorService() *SelectorService {
	return &SelectorService{now: time.Now}
}

// SelectionRequest describes one candidate-selection call
type SelectionRequest struct {
	ProductCode  entities.ProductCode
	Warehouse    string
	RequiredMass decimal.Decimal
	Policy       entities.EligibilityPolicy
}

// SelectCandidates returns eligible lots ordered oldest-first, each annotated
// with its maximum usable mass under the policy's per-sub-type percentage
// caps. Ties on the age ordering key break toward the cheaper lot. When the
// eligible mass falls short of the request the full eligible list is returned
// with a shortage deficit; insufficient inventory is a planning outcome, not
// an error.
func (s *SelectorService) SelectCandidates(
	ctx context.Context,
	req SelectionRequest,
	lotRepo repositories.LotRepository,
) (*entities.SelectionResult, error) {
	if !req.RequiredMass.IsPositive() {
		return nil, fmt.Errorf("required mass must be positive, got %s", req.RequiredMass)
	}

	lots, err := lotRepo.ListAvailableLots(ctx, req.ProductCode, req.Warehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots for %s: %w", req.ProductCode, err)
	}

	eligible := s.filterEligible(lots, req.Policy)

	// FEFO: oldest sequence key first; same age prefers the cheaper lot
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].SequenceKey != eligible[j].SequenceKey {
			return eligible[i].SequenceKey < eligible[j].SequenceKey
		}
		if !eligible[i].UnitCost.Equal(eligible[j].UnitCost) {
			return eligible[i].UnitCost.LessThan(eligible[j].UnitCost)
		}
		return eligible[i].LotNumber < eligible[j].LotNumber
	})

	candidates := s.applySubTypeCaps(eligible, req.RequiredMass, req.Policy)

	result := &entities.SelectionResult{
		ProductCode:  req.ProductCode,
		RequiredMass: req.RequiredMass,
		Candidates:   candidates,
		Shortage:     decimal.Zero,
	}

	if deficit := req.RequiredMass.Sub(result.EligibleMass()); deficit.IsPositive() {
		result.Shortage = deficit
	}

	return result, nil
}

// filterEligible drops lots excluded by sub-type, shelf life, or exhaustion
func (s *SelectorService) filterEligible(lots []*entities.Lot, policy entities.EligibilityPolicy) []*entities.Lot {
	now := s.now()
	var eligible []*entities.Lot
	for _, lot := range lots {
		if !lot.AvailableMass.IsPositive() {
			continue
		}
		if !policy.SubTypeAllowed(lot.SubType) {
			continue
		}
		if policy.MinShelfLifeDays > 0 && lot.RemainingShelfLifeDays(now) < policy.MinShelfLifeDays {
			continue
		}
		eligible = append(eligible, lot)
	}
	return eligible
}

// applySubTypeCaps annotates each ordered lot with the mass usable before its
// sub-type's percentage cap is exhausted. Older lots consume the cap first.
func (s *SelectorService) applySubTypeCaps(
	ordered []*entities.Lot,
	requiredMass decimal.Decimal,
	policy entities.EligibilityPolicy,
) []entities.CandidateLot {
	capRemaining := make(map[string]decimal.Decimal)
	var candidates []entities.CandidateLot

	for _, lot := range ordered {
		usable := lot.AvailableMass

		if cap, capped := policy.SubTypeCap(lot.SubType, requiredMass); capped {
			remaining, tracked := capRemaining[lot.SubType]
			if !tracked {
				remaining = cap
			}
			if usable.GreaterThan(remaining) {
				usable = remaining
			}
			capRemaining[lot.SubType] = remaining.Sub(usable)
		}

		if !usable.IsPositive() {
			continue
		}

		candidates = append(candidates, entities.CandidateLot{
			Lot:        lot,
			UsableMass: usable,
		})
	}

	return candidates
}
