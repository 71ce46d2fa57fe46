package entities

import (
	"fmt"
	"strings"
)

// Strategy selects how the optimization engine builds blend candidates
type Strategy int

const (
	// StrictFEFO allocates strictly oldest-first until the mass requirement
	// is met
	StrictFEFO Strategy = iota

	// MinimizeCost allocates cheapest-eligible-first, ignoring age
	MinimizeCost

	// FEFOCostBalanced allocates oldest-first but substitutes a newer lot
	// when doing so cuts blended cost by more than the configured threshold
	// and the blend stays compliant. This is the default strategy.
	FEFOCostBalanced

	// MinimumLotCount prefers the fewest distinct lots, largest-first, to
	// reduce handling complexity
	MinimumLotCount
)

// AllStrategies lists every supported strategy in a stable order
func AllStrategies() []Strategy {
	return []Strategy{StrictFEFO, MinimizeCost, FEFOCostBalanced, MinimumLotCount}
}

// String method for Strategy enum
func (s Strategy) String() string {
	switch s {
	case StrictFEFO:
		return "strict_fefo"
	case MinimizeCost:
		return "minimize_cost"
	case FEFOCostBalanced:
		return "fefo_cost_balanced"
	case MinimumLotCount:
		return "minimum_lot_count"
	default:
		return "Unknown"
	}
}

// ParseStrategy converts a strategy name into a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict_fefo":
		return StrictFEFO, nil
	case "minimize_cost":
		return MinimizeCost, nil
	case "fefo_cost_balanced", "":
		return FEFOCostBalanced, nil
	case "minimum_lot_count":
		return MinimumLotCount, nil
	default:
		return FEFOCostBalanced, fmt.Errorf("invalid strategy: %s (expected: strict_fefo, minimize_cost, fefo_cost_balanced, or minimum_lot_count)", s)
	}
}
