package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Criticality represents how a parameter window failure affects overall
// compliance
type Criticality int

const (
	Critical Criticality = iota
	Flexible
)

// String method for Criticality enum
func (c Criticality) String() string {
	switch c {
	case Critical:
		return "Critical"
	case Flexible:
		return "Flexible"
	default:
		return "Unknown"
	}
}

// ParameterWindow represents the acceptable [min, max] range for a measured
// parameter
type ParameterWindow struct {
	Parameter   Parameter
	Min         decimal.Decimal
	Max         decimal.Decimal
	Criticality Criticality
}

// NewParameterWindow creates a validated ParameterWindow
func NewParameterWindow(param Parameter, min, max decimal.Decimal, criticality Criticality) (*ParameterWindow, error) {
	if string(param) == "" {
		return nil, fmt.Errorf("parameter name cannot be empty")
	}
	if min.GreaterThan(max) {
		return nil, fmt.Errorf("window min %s cannot exceed max %s for %s", min, max, param)
	}
	return &ParameterWindow{
		Parameter:   param,
		Min:         min,
		Max:         max,
		Criticality: criticality,
	}, nil
}

// Contains reports whether a value lies inside the window, inclusive
func (w *ParameterWindow) Contains(value decimal.Decimal) bool {
	return value.GreaterThanOrEqual(w.Min) && value.LessThanOrEqual(w.Max)
}

// Deviation returns how far a value lies outside the window; zero when the
// value is inside
func (w *ParameterWindow) Deviation(value decimal.Decimal) decimal.Decimal {
	if value.LessThan(w.Min) {
		return w.Min.Sub(value)
	}
	if value.GreaterThan(w.Max) {
		return value.Sub(w.Max)
	}
	return decimal.Zero
}

// Specification represents the resolved quality specification for a product.
// Generic/customer resolution happens upstream; the engine receives a single
// resolved window set and never mutates it.
type Specification struct {
	ProductCode ProductCode
	CustomerID  string
	Windows     []ParameterWindow
}

// NewSpecification creates a validated Specification
func NewSpecification(productCode ProductCode, customerID string, windows []ParameterWindow) (*Specification, error) {
	if string(productCode) == "" {
		return nil, fmt.Errorf("product code cannot be empty")
	}
	seen := make(map[Parameter]bool, len(windows))
	for _, window := range windows {
		if seen[window.Parameter] {
			return nil, fmt.Errorf("duplicate window for parameter %s", window.Parameter)
		}
		seen[window.Parameter] = true
	}
	return &Specification{
		ProductCode: productCode,
		CustomerID:  customerID,
		Windows:     windows,
	}, nil
}

// Window returns the window declared for a parameter, if any
func (s *Specification) Window(param Parameter) (*ParameterWindow, bool) {
	for i := range s.Windows {
		if s.Windows[i].Parameter == param {
			return &s.Windows[i], true
		}
	}
	return nil, false
}
