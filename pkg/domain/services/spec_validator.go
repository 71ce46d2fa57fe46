package services

import (
	"fmt"

	"github.com/vsinha/blendopt/pkg/domain/entities"
)

// SpecValidator provides validation for specification integrity at the
// ingestion boundary
type SpecValidator struct{}

// NewSpecValidator creates a new specification validator
func NewSpecValidator() *SpecValidator {
	return &SpecValidator{}
}

// ValidationResult contains the results of specification validation
type ValidationResult struct {
	DuplicateWindows []entities.Parameter
	InvertedWindows  []entities.Parameter
	Errors           []string
}

// IsValid reports whether the specification passed all checks
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidateSpecification performs comprehensive validation on a specification
func (v *SpecValidator) ValidateSpecification(spec *entities.Specification) *ValidationResult {
	result := &ValidationResult{
		DuplicateWindows: make([]entities.Parameter, 0),
		InvertedWindows:  make([]entities.Parameter, 0),
		Errors:           make([]string, 0),
	}

	seen := make(map[entities.Parameter]bool)
	for _, window := range spec.Windows {
		if window.Parameter == "" {
			result.Errors = append(result.Errors, "window with empty parameter name")
			continue
		}
		if seen[window.Parameter] {
			result.DuplicateWindows = append(result.DuplicateWindows, window.Parameter)
			result.Errors = append(result.Errors,
				fmt.Sprintf("duplicate window for parameter %s", window.Parameter))
		}
		seen[window.Parameter] = true

		if window.Min.GreaterThan(window.Max) {
			result.InvertedWindows = append(result.InvertedWindows, window.Parameter)
			result.Errors = append(result.Errors,
				fmt.Sprintf("inverted window for parameter %s: min %s > max %s",
					window.Parameter, window.Min, window.Max))
		}
	}

	return result
}

// ValidateLotCoverage reports specification parameters that no candidate lot
// has measured; a blend can never pass a window nothing was measured for
func (v *SpecValidator) ValidateLotCoverage(spec *entities.Specification, lots []*entities.Lot) *ValidationResult {
	result := &ValidationResult{
		Errors: make([]string, 0),
	}

	for _, window := range spec.Windows {
		measured := false
		for _, lot := range lots {
			if _, ok := lot.MeasuredValue(window.Parameter); ok {
				measured = true
				break
			}
		}
		if !measured {
			result.Errors = append(result.Errors,
				fmt.Sprintf("parameter %s has a specification window but no lot measured it", window.Parameter))
		}
	}

	return result
}
