package entities

import "errors"

// ErrEmptyBlend is returned when a blend simulation is asked to run over a
// candidate with zero total mass
var ErrEmptyBlend = errors.New("blend candidate has zero total mass")

// ErrDependencyUnavailable wraps failures of external registry lookups.
// Retry policy belongs to the adapter layer, not the optimization core.
var ErrDependencyUnavailable = errors.New("external dependency unavailable")

// ErrEvaluationTimeout is returned when a caller-supplied deadline expires
// mid-run; nothing was committed externally, so no partial state remains
var ErrEvaluationTimeout = errors.New("evaluation timed out")
