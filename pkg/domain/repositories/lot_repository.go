package repositories

import (
	"context"

	"github.com/vsinha/blendopt/pkg/domain/entities"
)

// LotRepository provides a read-only view over available inventory lots.
// Implementations must return deep-copied snapshots: the engine decrements
// usable mass locally during a run and never commits back. Lookup failures
// should wrap entities.ErrDependencyUnavailable so callers can distinguish
// adapter outages from business outcomes.
type LotRepository interface {
	ListAvailableLots(
		ctx context.Context,
		productCode entities.ProductCode,
		warehouse string,
	) ([]*entities.Lot, error)
}
