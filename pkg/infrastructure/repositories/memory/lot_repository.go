package memory

import (
	"context"
	"sort"

	"github.com/vsinha/blendopt/pkg/domain/entities"
	"github.com/vsinha/blendopt/pkg/domain/repositories"
)

// LotRepository provides an in-memory lot registry. ListAvailableLots
// returns deep copies so a planning run's local mass decrements never leak
// back into the registry.
type LotRepository struct {
	lots []entities.Lot
}

// NewLotRepository creates a new in-memory lot repository
func NewLotRepository() *LotRepository {
	return &LotRepository{
		lots: []entities.Lot{},
	}
}

// Verify interface compliance
var _ repositories.LotRepository = (*LotRepository)(nil)

// LoadLots loads lots into the repository
func (r *LotRepository) LoadLots(lots []*entities.Lot) error {
	for _, lot := range lots {
		r.AddLot(*lot)
	}
	return nil
}

// AddLot adds a lot to the repository
func (r *LotRepository) AddLot(lot entities.Lot) {
	r.lots = append(r.lots, lot)
}

// ListAvailableLots returns a snapshot of lots with available mass for a
// product, optionally filtered by warehouse (empty matches all), ordered by
// manufacturing sequence
func (r *LotRepository) ListAvailableLots(
	ctx context.Context,
	productCode entities.ProductCode,
	warehouse string,
) ([]*entities.Lot, error) {
	var snapshot []*entities.Lot
	for i := range r.lots {
		lot := &r.lots[i]
		if lot.ProductCode != productCode {
			continue
		}
		if warehouse != "" && lot.Warehouse != warehouse {
			continue
		}
		if !lot.AvailableMass.IsPositive() {
			continue
		}
		snapshot = append(snapshot, lot.Clone())
	}

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].SequenceKey < snapshot[j].SequenceKey
	})

	return snapshot, nil
}
