package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ProductCode represents a unique finished-product identifier
type ProductCode string

// LotNumber represents a unique raw-material lot identifier
type LotNumber string

// Parameter names an analytical property measured on a lot (e.g. "ph", "brix")
type Parameter string

// SequenceKey is a derived manufacturing-order value; lower means older.
// It is built from the manufacturing year and the in-year folio number so
// that lots sort chronologically across year boundaries.
type SequenceKey int64

// NewSequenceKey derives a SequenceKey from a manufacturing year and folio
func NewSequenceKey(year, folio int) (SequenceKey, error) {
	if year < 1900 || year > 9999 {
		return 0, fmt.Errorf("year out of range: %d", year)
	}
	if folio < 0 || folio > 999999 {
		return 0, fmt.Errorf("folio out of range: %d", folio)
	}
	return SequenceKey(int64(year)*1000000 + int64(folio)), nil
}

// Year returns the manufacturing year encoded in the key
func (k SequenceKey) Year() int {
	return int(int64(k) / 1000000)
}

// Folio returns the in-year folio number encoded in the key
func (k SequenceKey) Folio() int {
	return int(int64(k) % 1000000)
}

// String method for SequenceKey
func (k SequenceKey) String() string {
	return fmt.Sprintf("%d-folio-%d", k.Year(), k.Folio())
}

// Analysis maps analytical parameter names to measured values
type Analysis map[Parameter]decimal.Decimal

// AnalyticalParameter is a single measured property as it arrives from the
// registry boundary: name, numeric value, unit
type AnalyticalParameter struct {
	Name  Parameter
	Value decimal.Decimal
	Unit  string
}

// AnalysisFromParameters builds an analysis map from boundary records
func AnalysisFromParameters(params []AnalyticalParameter) Analysis {
	analysis := make(Analysis, len(params))
	for _, param := range params {
		analysis[param.Name] = param.Value
	}
	return analysis
}

// ResolveAnalysis merges an ordered list of measurement sources into a single
// analysis map. Earlier sources win; later sources only fill parameters the
// earlier ones did not measure. Legacy single-field fallbacks are expressed as
// trailing sources so the fallback order is resolved exactly once, at
// ingestion.
func ResolveAnalysis(sources ...Analysis) Analysis {
	resolved := make(Analysis)
	for _, source := range sources {
		for param, value := range source {
			if _, exists := resolved[param]; !exists {
				resolved[param] = value
			}
		}
	}
	return resolved
}

// Lot represents a discrete quantity of raw material with independently
// measured properties. Immutable once measured; available mass is only
// decremented locally during a planning run, never committed back.
type Lot struct {
	LotNumber     LotNumber
	ProductCode   ProductCode
	SubType       string
	AvailableMass decimal.Decimal
	SequenceKey   SequenceKey
	UnitCost      decimal.Decimal
	Warehouse     string
	ExpiryDate    time.Time
	Analysis      Analysis
}

// NewLot creates a validated Lot. Measurement sources are resolved in order
// via ResolveAnalysis.
func NewLot(
	lotNumber LotNumber,
	productCode ProductCode,
	subType string,
	availableMass decimal.Decimal,
	sequenceKey SequenceKey,
	unitCost decimal.Decimal,
	warehouse string,
	expiryDate time.Time,
	measurements ...Analysis,
) (*Lot, error) {
	if string(lotNumber) == "" {
		return nil, fmt.Errorf("lot number cannot be empty")
	}
	if string(productCode) == "" {
		return nil, fmt.Errorf("product code cannot be empty")
	}
	if availableMass.IsNegative() {
		return nil, fmt.Errorf("available mass cannot be negative, got %s", availableMass)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("unit cost cannot be negative, got %s", unitCost)
	}
	if warehouse == "" {
		return nil, fmt.Errorf("warehouse cannot be empty")
	}

	return &Lot{
		LotNumber:     lotNumber,
		ProductCode:   productCode,
		SubType:       subType,
		AvailableMass: availableMass,
		SequenceKey:   sequenceKey,
		UnitCost:      unitCost,
		Warehouse:     warehouse,
		ExpiryDate:    expiryDate,
		Analysis:      ResolveAnalysis(measurements...),
	}, nil
}

// RemainingShelfLifeDays returns the whole days of shelf life left as of now
func (l *Lot) RemainingShelfLifeDays(now time.Time) int {
	return int(l.ExpiryDate.Sub(now).Hours() / 24)
}

// MeasuredValue returns the measured value for a parameter and whether the
// lot was measured for it at all
func (l *Lot) MeasuredValue(param Parameter) (decimal.Decimal, bool) {
	value, ok := l.Analysis[param]
	return value, ok
}

// Clone returns a deep copy of the lot so snapshot readers never observe
// mutations made by the owning repository
func (l *Lot) Clone() *Lot {
	analysis := make(Analysis, len(l.Analysis))
	for param, value := range l.Analysis {
		analysis[param] = value
	}
	clone := *l
	clone.Analysis = analysis
	return &clone
}
