package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewSequenceKey_Ordering(t *testing.T) {
	older, err := NewSequenceKey(2023, 185)
	if err != nil {
		t.Fatalf("NewSequenceKey failed: %v", err)
	}
	newer, err := NewSequenceKey(2024, 12)
	if err != nil {
		t.Fatalf("NewSequenceKey failed: %v", err)
	}

	// A low folio early in a new year still sorts after any folio of the
	// previous year
	if older >= newer {
		t.Errorf("expected %s < %s", older, newer)
	}
	if older.Year() != 2023 || older.Folio() != 185 {
		t.Errorf("round-trip mismatch: year=%d folio=%d", older.Year(), older.Folio())
	}
	if older.String() != "2023-folio-185" {
		t.Errorf("unexpected string form: %s", older)
	}
}

func TestNewSequenceKey_Validation(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		folio int
	}{
		{"year too small", 1899, 1},
		{"year too large", 10000, 1},
		{"negative folio", 2024, -1},
		{"folio overflows encoding", 2024, 1000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSequenceKey(tt.year, tt.folio); err == nil {
				t.Errorf("expected error for year=%d folio=%d", tt.year, tt.folio)
			}
		})
	}
}

func TestResolveAnalysis_EarlierSourcesWin(t *testing.T) {
	primary := Analysis{"ph": decimal.NewFromFloat(3.5)}
	fallback := Analysis{
		"ph":   decimal.NewFromFloat(9.9),
		"brix": decimal.NewFromFloat(74.2),
	}

	resolved := ResolveAnalysis(primary, fallback)

	if !resolved["ph"].Equal(decimal.NewFromFloat(3.5)) {
		t.Errorf("expected primary ph 3.5 to win, got %s", resolved["ph"])
	}
	if !resolved["brix"].Equal(decimal.NewFromFloat(74.2)) {
		t.Errorf("expected fallback brix 74.2, got %s", resolved["brix"])
	}
}

func TestNewLot_Validation(t *testing.T) {
	key, _ := NewSequenceKey(2024, 100)
	expiry := time.Now().Add(180 * 24 * time.Hour)

	tests := []struct {
		name      string
		lotNumber LotNumber
		product   ProductCode
		mass      decimal.Decimal
		cost      decimal.Decimal
		warehouse string
	}{
		{"empty lot number", "", "AGV-100", decimal.NewFromInt(100), decimal.NewFromInt(600), "GDL-01"},
		{"empty product code", "LOT-A", "", decimal.NewFromInt(100), decimal.NewFromInt(600), "GDL-01"},
		{"negative mass", "LOT-A", "AGV-100", decimal.NewFromInt(-1), decimal.NewFromInt(600), "GDL-01"},
		{"negative cost", "LOT-A", "AGV-100", decimal.NewFromInt(100), decimal.NewFromInt(-600), "GDL-01"},
		{"empty warehouse", "LOT-A", "AGV-100", decimal.NewFromInt(100), decimal.NewFromInt(600), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLot(tt.lotNumber, tt.product, "blanco", tt.mass, key, tt.cost, tt.warehouse, expiry)
			if err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLot_Clone_IsolatesAnalysis(t *testing.T) {
	key, _ := NewSequenceKey(2024, 100)
	lot, err := NewLot("LOT-A", "AGV-100", "blanco",
		decimal.NewFromInt(100), key, decimal.NewFromInt(600), "GDL-01",
		time.Now().Add(180*24*time.Hour),
		Analysis{"ph": decimal.NewFromFloat(3.5)},
	)
	if err != nil {
		t.Fatalf("NewLot failed: %v", err)
	}

	clone := lot.Clone()
	clone.Analysis["ph"] = decimal.NewFromFloat(9.9)
	clone.AvailableMass = decimal.Zero

	if !lot.Analysis["ph"].Equal(decimal.NewFromFloat(3.5)) {
		t.Errorf("clone mutation leaked into original analysis: %s", lot.Analysis["ph"])
	}
	if !lot.AvailableMass.Equal(decimal.NewFromInt(100)) {
		t.Errorf("clone mutation leaked into original mass: %s", lot.AvailableMass)
	}
}

func TestLot_RemainingShelfLifeDays(t *testing.T) {
	key, _ := NewSequenceKey(2024, 100)
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	lot, err := NewLot("LOT-A", "AGV-100", "blanco",
		decimal.NewFromInt(100), key, decimal.NewFromInt(600), "GDL-01",
		now.Add(45*24*time.Hour))
	if err != nil {
		t.Fatalf("NewLot failed: %v", err)
	}

	if days := lot.RemainingShelfLifeDays(now); days != 45 {
		t.Errorf("expected 45 days, got %d", days)
	}
}
