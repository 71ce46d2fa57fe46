package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/blendopt/pkg/domain/entities"
)

func newLot(t *testing.T, number string, product entities.ProductCode, warehouse string, year, folio int, mass float64) entities.Lot {
	t.Helper()

	key, err := entities.NewSequenceKey(year, folio)
	if err != nil {
		t.Fatalf("sequence key for %s: %v", number, err)
	}
	lot, err := entities.NewLot(
		entities.LotNumber(number), product, "blanco",
		decimal.NewFromFloat(mass), key, decimal.NewFromInt(600), warehouse,
		time.Now().Add(180*24*time.Hour),
		entities.Analysis{"ph": decimal.NewFromFloat(3.8)},
	)
	if err != nil {
		t.Fatalf("lot %s: %v", number, err)
	}
	return *lot
}

func TestListAvailableLots_FiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	repo := NewLotRepository()

	repo.AddLot(newLot(t, "LOT-NEW", "AGV-100", "GDL-01", 2024, 200, 300))
	repo.AddLot(newLot(t, "LOT-OLD", "AGV-100", "GDL-01", 2023, 185, 400))
	repo.AddLot(newLot(t, "LOT-OTHER-PRODUCT", "AGV-200", "GDL-01", 2023, 10, 100))
	repo.AddLot(newLot(t, "LOT-OTHER-WAREHOUSE", "AGV-100", "MTY-02", 2023, 20, 100))
	repo.AddLot(newLot(t, "LOT-EMPTY", "AGV-100", "GDL-01", 2023, 30, 0))

	lots, err := repo.ListAvailableLots(ctx, "AGV-100", "GDL-01")
	if err != nil {
		t.Fatalf("ListAvailableLots failed: %v", err)
	}

	if len(lots) != 2 {
		t.Fatalf("expected 2 lots, got %d", len(lots))
	}
	if lots[0].LotNumber != "LOT-OLD" || lots[1].LotNumber != "LOT-NEW" {
		t.Errorf("expected oldest-first order, got [%s, %s]", lots[0].LotNumber, lots[1].LotNumber)
	}
}

func TestListAvailableLots_EmptyWarehouseMatchesAll(t *testing.T) {
	ctx := context.Background()
	repo := NewLotRepository()

	repo.AddLot(newLot(t, "LOT-GDL", "AGV-100", "GDL-01", 2023, 10, 100))
	repo.AddLot(newLot(t, "LOT-MTY", "AGV-100", "MTY-02", 2023, 20, 100))

	lots, err := repo.ListAvailableLots(ctx, "AGV-100", "")
	if err != nil {
		t.Fatalf("ListAvailableLots failed: %v", err)
	}
	if len(lots) != 2 {
		t.Errorf("expected 2 lots across warehouses, got %d", len(lots))
	}
}

func TestListAvailableLots_ReturnsSnapshots(t *testing.T) {
	ctx := context.Background()
	repo := NewLotRepository()
	repo.AddLot(newLot(t, "LOT-A", "AGV-100", "GDL-01", 2023, 10, 100))

	first, err := repo.ListAvailableLots(ctx, "AGV-100", "")
	if err != nil {
		t.Fatalf("ListAvailableLots failed: %v", err)
	}

	// A planning run's local decrement must not leak back
	first[0].AvailableMass = decimal.Zero
	first[0].Analysis["ph"] = decimal.NewFromFloat(9.9)

	second, err := repo.ListAvailableLots(ctx, "AGV-100", "")
	if err != nil {
		t.Fatalf("ListAvailableLots failed: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("expected the lot to remain available, got %d lots", len(second))
	}
	if !second[0].AvailableMass.Equal(decimal.NewFromInt(100)) {
		t.Errorf("snapshot mutation leaked into registry mass: %s", second[0].AvailableMass)
	}
	if !second[0].Analysis["ph"].Equal(decimal.NewFromFloat(3.8)) {
		t.Errorf("snapshot mutation leaked into registry analysis: %s", second[0].Analysis["ph"])
	}
}

func TestGetSpecification_CustomerShadowsGeneric(t *testing.T) {
	ctx := context.Background()
	repo := NewSpecificationRepository()

	generic, err := entities.NewSpecification("AGV-100", "", nil)
	if err != nil {
		t.Fatalf("generic spec: %v", err)
	}
	custom, err := entities.NewSpecification("AGV-100", "ACME", nil)
	if err != nil {
		t.Fatalf("customer spec: %v", err)
	}
	repo.AddSpecification(generic)
	repo.AddSpecification(custom)

	got, err := repo.GetSpecification(ctx, "AGV-100", "ACME")
	if err != nil {
		t.Fatalf("GetSpecification failed: %v", err)
	}
	if got.CustomerID != "ACME" {
		t.Errorf("expected customer spec, got %q", got.CustomerID)
	}

	// Unknown customer falls back to the generic specification
	got, err = repo.GetSpecification(ctx, "AGV-100", "OTHER")
	if err != nil {
		t.Fatalf("GetSpecification fallback failed: %v", err)
	}
	if got.CustomerID != "" {
		t.Errorf("expected generic fallback, got %q", got.CustomerID)
	}
}

func TestGetSpecification_NotFoundIsDependencyError(t *testing.T) {
	ctx := context.Background()
	repo := NewSpecificationRepository()

	_, err := repo.GetSpecification(ctx, "AGV-999", "")
	if !errors.Is(err, entities.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestGetCostProfile(t *testing.T) {
	ctx := context.Background()
	repo := NewSpecificationRepository()

	profile, err := entities.NewCostProfile("AGV-100",
		decimal.NewFromInt(600), decimal.NewFromInt(800))
	if err != nil {
		t.Fatalf("cost profile: %v", err)
	}
	repo.AddCostProfile(profile)

	got, err := repo.GetCostProfile(ctx, "AGV-100")
	if err != nil {
		t.Fatalf("GetCostProfile failed: %v", err)
	}
	if !got.TargetCost.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected target 600, got %s", got.TargetCost)
	}

	if _, err := repo.GetCostProfile(ctx, "AGV-999"); !errors.Is(err, entities.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}
