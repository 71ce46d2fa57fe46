package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/blendopt/pkg/domain/entities"
	"github.com/vsinha/blendopt/pkg/infrastructure/repositories/memory"
)

const testProduct = entities.ProductCode("AGV-100")

// testLot builds a valid agave-syrup lot for tests
func testLot(t *testing.T, number string, year, folio int, mass, cost float64, analysis map[string]float64) *entities.Lot {
	t.Helper()

	key, err := entities.NewSequenceKey(year, folio)
	if err != nil {
		t.Fatalf("sequence key for %s: %v", number, err)
	}

	values := make(entities.Analysis, len(analysis))
	for param, value := range analysis {
		values[entities.Parameter(param)] = decimal.NewFromFloat(value)
	}

	lot, err := entities.NewLot(
		entities.LotNumber(number),
		testProduct,
		"blanco",
		decimal.NewFromFloat(mass),
		key,
		decimal.NewFromFloat(cost),
		"GDL-01",
		time.Now().Add(365*24*time.Hour),
		values,
	)
	if err != nil {
		t.Fatalf("lot %s: %v", number, err)
	}
	return lot
}

// testWindow builds a parameter window for tests
func testWindow(t *testing.T, param string, min, max float64, criticality entities.Criticality) entities.ParameterWindow {
	t.Helper()

	window, err := entities.NewParameterWindow(
		entities.Parameter(param),
		decimal.NewFromFloat(min),
		decimal.NewFromFloat(max),
		criticality,
	)
	if err != nil {
		t.Fatalf("window %s: %v", param, err)
	}
	return *window
}

// testSpec builds a specification for tests
func testSpec(t *testing.T, windows ...entities.ParameterWindow) *entities.Specification {
	t.Helper()

	spec, err := entities.NewSpecification(testProduct, "", windows)
	if err != nil {
		t.Fatalf("specification: %v", err)
	}
	return spec
}

// testProfile builds a cost profile for tests
func testProfile(t *testing.T, target, max float64) *entities.CostProfile {
	t.Helper()

	profile, err := entities.NewCostProfile(testProduct,
		decimal.NewFromFloat(target), decimal.NewFromFloat(max))
	if err != nil {
		t.Fatalf("cost profile: %v", err)
	}
	return profile
}

// testRepo builds a populated in-memory lot repository
func testRepo(lots ...*entities.Lot) *memory.LotRepository {
	repo := memory.NewLotRepository()
	for _, lot := range lots {
		repo.AddLot(*lot)
	}
	return repo
}

// mustCandidate builds a blend candidate for tests
func mustCandidate(t *testing.T, components ...entities.BlendComponent) *entities.BlendCandidate {
	t.Helper()

	candidate, err := entities.NewBlendCandidate(components)
	if err != nil {
		t.Fatalf("candidate: %v", err)
	}
	return candidate
}

// component pairs a lot with a mass taken from it
func component(lot *entities.Lot, mass float64) entities.BlendComponent {
	return entities.BlendComponent{Lot: lot, Mass: decimal.NewFromFloat(mass)}
}
