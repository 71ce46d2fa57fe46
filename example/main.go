package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vsinha/blendopt/pkg/application/services"
	"github.com/vsinha/blendopt/pkg/domain/entities"
	"github.com/vsinha/blendopt/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/blendopt/pkg/interfaces/cli/output"
)

// Example: blend 1000 kg of agave syrup AGV-100 for a customer whose
// specification is tighter than the generic one, then compare strategies.
func main() {
	ctx := context.Background()

	lotRepo := memory.NewLotRepository()
	for _, lot := range buildLots() {
		lotRepo.AddLot(*lot)
	}

	spec := buildSpecification()
	profile, err := entities.NewCostProfile("AGV-100",
		decimal.NewFromInt(600), decimal.NewFromInt(800))
	if err != nil {
		log.Fatalf("cost profile: %v", err)
	}

	optimizer := services.NewOptimizerService(
		services.NewSelectorService(),
		services.NewSimulatorService(),
		services.NewComplianceService(),
		services.NewCostService(),
	)

	req := services.OptimizationRequest{
		ProductCode:   "AGV-100",
		RequiredMass:  decimal.NewFromInt(1000),
		Policy:        entities.EligibilityPolicy{MinShelfLifeDays: 30},
		Specification: spec,
		CostProfile:   profile,
		Strategy:      entities.FEFOCostBalanced,
	}

	outcome, err := optimizer.Optimize(ctx, req, lotRepo)
	if err != nil {
		log.Fatalf("optimize: %v", err)
	}
	rendered, err := output.RenderOutcome(outcome, output.Text)
	if err != nil {
		log.Fatalf("render: %v", err)
	}
	fmt.Println(rendered)

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	comparator := services.NewComparatorService(optimizer, logger)
	report, err := comparator.CompareScenarios(ctx, req, entities.AllStrategies(), lotRepo)
	if err != nil {
		log.Fatalf("compare: %v", err)
	}
	renderedReport, err := output.RenderReport(report, output.Text)
	if err != nil {
		log.Fatalf("render report: %v", err)
	}
	fmt.Println(renderedReport)
}

func buildLots() []*entities.Lot {
	expiry := time.Now().Add(365 * 24 * time.Hour)

	type lotSpec struct {
		number  string
		year    int
		folio   int
		mass    int64
		cost    float64
		ph      float64
		brix    float64
		acidity float64
	}

	specs := []lotSpec{
		{"AGV-2023-185", 2023, 185, 400, 520, 3.6, 74.0, 0.42},
		{"AGV-2024-200", 2024, 200, 350, 610, 3.8, 75.5, 0.38},
		{"AGV-2024-215", 2024, 215, 500, 560, 4.0, 73.2, 0.45},
		{"AGV-2024-230", 2024, 230, 300, 480, 3.5, 76.1, 0.40},
	}

	var lots []*entities.Lot
	for _, s := range specs {
		key, err := entities.NewSequenceKey(s.year, s.folio)
		if err != nil {
			log.Fatalf("sequence key: %v", err)
		}
		lot, err := entities.NewLot(
			entities.LotNumber(s.number),
			"AGV-100",
			"blanco",
			decimal.NewFromInt(s.mass),
			key,
			decimal.NewFromFloat(s.cost),
			"GDL-01",
			expiry,
			entities.Analysis{
				"ph":      decimal.NewFromFloat(s.ph),
				"brix":    decimal.NewFromFloat(s.brix),
				"acidity": decimal.NewFromFloat(s.acidity),
			},
		)
		if err != nil {
			log.Fatalf("lot %s: %v", s.number, err)
		}
		lots = append(lots, lot)
	}
	return lots
}

func buildSpecification() *entities.Specification {
	windows := []entities.ParameterWindow{
		mustWindow("ph", 3.4, 4.1, entities.Critical),
		mustWindow("brix", 73.0, 76.0, entities.Critical),
		mustWindow("acidity", 0.30, 0.42, entities.Flexible),
	}
	spec, err := entities.NewSpecification("AGV-100", "ACME", windows)
	if err != nil {
		log.Fatalf("specification: %v", err)
	}
	return spec
}

func mustWindow(param entities.Parameter, min, max float64, criticality entities.Criticality) entities.ParameterWindow {
	window, err := entities.NewParameterWindow(param,
		decimal.NewFromFloat(min), decimal.NewFromFloat(max), criticality)
	if err != nil {
		log.Fatalf("window %s: %v", param, err)
	}
	return *window
}
