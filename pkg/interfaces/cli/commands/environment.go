package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vsinha/blendopt/pkg/application/services"
	"github.com/vsinha/blendopt/pkg/domain/entities"
	domainservices "github.com/vsinha/blendopt/pkg/domain/services"
	"github.com/vsinha/blendopt/pkg/infrastructure/config"
	"github.com/vsinha/blendopt/pkg/infrastructure/events"
	csvrepo "github.com/vsinha/blendopt/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/blendopt/pkg/infrastructure/repositories/memory"
)

// Config holds the shared command-line configuration
type Config struct {
	LotsFile     string
	AnalysesFile string
	SpecsFile    string
	CostsFile    string
	ConfigFile   string

	ProductCode  string
	CustomerID   string
	Warehouse    string
	RequiredMass string
	Strategy     string

	Format  string
	Verbose bool
}

// environment wires repositories, services, and run configuration for a
// command execution
type environment struct {
	lotRepo   *memory.LotRepository
	specRepo  *memory.SpecificationRepository
	optimizer *services.OptimizerService
	eventLog  *events.InMemoryEventStore
	runConfig *config.Config
	validator *domainservices.SpecValidator
	logger    zerolog.Logger
}

// buildEnvironment loads CSV data and YAML configuration and assembles the
// service pipeline
func buildEnvironment(cfg Config, logger zerolog.Logger) (*environment, error) {
	if cfg.LotsFile == "" || cfg.AnalysesFile == "" {
		return nil, fmt.Errorf("lots and analyses CSV files are required")
	}
	if cfg.SpecsFile == "" || cfg.CostsFile == "" {
		return nil, fmt.Errorf("specifications and cost profiles CSV files are required")
	}

	loader := csvrepo.NewLoader()

	lots, err := loader.LoadLots(cfg.LotsFile, cfg.AnalysesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load lots: %w", err)
	}
	specs, err := loader.LoadSpecifications(cfg.SpecsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load specifications: %w", err)
	}
	profiles, err := loader.LoadCostProfiles(cfg.CostsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load cost profiles: %w", err)
	}

	validator := domainservices.NewSpecValidator()
	for _, spec := range specs {
		if result := validator.ValidateSpecification(spec); !result.IsValid() {
			return nil, fmt.Errorf("specification %s/%s failed validation: %s",
				spec.ProductCode, spec.CustomerID, strings.Join(result.Errors, "; "))
		}
	}

	lotRepo := memory.NewLotRepository()
	if err := lotRepo.LoadLots(lots); err != nil {
		return nil, fmt.Errorf("failed to populate lot repository: %w", err)
	}

	specRepo := memory.NewSpecificationRepository()
	for _, spec := range specs {
		specRepo.AddSpecification(spec)
	}
	for _, profile := range profiles {
		specRepo.AddCostProfile(profile)
	}

	runConfig := &config.Config{}
	if cfg.ConfigFile != "" {
		runConfig, err = config.Load(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
	}

	compliance := services.NewComplianceServiceWithPolicy(runConfig.CompliancePolicy())
	optimizer := services.NewOptimizerServiceWithConfig(
		services.NewSelectorService(),
		services.NewSimulatorService(),
		compliance,
		services.NewCostService(),
		runConfig.OptimizerConfig(),
	)

	eventLog := events.NewInMemoryEventStore()
	optimizer.RecordEventsTo(eventLog)

	logger.Debug().
		Int("lots", len(lots)).
		Int("specifications", len(specs)).
		Int("cost_profiles", len(profiles)).
		Msg("environment loaded")

	return &environment{
		lotRepo:   lotRepo,
		specRepo:  specRepo,
		optimizer: optimizer,
		eventLog:  eventLog,
		runConfig: runConfig,
		validator: validator,
		logger:    logger,
	}, nil
}

// buildRequest assembles the optimization request from flags, the YAML run
// configuration, and the resolved specification and cost profile
func (env *environment) buildRequest(ctx context.Context, cfg Config) (services.OptimizationRequest, error) {
	var req services.OptimizationRequest

	if cfg.ProductCode == "" {
		return req, fmt.Errorf("product code is required")
	}
	requiredMass, err := decimal.NewFromString(cfg.RequiredMass)
	if err != nil {
		return req, fmt.Errorf("invalid required mass: %s", cfg.RequiredMass)
	}

	strategyName := cfg.Strategy
	if strategyName == "" {
		strategyName = env.runConfig.Strategy
	}
	strategy, err := entities.ParseStrategy(strategyName)
	if err != nil {
		return req, err
	}

	productCode := entities.ProductCode(cfg.ProductCode)

	spec, err := env.specRepo.GetSpecification(ctx, productCode, cfg.CustomerID)
	if err != nil {
		return req, err
	}
	profile, err := env.specRepo.GetCostProfile(ctx, productCode)
	if err != nil {
		return req, err
	}

	// A window no candidate lot measured can never pass; warn before the
	// run rather than after it returns infeasible
	lots, err := env.lotRepo.ListAvailableLots(ctx, productCode, cfg.Warehouse)
	if err != nil {
		return req, fmt.Errorf("failed to list lots for coverage check: %w", err)
	}
	if coverage := env.validator.ValidateLotCoverage(spec, lots); !coverage.IsValid() {
		for _, msg := range coverage.Errors {
			env.logger.Warn().Str("product", cfg.ProductCode).Msg(msg)
		}
	}

	return services.OptimizationRequest{
		ProductCode:   productCode,
		Warehouse:     cfg.Warehouse,
		RequiredMass:  requiredMass,
		Policy:        env.runConfig.EligibilityPolicy(),
		Specification: spec,
		CostProfile:   profile,
		Strategy:      strategy,
	}, nil
}
