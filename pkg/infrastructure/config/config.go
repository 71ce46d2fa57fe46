package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/blendopt/pkg/application/services"
	"github.com/vsinha/blendopt/pkg/domain/entities"
)

// PolicyConfig is the YAML shape of an eligibility policy
type PolicyConfig struct {
	AllowedSubTypes   []string           `yaml:"allowed_sub_types"`
	MaxSubTypePercent map[string]float64 `yaml:"max_sub_type_percent"`
	MinShelfLifeDays  int                `yaml:"min_shelf_life_days"`
}

// Config is the YAML shape of a blend planning run configuration
type Config struct {
	Policy                       PolicyConfig `yaml:"policy"`
	Strategy                     string       `yaml:"strategy"`
	SubstitutionThresholdPercent float64      `yaml:"substitution_threshold_percent"`
	MaxFlexibleFailures          int          `yaml:"max_flexible_failures"`
}

// Load reads and parses a YAML run configuration
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filename, err)
	}

	if cfg.SubstitutionThresholdPercent < 0 {
		return nil, fmt.Errorf("substitution_threshold_percent cannot be negative")
	}
	if cfg.MaxFlexibleFailures < 0 {
		return nil, fmt.Errorf("max_flexible_failures cannot be negative")
	}
	for subType, percent := range cfg.Policy.MaxSubTypePercent {
		if percent <= 0 || percent > 100 {
			return nil, fmt.Errorf("max_sub_type_percent for %s must be in (0, 100], got %v", subType, percent)
		}
	}

	return &cfg, nil
}

// EligibilityPolicy converts the YAML policy into the domain policy
func (c *Config) EligibilityPolicy() entities.EligibilityPolicy {
	caps := make(map[string]decimal.Decimal, len(c.Policy.MaxSubTypePercent))
	for subType, percent := range c.Policy.MaxSubTypePercent {
		caps[subType] = decimal.NewFromFloat(percent)
	}
	return entities.EligibilityPolicy{
		AllowedSubTypes:   c.Policy.AllowedSubTypes,
		MaxSubTypePercent: caps,
		MinShelfLifeDays:  c.Policy.MinShelfLifeDays,
	}
}

// ParsedStrategy returns the configured strategy; empty defaults to
// fefo_cost_balanced
func (c *Config) ParsedStrategy() (entities.Strategy, error) {
	return entities.ParseStrategy(c.Strategy)
}

// OptimizerConfig converts the YAML tuning values into optimizer settings
func (c *Config) OptimizerConfig() services.OptimizerConfig {
	cfg := services.DefaultOptimizerConfig()
	if c.SubstitutionThresholdPercent > 0 {
		cfg.SubstitutionThresholdPercent = decimal.NewFromFloat(c.SubstitutionThresholdPercent)
	}
	return cfg
}

// CompliancePolicy converts the YAML escalation setting into the checker's
// policy
func (c *Config) CompliancePolicy() services.CompliancePolicy {
	return services.CompliancePolicy{MaxFlexibleFailures: c.MaxFlexibleFailures}
}
