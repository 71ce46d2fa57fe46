package repositories

import (
	"context"

	"github.com/vsinha/blendopt/pkg/domain/entities"
)

// SpecificationRepository resolves quality specifications and cost profiles.
// Generic-vs-customer specification resolution happens behind this contract;
// the engine always receives a single resolved specification.
type SpecificationRepository interface {
	GetSpecification(
		ctx context.Context,
		productCode entities.ProductCode,
		customerID string,
	) (*entities.Specification, error)
	GetCostProfile(
		ctx context.Context,
		productCode entities.ProductCode,
	) (*entities.CostProfile, error)
}
