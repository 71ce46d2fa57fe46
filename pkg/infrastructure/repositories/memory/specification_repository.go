package memory

import (
	"context"
	"fmt"

	"github.com/vsinha/blendopt/pkg/domain/entities"
	"github.com/vsinha/blendopt/pkg/domain/repositories"
)

// SpecificationRepository provides in-memory specification and cost profile
// storage. Customer-specific specifications shadow the generic one for the
// same product.
type SpecificationRepository struct {
	specs    map[string]*entities.Specification
	profiles map[entities.ProductCode]*entities.CostProfile
}

// NewSpecificationRepository creates a new in-memory specification repository
func NewSpecificationRepository() *SpecificationRepository {
	return &SpecificationRepository{
		specs:    make(map[string]*entities.Specification),
		profiles: make(map[entities.ProductCode]*entities.CostProfile),
	}
}

// Verify interface compliance
var _ repositories.SpecificationRepository = (*SpecificationRepository)(nil)

// AddSpecification adds a specification; CustomerID "" registers the generic
// specification for the product
func (r *SpecificationRepository) AddSpecification(spec *entities.Specification) {
	r.specs[specKey(spec.ProductCode, spec.CustomerID)] = spec
}

// AddCostProfile adds a cost profile for a product
func (r *SpecificationRepository) AddCostProfile(profile *entities.CostProfile) {
	r.profiles[profile.ProductCode] = profile
}

// GetSpecification resolves the specification for a product and customer,
// falling back to the product's generic specification
func (r *SpecificationRepository) GetSpecification(
	ctx context.Context,
	productCode entities.ProductCode,
	customerID string,
) (*entities.Specification, error) {
	if spec, ok := r.specs[specKey(productCode, customerID)]; ok {
		return spec, nil
	}
	if spec, ok := r.specs[specKey(productCode, "")]; ok {
		return spec, nil
	}
	return nil, fmt.Errorf("specification not found for %s (customer %q): %w",
		productCode, customerID, entities.ErrDependencyUnavailable)
}

// GetCostProfile returns the configured cost profile for a product
func (r *SpecificationRepository) GetCostProfile(
	ctx context.Context,
	productCode entities.ProductCode,
) (*entities.CostProfile, error) {
	profile, ok := r.profiles[productCode]
	if !ok {
		return nil, fmt.Errorf("cost profile not found for %s: %w",
			productCode, entities.ErrDependencyUnavailable)
	}
	return profile, nil
}

func specKey(productCode entities.ProductCode, customerID string) string {
	return fmt.Sprintf("%s|%s", productCode, customerID)
}
