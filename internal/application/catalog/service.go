package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/merchantry/backend/internal/application/unitofwork"
	"github.com/merchantry/backend/internal/domain/catalog"
	"github.com/merchantry/backend/internal/domain/shared"
)

// Service manages the product catalog. Stock levels are read-only here;
// they belong to the inventory costing engine.
type Service struct {
	scope unitofwork.TransactionScope
}

// NewService creates a new catalog Service
func NewService(scope unitofwork.TransactionScope) *Service {
	return &Service{scope: scope}
}

// Create adds a new product to the catalog
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(tenantID, req.Code, req.Name, req.Unit)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description
	if req.SellingPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}
	product.SellingPrice = req.SellingPrice

	err = s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		if _, err := repos.Products().FindByCode(ctx, tenantID, product.Code); err == nil {
			return shared.ErrAlreadyExists
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		return repos.Products().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Update applies a partial update to a product's descriptive fields
func (s *Service) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	var response ProductResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		product, err := repos.Products().FindByID(ctx, tenantID, productID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			product.Name = *req.Name
		}
		if req.Description != nil {
			product.Description = *req.Description
		}
		if req.SellingPrice != nil {
			if req.SellingPrice.IsNegative() {
				return shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
			}
			product.SellingPrice = *req.SellingPrice
		}
		product.UpdatedAt = time.Now()

		if err := repos.Products().SaveWithLock(ctx, product); err != nil {
			return err
		}
		response = ToProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// AddVariant adds a variant to an existing product
func (s *Service) AddVariant(ctx context.Context, tenantID, productID uuid.UUID, req AddVariantRequest) (*ProductResponse, error) {
	var response ProductResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		product, err := repos.Products().FindByID(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		if _, err := product.AddVariant(req.Name, req.SKU); err != nil {
			return err
		}
		if err := repos.Products().SaveWithLock(ctx, product); err != nil {
			return err
		}
		response = ToProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *Service) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	var response ProductResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		product, err := repos.Products().FindByID(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		response = ToProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetByCode retrieves a product by its code
func (s *Service) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*ProductResponse, error) {
	var response ProductResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		product, err := repos.Products().FindByCode(ctx, tenantID, code)
		if err != nil {
			return err
		}
		response = ToProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List returns the tenant's products, optionally including disabled ones
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]ProductResponse, error) {
	var responses []ProductResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		products, err := repos.Products().FindAll(ctx, tenantID, includeInactive)
		if err != nil {
			return err
		}
		responses = make([]ProductResponse, len(products))
		for i, p := range products {
			responses[i] = ToProductResponse(p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// Deactivate disables a product. Existing orders keep their snapshots and
// existing stock can still be returned or reported on.
func (s *Service) Deactivate(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	var response ProductResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		product, err := repos.Products().FindByID(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		product.Disable()
		if err := repos.Products().SaveWithLock(ctx, product); err != nil {
			return err
		}
		response = ToProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}
