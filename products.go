package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ProductService manages the product catalog of one company at a time
type ProductService struct {
	repo   RepositoryManager
	logger Logger
}

// NewProductService returns a new ProductService
func NewProductService(repo RepositoryManager) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: defLogger{},
	}
}

func (s *ProductService) WithLogger(logger Logger) *ProductService {
	s.logger = normalizeLogger(logger)
	return s
}

func (s *ProductService) List(ctx context.Context, companyID uuid.UUID) ([]*Product, error) {
	records, err := s.repo.Products().List(ctx, companyID)
	if err != nil {
		return nil, internalError(err, "Failed to fetch products")
	}
	return records, nil
}

func (s *ProductService) Get(ctx context.Context, companyID, id uuid.UUID) (*Product, error) {
	record, err := s.repo.Products().Get(ctx, companyID, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, internalError(err, "Failed to fetch product")
	}
	return record, nil
}

// Create adds a product. A non-empty SKU must be unique in the company.
func (s *ProductService) Create(ctx context.Context, companyID uuid.UUID, in ProductInput) (*Product, error) {
	if err := ValidatePayload(in); err != nil {
		return nil, err
	}

	sku := strings.TrimSpace(in.SKU)
	if sku != "" {
		if err := s.ensureSKUFree(ctx, companyID, sku); err != nil {
			return nil, err
		}
	}

	record := &Product{
		CompanyID:   companyID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		SKU:         sku,
		UnitPrice:   *in.UnitPrice,
		Category:    in.Category,
		IsActive:    true,
	}
	if in.TaxRate != nil {
		record.TaxRate = *in.TaxRate
	}
	if in.IsActive != nil {
		record.IsActive = *in.IsActive
	}

	created, err := s.repo.Products().Create(ctx, record)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrProductSKUTaken
		}
		return nil, internalError(err, "Failed to create product")
	}
	return created, nil
}

// Update applies the fields present in the payload
func (s *ProductService) Update(ctx context.Context, companyID, id uuid.UUID, in ProductUpdate) (*Product, error) {
	if err := ValidatePayload(in); err != nil {
		return nil, err
	}

	record, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if sku != "" && sku != record.SKU {
			if err := s.ensureSKUFree(ctx, companyID, sku); err != nil {
				return nil, err
			}
		}
		record.SKU = sku
	}

	setString(&record.Name, in.Name)
	setString(&record.Description, in.Description)
	setString(&record.Category, in.Category)
	if in.UnitPrice != nil {
		record.UnitPrice = *in.UnitPrice
	}
	if in.TaxRate != nil {
		record.TaxRate = *in.TaxRate
	}
	if in.IsActive != nil {
		record.IsActive = *in.IsActive
	}

	updated, err := s.repo.Products().Update(ctx, record)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		if IsUniqueViolation(err) {
			return nil, ErrProductSKUTaken
		}
		return nil, internalError(err, "Failed to update product")
	}
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	if err := s.repo.Products().Delete(ctx, companyID, id); err != nil {
		if IsNotFound(err) {
			return ErrProductNotFound
		}
		return internalError(err, "Failed to delete product")
	}
	return nil
}

func (s *ProductService) ensureSKUFree(ctx context.Context, companyID uuid.UUID, sku string) error {
	taken, err := s.repo.Products().SKUTaken(ctx, companyID, sku)
	if err != nil {
		return internalError(err, "Failed to check product SKU")
	}
	if taken {
		return ErrProductSKUTaken
	}
	return nil
}
