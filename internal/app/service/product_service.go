package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/shoplive-catalog/internal/app/model"
	"github.com/ikkim/shoplive-catalog/internal/app/repository"
	"github.com/ikkim/shoplive-catalog/internal/variant"
	"github.com/ikkim/shoplive-catalog/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSKUNotFound     = errors.New("sku not found")
	ErrInvalidCatalog  = errors.New("invalid product catalog")
	ErrInvalidStock    = errors.New("stock quantity must not be negative")
)

type ProductListOptions struct {
	Search string
	Brand  string
	Limit  int
	Offset int
}

type ProductService interface {
	ListProducts(opts ProductListOptions) ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	CreateProduct(product *model.Product) error
	ImportCatalog(product *model.Product, payload []byte) (variant.Warnings, error)
	DeleteProduct(id uint) error
	UpdateStock(productID, skuID uint, quantity int) error
	AttachMedia(productID uint, media *model.SKUMedia) error
}

type productService struct {
	productRepo repository.ProductRepository
	indexes     IndexInvalidator
}

func NewProductService(productRepo repository.ProductRepository, indexes IndexInvalidator) ProductService {
	return &productService{
		productRepo: productRepo,
		indexes:     indexes,
	}
}

func (s *productService) ListProducts(opts ProductListOptions) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(repository.ProductFilter{
		Search: strings.TrimSpace(opts.Search),
		Brand:  strings.TrimSpace(opts.Brand),
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}
	return products, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// CreateProduct validates the variant graph and persists it. Missing
// positions default to the order given.
func (s *productService) CreateProduct(product *model.Product) error {
	if err := validateCatalog(product); err != nil {
		logger.Warn("Rejected product catalog", logger.Fields{
			"name":  product.Name,
			"error": err.Error(),
		})
		return err
	}

	for i := range product.Dimensions {
		dim := &product.Dimensions[i]
		if dim.Position == 0 {
			dim.Position = i
		}
		for j := range dim.Values {
			if dim.Values[j].Position == 0 {
				dim.Values[j].Position = j
			}
		}
	}

	if err := s.productRepo.Create(product); err != nil {
		if errors.Is(err, repository.ErrUnknownSKUCode) {
			return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		return err
	}

	s.invalidate(product.ID)
	logger.Info("Product created", logger.Fields{
		"product_id": product.ID,
		"skus":       len(product.SKUs),
	})
	return nil
}

// ImportCatalog creates product from a loosely typed catalog payload, the
// shape mobile clients already consume. Data-quality warnings do not block
// the import; they are logged and returned.
func (s *productService) ImportCatalog(product *model.Product, payload []byte) (variant.Warnings, error) {
	dims, skus, warnings, err := variant.DecodeCatalog(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	_, indexWarnings := variant.Build(dims, skus)
	warnings = append(warnings, indexWarnings...)

	product.Dimensions, product.SKUs = model.FromCatalog(dims, skus)
	if len(warnings) > 0 {
		logger.Warn("Imported catalog has data-quality warnings", logger.Fields{
			"name":    product.Name,
			"count":   len(warnings),
			"by_kind": warnings.ByKind(),
		})
	}

	if err := s.CreateProduct(product); err != nil {
		return warnings, err
	}
	return warnings, nil
}

func (s *productService) DeleteProduct(id uint) error {
	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.invalidate(id)
	return nil
}

func (s *productService) UpdateStock(productID, skuID uint, quantity int) error {
	if quantity < 0 {
		return ErrInvalidStock
	}
	if err := s.productRepo.UpdateStock(productID, skuID, quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSKUNotFound
		}
		return err
	}
	s.invalidate(productID)
	return nil
}

func (s *productService) AttachMedia(productID uint, media *model.SKUMedia) error {
	if strings.TrimSpace(media.StorageKey) == "" && strings.TrimSpace(media.URL) == "" {
		return fmt.Errorf("%w: media needs a storage key or URL", ErrInvalidCatalog)
	}
	if err := s.productRepo.AddMedia(productID, media); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSKUNotFound
		}
		return err
	}
	s.invalidate(productID)
	return nil
}

func (s *productService) invalidate(productID uint) {
	if s.indexes != nil {
		s.indexes.Invalidate(productID)
	}
}

// validateCatalog rejects structural problems in write payloads. Coverage
// problems (values without SKUs, ambiguous SKUs) are left to the audit.
func validateCatalog(product *model.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidCatalog)
	}

	codes := make(map[string]bool, len(product.SKUs))
	for _, sku := range product.SKUs {
		code := strings.TrimSpace(sku.Code)
		if code == "" {
			return fmt.Errorf("%w: sku code is required", ErrInvalidCatalog)
		}
		if codes[code] {
			return fmt.Errorf("%w: duplicate sku code %s", ErrInvalidCatalog, code)
		}
		if sku.Price < 0 || sku.StockQuantity < 0 {
			return fmt.Errorf("%w: sku %s has negative price or stock", ErrInvalidCatalog, code)
		}
		codes[code] = true
	}

	dimNames := make(map[string]bool, len(product.Dimensions))
	for _, dim := range product.Dimensions {
		name := strings.ToLower(strings.TrimSpace(dim.Name))
		if name == "" {
			return fmt.Errorf("%w: dimension name is required", ErrInvalidCatalog)
		}
		if dimNames[name] {
			return fmt.Errorf("%w: duplicate dimension %s", ErrInvalidCatalog, dim.Name)
		}
		dimNames[name] = true

		for _, value := range dim.Values {
			if strings.TrimSpace(value.Name) == "" {
				return fmt.Errorf("%w: value name is required in %s", ErrInvalidCatalog, dim.Name)
			}
			for _, code := range value.SKUCodes {
				if !codes[code] {
					return fmt.Errorf("%w: value %s references unknown sku %s", ErrInvalidCatalog, value.Name, code)
				}
			}
		}
	}
	return nil
}
