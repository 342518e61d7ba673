package repository

import (
	"errors"
	"fmt"

	"github.com/ikkim/shoplive-catalog/internal/app/model"
	"github.com/ikkim/shoplive-catalog/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUnknownSKUCode = errors.New("variant value references unknown sku code")

type ProductFilter struct {
	Search string
	Brand  string
	Limit  int
	Offset int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll(filter ProductFilter) ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindIDs() ([]uint, error)
	Delete(id uint) error
	UpdateStock(productID, skuID uint, quantity int) error
	AddMedia(productID uint, media *model.SKUMedia) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create stores the product with its whole variant graph in one transaction.
// SKUs are inserted first so values can link them through SKUCodes.
func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", logger.Fields{
		"name":       product.Name,
		"dimensions": len(product.Dimensions),
		"skus":       len(product.SKUs),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
			return err
		}

		byCode := make(map[string]uint, len(product.SKUs))
		for i := range product.SKUs {
			sku := &product.SKUs[i]
			sku.ProductID = product.ID
			if err := tx.Create(sku).Error; err != nil {
				return err
			}
			byCode[sku.Code] = sku.ID
		}

		for i := range product.Dimensions {
			dim := &product.Dimensions[i]
			dim.ProductID = product.ID
			if err := tx.Omit("Values").Create(dim).Error; err != nil {
				return err
			}

			for j := range dim.Values {
				value := &dim.Values[j]
				value.DimensionID = dim.ID
				for _, code := range value.SKUCodes {
					id, ok := byCode[code]
					if !ok {
						return fmt.Errorf("%w: %s", ErrUnknownSKUCode, code)
					}
					value.SKUs = append(value.SKUs, model.SKU{ID: id})
				}
				if err := tx.Omit("SKUs.*").Create(value).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to create product in database", err, logger.Fields{
			"name": product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", logger.Fields{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) FindAll(filter ProductFilter) ([]model.Product, error) {
	query := r.db.Model(&model.Product{}).
		Preload("SKUs", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})

	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where("products.name LIKE ? OR products.description LIKE ?", like, like)
	}
	if filter.Brand != "" {
		query = query.Where("products.brand = ?", filter.Brand)
	}
	query = query.Order("products.created_at DESC").Order("products.id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, logger.Fields{
			"search": filter.Search,
			"brand":  filter.Brand,
		})
		return nil, err
	}

	logger.Debug("Products found with filter", logger.Fields{
		"count": len(products),
	})
	return products, nil
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("id ASC")
}

// FindByID loads the product with dimensions and values in catalog position
// order, and SKUs with their media.
func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.
		Preload("Dimensions", byPosition).
		Preload("Dimensions.Values", byPosition).
		Preload("Dimensions.Values.SKUs", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("SKUs", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("SKUs.Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("group_index ASC").Order("position ASC").Order("id ASC")
		}).
		First(&product, id).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find product by ID in database", err, logger.Fields{
				"product_id": id,
			})
		}
		return nil, err
	}

	logger.Debug("Product found by ID in database", logger.Fields{
		"product_id": product.ID,
		"dimensions": len(product.Dimensions),
		"skus":       len(product.SKUs),
	})
	return &product, nil
}

func (r *productRepository) FindIDs() ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&model.Product{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		logger.Error("Failed to list product IDs", err)
		return nil, err
	}
	return ids, nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", logger.Fields{
		"product_id": id,
	})

	result := r.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product from database", result.Error, logger.Fields{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStock sets the absolute stock of one SKU of a product.
func (r *productRepository) UpdateStock(productID, skuID uint, quantity int) error {
	logger.Debug("Updating sku stock in database", logger.Fields{
		"product_id": productID,
		"sku_id":     skuID,
		"quantity":   quantity,
	})

	result := r.db.Model(&model.SKU{}).
		Where("id = ? AND product_id = ?", skuID, productID).
		Update("stock_quantity", quantity)
	if result.Error != nil {
		logger.Error("Failed to update sku stock in database", result.Error, logger.Fields{
			"product_id": productID,
			"sku_id":     skuID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddMedia appends an image to a SKU of productID.
func (r *productRepository) AddMedia(productID uint, media *model.SKUMedia) error {
	var count int64
	if err := r.db.Model(&model.SKU{}).
		Where("id = ? AND product_id = ?", media.SKUID, productID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := r.db.Create(media).Error; err != nil {
		logger.Error("Failed to add sku media", err, logger.Fields{
			"product_id": productID,
			"sku_id":     media.SKUID,
		})
		return err
	}
	return nil
}
