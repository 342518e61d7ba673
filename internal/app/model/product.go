package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Brand       string         `gorm:"type:varchar(100)" json:"brand"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Dimensions []VariantDimension `gorm:"foreignKey:ProductID" json:"dimensions,omitempty"`
	SKUs       []SKU              `gorm:"foreignKey:ProductID" json:"skus,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// VariantDimension is one purchase axis of a product (Color, Size...).
type VariantDimension struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	ProductID uint   `gorm:"index;not null" json:"product_id"`
	Name      string `gorm:"not null" json:"name"`
	Position  int    `gorm:"default:0" json:"position"` // catalog order

	Values []VariantValue `gorm:"foreignKey:DimensionID" json:"values"`
}

func (VariantDimension) TableName() string {
	return "variant_dimensions"
}

type VariantValue struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	DimensionID uint   `gorm:"index;not null" json:"dimension_id"`
	Name        string `gorm:"not null" json:"name"`
	Position    int    `gorm:"default:0" json:"position"`

	SKUs []SKU `gorm:"many2many:variant_value_skus;" json:"-"`

	// SKUCodes links the value to SKUs of the same product on create.
	SKUCodes []string `gorm:"-" json:"sku_codes,omitempty"`
}

func (VariantValue) TableName() string {
	return "variant_values"
}
