package model

import "time"

type SKU struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	ProductID      uint      `gorm:"uniqueIndex:idx_sku_product_code;not null" json:"product_id"`
	Code           string    `gorm:"uniqueIndex:idx_sku_product_code;type:varchar(64);not null" json:"code"`
	Name           string    `json:"name"`
	Price          float64   `gorm:"not null" json:"price"`
	CompareAtPrice float64   `gorm:"default:0" json:"compare_at_price"`
	Currency       string    `gorm:"type:varchar(3);default:'KRW'" json:"currency"`
	StockQuantity  int       `gorm:"default:0" json:"stock_quantity"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Media []SKUMedia `gorm:"foreignKey:SKUID" json:"media,omitempty"`
}

func (SKU) TableName() string {
	return "skus"
}

func (s SKU) InStock() bool {
	return s.StockQuantity > 0
}

// SKUMedia is one image of a SKU. Images sharing a GroupIndex form one
// gallery; group 0 is what the storefront shows for a resolved SKU.
type SKUMedia struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	SKUID      uint   `gorm:"index;not null" json:"sku_id"`
	GroupIndex int    `gorm:"default:0" json:"group_index"`
	Position   int    `gorm:"default:0" json:"position"`
	StorageKey string `json:"storage_key,omitempty"` // S3 object key
	URL        string `json:"url,omitempty"`
}

func (SKUMedia) TableName() string {
	return "sku_media"
}
