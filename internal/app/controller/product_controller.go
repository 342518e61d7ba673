package controller

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shoplive-catalog/internal/app/model"
	"github.com/ikkim/shoplive-catalog/internal/app/service"
	apperrors "github.com/ikkim/shoplive-catalog/internal/errors"
	"github.com/ikkim/shoplive-catalog/internal/middleware"
)

const (
	defaultProductPageSize = 20
	maxProductPageSize     = 100
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type SKUMediaRequest struct {
	GroupIndex int    `json:"group_index" binding:"gte=0"`
	Position   int    `json:"position" binding:"gte=0"`
	StorageKey string `json:"storage_key"`
	URL        string `json:"url"`
}

type SKURequest struct {
	Code           string            `json:"code" binding:"required"`
	Name           string            `json:"name"`
	Price          float64           `json:"price" binding:"gte=0"`
	CompareAtPrice float64           `json:"compare_at_price" binding:"gte=0"`
	Currency       string            `json:"currency"`
	StockQuantity  int               `json:"stock_quantity" binding:"gte=0"`
	Media          []SKUMediaRequest `json:"media" binding:"dive"`
}

type VariantValueRequest struct {
	Name     string   `json:"name" binding:"required"`
	Position int      `json:"position"`
	SKUCodes []string `json:"sku_codes"`
}

type VariantDimensionRequest struct {
	Name     string                `json:"name" binding:"required"`
	Position int                   `json:"position"`
	Values   []VariantValueRequest `json:"values" binding:"dive"`
}

type CreateProductRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Description string                    `json:"description"`
	Brand       string                    `json:"brand"`
	SKUs        []SKURequest              `json:"skus" binding:"required,min=1,dive"`
	Dimensions  []VariantDimensionRequest `json:"dimensions" binding:"dive"`
}

// ImportProductRequest carries a catalog in the loosely typed shape the
// mobile clients consume.
type ImportProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	Catalog     json.RawMessage `json:"catalog" binding:"required"`
}

type UpdateStockRequest struct {
	StockQuantity *int `json:"stock_quantity" binding:"required"`
}

func (r SKUMediaRequest) toModel() model.SKUMedia {
	return model.SKUMedia{
		GroupIndex: r.GroupIndex,
		Position:   r.Position,
		StorageKey: r.StorageKey,
		URL:        r.URL,
	}
}

func (r CreateProductRequest) toModel() *model.Product {
	product := &model.Product{
		Name:        r.Name,
		Description: r.Description,
		Brand:       r.Brand,
		SKUs:        make([]model.SKU, 0, len(r.SKUs)),
		Dimensions:  make([]model.VariantDimension, 0, len(r.Dimensions)),
	}

	for _, s := range r.SKUs {
		sku := model.SKU{
			Code:           s.Code,
			Name:           s.Name,
			Price:          s.Price,
			CompareAtPrice: s.CompareAtPrice,
			Currency:       s.Currency,
			StockQuantity:  s.StockQuantity,
		}
		for _, m := range s.Media {
			sku.Media = append(sku.Media, m.toModel())
		}
		product.SKUs = append(product.SKUs, sku)
	}

	for _, d := range r.Dimensions {
		dim := model.VariantDimension{Name: d.Name, Position: d.Position}
		for _, v := range d.Values {
			dim.Values = append(dim.Values, model.VariantValue{
				Name:     v.Name,
				Position: v.Position,
				SKUCodes: v.SKUCodes,
			})
		}
		product.Dimensions = append(product.Dimensions, dim)
	}
	return product
}

// ListProducts returns products with their SKUs
// GET /api/v1/products?search=&brand=&limit=&offset=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	limit, err := parseQueryInt(c, "limit", defaultProductPageSize, maxProductPageSize)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "limit 값이 올바르지 않습니다")
		return
	}
	offset, err := parseQueryInt(c, "offset", 0, 0)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "offset 값이 올바르지 않습니다")
		return
	}

	products, err := ctrl.productService.ListProducts(service.ProductListOptions{
		Search: c.Query("search"),
		Brand:  c.Query("brand"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondServiceError(c, err, "list products")
		return
	}

	log.Debug("Products fetched", map[string]interface{}{
		"count": len(products),
	})

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
		"limit":    limit,
		"offset":   offset,
	})
}

// GetProductByID returns a product with its whole variant graph
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		respondServiceError(c, err, "get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct creates a product with SKUs and dimensions (Admin only)
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Invalid product creation request")
		return
	}

	product := req.toModel()
	if err := ctrl.productService.CreateProduct(product); err != nil {
		respondServiceError(c, err, "create product")
		return
	}

	operator, _ := middleware.GetOperator(c)
	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"operator":   operator,
	})

	c.JSON(http.StatusCreated, gin.H{
		"product": product,
	})
}

// ImportProduct creates a product from a raw catalog payload (Admin only)
// POST /api/v1/products/import
func (ctrl *ProductController) ImportProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ImportProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Invalid product import request")
		return
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
	}
	warnings, err := ctrl.productService.ImportCatalog(product, req.Catalog)
	if err != nil {
		respondServiceError(c, err, "import product")
		return
	}

	operator, _ := middleware.GetOperator(c)
	log.Info("Product imported", map[string]interface{}{
		"product_id": product.ID,
		"operator":   operator,
		"warnings":   len(warnings),
	})

	c.JSON(http.StatusCreated, gin.H{
		"product":       product,
		"warnings":      warnings,
		"warning_count": len(warnings),
	})
}

// DeleteProduct soft-deletes a product (Admin only)
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		respondServiceError(c, err, "delete product")
		return
	}

	log.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "상품이 삭제되었습니다",
	})
}

// UpdateStock sets the absolute stock of one SKU (Admin only)
// PATCH /api/v1/products/:id/skus/:skuId/stock
func (ctrl *ProductController) UpdateStock(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	skuID, ok := parseIDParam(c, "skuId")
	if !ok {
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "재고 수량을 입력해주세요")
		return
	}

	if err := ctrl.productService.UpdateStock(productID, skuID, *req.StockQuantity); err != nil {
		respondServiceError(c, err, "update sku stock")
		return
	}

	log.Info("SKU stock updated", map[string]interface{}{
		"product_id":     productID,
		"sku_id":         skuID,
		"stock_quantity": *req.StockQuantity,
	})

	c.JSON(http.StatusOK, gin.H{
		"sku_id":         skuID,
		"stock_quantity": *req.StockQuantity,
	})
}

// AttachMedia records an uploaded image on a SKU (Admin only)
// POST /api/v1/products/:id/skus/:skuId/media
func (ctrl *ProductController) AttachMedia(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	skuID, ok := parseIDParam(c, "skuId")
	if !ok {
		return
	}

	var req SKUMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Invalid media request")
		return
	}

	media := req.toModel()
	media.SKUID = skuID
	if err := ctrl.productService.AttachMedia(productID, &media); err != nil {
		respondServiceError(c, err, "attach sku media")
		return
	}

	log.Info("SKU media attached", map[string]interface{}{
		"product_id": productID,
		"sku_id":     skuID,
		"media_id":   media.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"media": media,
	})
}
