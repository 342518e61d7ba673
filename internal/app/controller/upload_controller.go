package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shoplive-catalog/internal/app/service"
	apperrors "github.com/ikkim/shoplive-catalog/internal/errors"
	"github.com/ikkim/shoplive-catalog/internal/middleware"
	"github.com/ikkim/shoplive-catalog/internal/storage"
)

type UploadController struct {
	storage        *storage.S3Storage
	productService service.ProductService
}

func NewUploadController(storage *storage.S3Storage, productService service.ProductService) *UploadController {
	return &UploadController{
		storage:        storage,
		productService: productService,
	}
}

type GeneratePresignedURLRequest struct {
	ProductID   uint   `json:"product_id" binding:"required"`
	SKUID       uint   `json:"sku_id" binding:"required"`
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// GeneratePresignedURL issues a presigned PUT for a SKU image (Admin only).
// The returned key is then attached with POST /products/:id/skus/:skuId/media.
// POST /api/v1/uploads/sku-media
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Invalid presigned URL request")
		return
	}

	if err := ctrl.storage.ValidateContentType(req.ContentType); err != nil {
		log.Warn("Invalid content type", map[string]interface{}{
			"content_type": req.ContentType,
		})
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "이미지 파일만 업로드할 수 있습니다 (JPEG, PNG, GIF, WEBP)")
		return
	}

	product, err := ctrl.productService.GetProductByID(req.ProductID)
	if err != nil {
		respondServiceError(c, err, "presign sku media")
		return
	}
	found := false
	for _, sku := range product.SKUs {
		if sku.ID == req.SKUID {
			found = true
			break
		}
	}
	if !found {
		apperrors.NotFound(c, apperrors.ProductSKUNotFound, "SKU를 찾을 수 없습니다")
		return
	}

	folder := storage.SKUMediaFolder(req.SKUID)
	response, err := ctrl.storage.GeneratePresignedURLWithFolder(c.Request.Context(), req.Filename, req.ContentType, folder)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
			"folder":       folder,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "업로드 URL 생성에 실패했습니다")
		return
	}

	log.Info("Presigned URL generated successfully", map[string]interface{}{
		"product_id": req.ProductID,
		"sku_id":     req.SKUID,
		"key":        response.Key,
	})

	c.JSON(http.StatusOK, response)
}
