package controller

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/ikkim/shoplive-catalog/internal/app/service"
	apperrors "github.com/ikkim/shoplive-catalog/internal/errors"
	"github.com/ikkim/shoplive-catalog/internal/middleware"
	"github.com/ikkim/shoplive-catalog/internal/variant"
)

// parseIDParam reads a positive numeric path parameter. On failure the 400
// response is already written.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID parameter", map[string]interface{}{
			"param": name,
			"value": raw,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 ID입니다")
		return 0, false
	}
	return uint(id), true
}

// parseSelected parses a comma separated list of value IDs ("3,7").
func parseSelected(raw string) ([]variant.ValueID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]variant.ValueID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value id %q", part)
		}
		ids = append(ids, variant.ValueID(id))
	}
	return ids, nil
}

func parseQueryInt(c *gin.Context, key string, def, max int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	if max > 0 && n > max {
		n = max
	}
	return n, nil
}

// respondBindError writes a 400 for a failed ShouldBindJSON. Validator
// failures list the offending fields.
func respondBindError(c *gin.Context, err error, message string) {
	middleware.GetLoggerFromContext(c).Warn(message, map[string]interface{}{
		"error": err.Error(),
	})

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		apperrors.RespondWithValidationError(c, validationFields(verrs))
		return
	}
	apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력값이 올바르지 않습니다")
}

// validationFields keys each failure by its path below the request struct,
// e.g. "SKUs[0].Code": "required".
func validationFields(verrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fe.Namespace()
		if _, rest, ok := strings.Cut(key, "."); ok {
			key = rest
		}
		fields[key] = fe.Tag()
	}
	return fields
}

// respondServiceError maps service sentinels onto the error envelope.
// Anything unrecognized goes through ParseError.
func respondServiceError(c *gin.Context, err error, context string) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "상품을 찾을 수 없습니다")
	case errors.Is(err, service.ErrSKUNotFound):
		apperrors.NotFound(c, apperrors.ProductSKUNotFound, "SKU를 찾을 수 없습니다")
	case errors.Is(err, service.ErrInvalidCatalog):
		log.Warn("Invalid product catalog", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ProductInvalidCatalog, "상품 옵션 구성이 올바르지 않습니다")
	case errors.Is(err, service.ErrInvalidStock):
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "재고 수량은 0 이상이어야 합니다")
	case errors.Is(err, service.ErrSessionNotFound):
		apperrors.NotFound(c, apperrors.SessionNotFound, "옵션 선택 세션이 만료되었거나 존재하지 않습니다")
	case errors.Is(err, service.ErrSessionConflict):
		apperrors.Conflict(c, apperrors.SessionConflict, "다른 요청과 충돌했습니다. 다시 시도해주세요")
	default:
		info := apperrors.ParseError(err, context)
		switch info.Code {
		case apperrors.ProductSKUCodeExists, apperrors.ResourceAlreadyExists, apperrors.ResourceConflict:
			apperrors.Conflict(c, info.Code, info.Message)
		case apperrors.ResourceNotFound:
			apperrors.NotFound(c, info.Code, info.Message)
		case apperrors.ValidationRequired:
			apperrors.BadRequest(c, info.Code, info.Message)
		case apperrors.InternalExternalAPI:
			log.Error("Dependency unavailable", err, map[string]interface{}{
				"context": context,
			})
			apperrors.ServiceUnavailable(c, info.Message)
		default:
			log.Error("Request failed", err, map[string]interface{}{
				"context": context,
			})
			apperrors.InternalError(c, info.Message)
		}
	}
}
