package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shoplive-catalog/internal/app/service"
	apperrors "github.com/ikkim/shoplive-catalog/internal/errors"
	"github.com/ikkim/shoplive-catalog/internal/middleware"
	"github.com/ikkim/shoplive-catalog/internal/variant"
)

type VariantController struct {
	variantService service.VariantService
}

func NewVariantController(variantService service.VariantService) *VariantController {
	return &VariantController{
		variantService: variantService,
	}
}

type ChooseRequest struct {
	ValueID        *int64 `json:"value_id" binding:"required"`
	DimensionIndex *int   `json:"dimension_index" binding:"required,gte=0"`
}

// GetView derives the variant view for a selection given in the query
// GET /api/v1/products/:id/variants?selected=1,2
func (ctrl *VariantController) GetView(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	selected, err := parseSelected(c.Query("selected"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "선택한 옵션 값이 올바르지 않습니다")
		return
	}

	view, err := ctrl.variantService.GetView(productID, selected)
	if err != nil {
		respondServiceError(c, err, "get product variants")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": productID,
		"view":       view,
	})
}

// StartSession opens a server-side selection session
// POST /api/v1/products/:id/variants/sessions
func (ctrl *VariantController) StartSession(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	session, err := ctrl.variantService.StartSession(c.Request.Context(), productID)
	if err != nil {
		respondServiceError(c, err, "start variant session")
		return
	}

	log.Info("Variant session started", map[string]interface{}{
		"product_id": productID,
		"session_id": session.SessionID,
	})

	c.JSON(http.StatusCreated, session)
}

// GetSession GET /api/v1/variants/sessions/:sessionId
func (ctrl *VariantController) GetSession(c *gin.Context) {
	session, err := ctrl.variantService.GetSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respondServiceError(c, err, "get variant session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// Choose applies one choice to the session
// POST /api/v1/variants/sessions/:sessionId/choose
func (ctrl *VariantController) Choose(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ChooseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Invalid choose request")
		return
	}

	session, err := ctrl.variantService.Choose(c.Request.Context(), c.Param("sessionId"), variant.Choice{
		ValueID:        variant.ValueID(*req.ValueID),
		DimensionIndex: *req.DimensionIndex,
	})
	if err != nil {
		respondServiceError(c, err, "choose variant value")
		return
	}

	log.Debug("Variant chosen", map[string]interface{}{
		"session_id": session.SessionID,
		"value_id":   *req.ValueID,
		"changed":    session.Changed,
	})
	c.JSON(http.StatusOK, session)
}

// ResetSession returns the session to the default selection
// POST /api/v1/variants/sessions/:sessionId/reset
func (ctrl *VariantController) ResetSession(c *gin.Context) {
	session, err := ctrl.variantService.ResetSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respondServiceError(c, err, "reset variant session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// EndSession DELETE /api/v1/variants/sessions/:sessionId
func (ctrl *VariantController) EndSession(c *gin.Context) {
	if err := ctrl.variantService.EndSession(c.Request.Context(), c.Param("sessionId")); err != nil {
		respondServiceError(c, err, "end variant session")
		return
	}
	c.Status(http.StatusNoContent)
}
