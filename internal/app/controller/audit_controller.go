package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shoplive-catalog/internal/app/service"
	"github.com/ikkim/shoplive-catalog/internal/middleware"
)

type AuditController struct {
	auditService service.CatalogAuditService
}

func NewAuditController(auditService service.CatalogAuditService) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// AuditProduct reports data-quality warnings of one product catalog
// GET /api/v1/products/:id/audit
func (ctrl *AuditController) AuditProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	report, err := ctrl.auditService.AuditProduct(id)
	if err != nil {
		respondServiceError(c, err, "audit product")
		return
	}

	if !report.Clean() {
		log.Info("Catalog audit found warnings", map[string]interface{}{
			"product_id": id,
			"warnings":   report.WarningCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"report": report,
		"clean":  report.Clean(),
	})
}
