package scheduler

import (
	"github.com/ikkim/shoplive-catalog/internal/app/service"
	"github.com/ikkim/shoplive-catalog/pkg/logger"
	"github.com/robfig/cron/v3"
)

const DefaultAuditSchedule = "0 4 * * *"

// CatalogAuditScheduler 옵션/SKU 데이터 품질 점검 스케줄러
type CatalogAuditScheduler struct {
	cron         *cron.Cron
	schedule     string
	auditService service.CatalogAuditService
}

// NewCatalogAuditScheduler 카탈로그 점검 스케줄러 생성
func NewCatalogAuditScheduler(auditService service.CatalogAuditService, schedule string) *CatalogAuditScheduler {
	if schedule == "" {
		schedule = DefaultAuditSchedule
	}
	return &CatalogAuditScheduler{
		cron:         cron.New(),
		schedule:     schedule,
		auditService: auditService,
	}
}

// Start 스케줄러 시작
func (s *CatalogAuditScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce() }); err != nil {
		logger.Error("Failed to add cron job for catalog audit", err, logger.Fields{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Catalog audit scheduler started", logger.Fields{
		"schedule": s.schedule,
	})
	return nil
}

// RunOnce audits every product and logs the ones with warnings. It returns
// how many products had warnings.
func (s *CatalogAuditScheduler) RunOnce() int {
	logger.Info("Starting scheduled catalog audit")

	reports, err := s.auditService.AuditAll()
	if err != nil {
		logger.Error("Failed to run catalog audit", err)
		return 0
	}

	flagged := 0
	for _, report := range reports {
		if report.Clean() {
			continue
		}
		flagged++
		logger.Warn("Product catalog has data-quality warnings", logger.Fields{
			"product_id": report.ProductID,
			"warnings":   report.WarningCount,
			"by_kind":    report.ByKind,
		})
	}

	logger.Info("Catalog audit finished", logger.Fields{
		"products": len(reports),
		"flagged":  flagged,
	})
	return flagged
}

// Stop 스케줄러 중지
func (s *CatalogAuditScheduler) Stop() {
	logger.Info("Stopping catalog audit scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Catalog audit scheduler stopped")
}
