package service

import (
	"time"

	"github.com/ikkim/shoplive-catalog/internal/app/model"
	"github.com/ikkim/shoplive-catalog/internal/app/repository"
	"github.com/ikkim/shoplive-catalog/internal/variant"
	"github.com/ikkim/shoplive-catalog/pkg/logger"
)

// AuditReport summarizes the data-quality warnings of one product's variant
// catalog.
type AuditReport struct {
	ProductID       uint                        `json:"product_id"`
	Dimensions      int                         `json:"dimensions"`
	SKUs            int                         `json:"skus"`
	OutOfStockSKUs  int                         `json:"out_of_stock_skus"`
	// UnreachableSKUs carry no value in at least one dimension, so no
	// complete selection resolves to them.
	UnreachableSKUs int                         `json:"unreachable_skus"`
	WarningCount    int                         `json:"warning_count"`
	ByKind          map[variant.WarningKind]int `json:"by_kind"`
	Warnings        variant.Warnings            `json:"warnings"`
	AuditedAt       time.Time                   `json:"audited_at"`
}

func (r AuditReport) Clean() bool {
	return r.WarningCount == 0
}

type CatalogAuditService interface {
	AuditProduct(productID uint) (*AuditReport, error)
	// AuditAll audits every product. A product that fails to load is logged
	// and skipped.
	AuditAll() ([]AuditReport, error)
}

type catalogAuditService struct {
	productRepo repository.ProductRepository
	resolver    model.MediaURLResolver
	now         func() time.Time
}

func NewCatalogAuditService(productRepo repository.ProductRepository, resolver model.MediaURLResolver) CatalogAuditService {
	return &catalogAuditService{
		productRepo: productRepo,
		resolver:    resolver,
		now:         time.Now,
	}
}

func (s *catalogAuditService) AuditProduct(productID uint) (*AuditReport, error) {
	x, warnings, err := BuildProductIndex(s.productRepo, s.resolver, productID)
	if err != nil {
		return nil, err
	}

	report := &AuditReport{
		ProductID:    productID,
		Dimensions:   x.DimensionCount(),
		SKUs:         x.SKUCount(),
		WarningCount: len(warnings),
		ByKind:       warnings.ByKind(),
		Warnings:     warnings,
		AuditedAt:    s.now(),
	}
	if report.Warnings == nil {
		report.Warnings = variant.Warnings{}
	}
	dims := x.Dimensions()
	for _, sku := range x.SKUs() {
		if !sku.InStock {
			report.OutOfStockSKUs++
		}
		for _, dim := range dims {
			if _, ok := x.ValueOfSKU(dim.ID, sku.ID); !ok {
				report.UnreachableSKUs++
				break
			}
		}
	}
	return report, nil
}

func (s *catalogAuditService) AuditAll() ([]AuditReport, error) {
	ids, err := s.productRepo.FindIDs()
	if err != nil {
		return nil, err
	}

	reports := make([]AuditReport, 0, len(ids))
	for _, id := range ids {
		report, err := s.AuditProduct(id)
		if err != nil {
			logger.Error("Failed to audit product catalog", err, logger.Fields{
				"product_id": id,
			})
			continue
		}
		reports = append(reports, *report)
	}
	return reports, nil
}
