package db

import (
	"fmt"

	"github.com/ikkim/shoplive-catalog/internal/app/model"
	"github.com/ikkim/shoplive-catalog/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the catalog service, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.Product{},
		&model.SKU{},
		&model.SKUMedia{},
		&model.VariantDimension{},
		&model.VariantValue{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	return migrate(DB)
}

func migrate(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", logger.Fields{
		"models_count": len(models),
	})
	return nil
}
