package repository

import (
	"go-warehouse/internal/model"

	"gorm.io/gorm"
)

// Migrate creates the products and records tables when they are missing.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Product{}, &model.Record{})
}
