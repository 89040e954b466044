package seeders

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/inventory/app/models"
)

func init() {
	Register("products", SeedProducts)
}

func describe(s string) *string { return &s }

var sampleProducts = []models.Product{
	{Name: "Laptop", Amount: 10, Price: 1299.99, Description: describe("14-inch ultrabook")},
	{Name: "Mouse", Amount: 150, Price: 24.5, Description: describe("Wireless optical mouse")},
	{Name: "Keyboard", Amount: 80, Price: 89.0},
	{Name: "Monitor", Amount: 25, Price: 349.99, Description: describe("27-inch 4K display")},
	{Name: "USB Cable", Amount: 500, Price: 4.99},
}

// SeedProducts inserts the sample catalog. It does nothing when products
// already exist.
func SeedProducts(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Product{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		rows := make([]models.Product, len(sampleProducts))
		copy(rows, sampleProducts)
		return tx.Create(&rows).Error
	})
}
