package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/inventory/app/models"
)

// ErrProductNotFound is returned when no product has the requested id.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository is the catalog store. Every method runs in its own
// transaction on a request-scoped session.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// List returns every product ordered by id.
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := r.tx(ctx, func(tx *gorm.DB) error {
		return tx.Order("id").Find(&products).Error
	})
	return products, err
}

// Find returns the product with id.
func (r *ProductRepository) Find(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.tx(ctx, func(tx *gorm.DB) error {
		return first(tx, id, &p)
	})
	return p, err
}

// Create stores p with a fresh id and favorite=false.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	p.ID = 0
	p.Favorite = false
	return r.tx(ctx, func(tx *gorm.DB) error {
		return tx.Create(p).Error
	})
}

// CreateMany inserts products in one transaction, keeping their ids when set.
func (r *ProductRepository) CreateMany(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&products, 100).Error; err != nil {
			return err
		}
		return syncIDSequence(tx).Error
	})
}

// syncIDSequence moves the postgres id sequence past rows inserted with
// explicit ids. MySQL, SQL Server and SQLite advance their counters on
// their own.
func syncIDSequence(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() != "postgres" {
		return tx
	}
	return tx.Exec("SELECT setval(pg_get_serial_sequence('products', 'id'), (SELECT COALESCE(MAX(id), 1) FROM products))")
}

// Update applies patch to the product with id. The write is conditioned
// on the id so a row deleted after the read is reported as not found
// instead of being inserted again.
func (r *ProductRepository) Update(ctx context.Context, id uint, patch models.ProductPatch) (models.Product, error) {
	var p models.Product
	err := r.tx(ctx, func(tx *gorm.DB) error {
		if err := first(tx, id, &p); err != nil {
			return err
		}
		if patch.IsEmpty() {
			return nil
		}
		patch.Apply(&p)
		res := tx.Model(&models.Product{}).Where("id = ?", id).Select("*").Updates(&p)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// MySQL reports unchanged rows as unaffected.
			var n int64
			if err := tx.Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrProductNotFound
			}
		}
		return nil
	})
	return p, err
}

// Delete removes the product with id in a single statement.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return r.tx(ctx, func(tx *gorm.DB) error {
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
}

// ToggleFavorite flips favorite with a single conditional UPDATE, so two
// concurrent toggles never read the same old value, then reloads the row.
func (r *ProductRepository) ToggleFavorite(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.tx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ?", id).
			Update("favorite", gorm.Expr("CASE WHEN favorite = ? THEN ? ELSE ? END", true, false, true))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return first(tx, id, &p)
	})
	return p, err
}

// Count returns the number of stored products.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}

func first(tx *gorm.DB, id uint, dst *models.Product) error {
	err := tx.First(dst, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProductNotFound
	}
	return err
}
