package repository

import (
	"context"
	"strings"

	"go-warehouse/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context, search string) ([]model.Product, error)
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	FindLowStock(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uint) (bool, error)
	UpdateQuantity(tx *gorm.DB, id uint, quantity int) error
	Count(ctx context.Context) (int64, error)
	Each(ctx context.Context, fn func(*model.Product) error) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindAll lists products newest first. A non-empty search keeps only names
// containing it, ignoring case.
func (r *productRepo) FindAll(ctx context.Context, search string) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).Order("id DESC")
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(search))+"%")
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "code = ?", code).Error
	return &product, err
}

func (r *productRepo) FindLowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where("quantity < min_stock").Order("id ASC").Find(&products).Error
	return products, err
}

// Update writes the editable columns only. Quantity is owned by the ledger.
func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", product.ID).
		Select("code", "name", "category", "unit", "price", "min_stock").
		Updates(map[string]interface{}{
			"code":      product.Code,
			"name":      product.Name,
			"category":  product.Category,
			"unit":      product.Unit,
			"price":     product.Price,
			"min_stock": product.MinStock,
		}).Error
}

func (r *productRepo) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	return res.RowsAffected > 0, res.Error
}

// UpdateQuantity takes *gorm.DB (tx) so it runs inside the caller's transaction.
func (r *productRepo) UpdateQuantity(tx *gorm.DB, id uint, quantity int) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error
	return n, err
}

// Each streams every product in id order. fn must not query through the same
// handle while the cursor is open.
func (r *productRepo) Each(ctx context.Context, fn func(*model.Product) error) error {
	rows, err := r.db.WithContext(ctx).Model(&model.Product{}).Order("id ASC").Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p model.Product
		if err := r.db.ScanRows(rows, &p); err != nil {
			return err
		}
		if err := fn(&p); err != nil {
			return err
		}
	}
	return rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
