package repository

import (
	"context"
	"time"

	"go-warehouse/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RecordRepository interface {
	Create(tx *gorm.DB, record *model.Record) error
	FindAll(ctx context.Context) ([]model.Record, error)
	FindByProduct(ctx context.Context, productID uint) ([]model.Record, error)
	Count(ctx context.Context) (int64, error)
	Each(ctx context.Context, fn func(*model.Record) error) error
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

// StockMovementData is one day of inbound and outbound totals.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalQuantity  int64           `json:"total_quantity"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
	TotalRecords   int64           `json:"total_records"`
}

const newestFirst = "records.timestamp DESC, records.id DESC"

type recordRepo struct {
	db *gorm.DB
}

func NewRecordRepo(db *gorm.DB) RecordRepository {
	return &recordRepo{db}
}

// Create takes *gorm.DB (tx) so the insert joins the ledger transaction.
func (r *recordRepo) Create(tx *gorm.DB, record *model.Record) error {
	return tx.Create(record).Error
}

func (r *recordRepo) withProductName(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Record{}).
		Select("records.*, COALESCE(products.name, '') AS product_name").
		Joins("LEFT JOIN products ON products.id = records.product_id").
		Order(newestFirst)
}

func (r *recordRepo) FindAll(ctx context.Context) ([]model.Record, error) {
	var records []model.Record
	err := r.withProductName(ctx).Find(&records).Error
	return records, err
}

func (r *recordRepo) FindByProduct(ctx context.Context, productID uint) ([]model.Record, error) {
	var records []model.Record
	err := r.withProductName(ctx).Where("records.product_id = ?", productID).Find(&records).Error
	return records, err
}

func (r *recordRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Record{}).Count(&n).Error
	return n, err
}

// Each streams every record newest first. fn must not query through the same
// handle while the cursor is open.
func (r *recordRepo) Each(ctx context.Context, fn func(*model.Record) error) error {
	rows, err := r.db.WithContext(ctx).Model(&model.Record{}).Order(newestFirst).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rec model.Record
		if err := r.db.ScanRows(rows, &rec); err != nil {
			return err
		}
		if err := fn(&rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *recordRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	results := []StockMovementData{}

	// Aggregate per local calendar day
	rows, err := r.db.WithContext(ctx).Model(&model.Record{}).
		Select(`
			date(timestamp, 'unixepoch', 'localtime') as date,
			COALESCE(SUM(CASE WHEN type = ? THEN count ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = ? THEN count ELSE 0 END), 0) as outbound
		`, model.Inbound, model.Outbound).
		Where("timestamp BETWEEN ? AND ?", startDate.Unix(), endDate.Unix()).
		Group("date(timestamp, 'unixepoch', 'localtime')").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *recordRepo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Where("quantity < min_stock").Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Record{}).Count(&stats.TotalRecords).Error; err != nil {
		return nil, err
	}

	var quantity int64
	var valuation float64
	row := db.Model(&model.Product{}).
		Select("COALESCE(SUM(quantity), 0), COALESCE(SUM(quantity * price), 0)").
		Row()
	if err := row.Scan(&quantity, &valuation); err != nil {
		return nil, err
	}
	stats.TotalQuantity = quantity
	stats.TotalValuation = decimal.NewFromFloat(valuation).Round(2)

	return &stats, nil
}
