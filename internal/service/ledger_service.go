package service

import (
	"context"
	"errors"
	"time"

	"go-warehouse/internal/apperror"
	"go-warehouse/internal/model"
	"go-warehouse/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// StockLedger is the only writer of product quantities after creation. Every
// adjustment changes the quantity and appends a record in one transaction.
type StockLedger interface {
	AdjustStock(ctx context.Context, productID uint, count int, direction model.Direction, remark string) (*Adjustment, error)
	AdjustStockByCode(ctx context.Context, code string, count int, direction model.Direction, remark string) (*Adjustment, error)
}

// Adjustment is the committed outcome of one AdjustStock call.
type Adjustment struct {
	Product model.Product `json:"product"`
	Record  model.Record  `json:"record"`
}

type stockLedger struct {
	productRepo repository.ProductRepository
	recordRepo  repository.RecordRepository
	db          *gorm.DB
	now         func() time.Time
	log         zerolog.Logger
	notifier    Notifier
}

type LedgerOption func(*stockLedger)

// WithClock replaces the wall clock used to stamp records.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *stockLedger) { l.now = now }
}

func WithLedgerLogger(log zerolog.Logger) LedgerOption {
	return func(l *stockLedger) { l.log = log }
}

// WithLedgerNotifier publishes every committed adjustment.
func WithLedgerNotifier(n Notifier) LedgerOption {
	return func(l *stockLedger) { l.notifier = n }
}

func NewStockLedger(pRepo repository.ProductRepository, rRepo repository.RecordRepository, db *gorm.DB, opts ...LedgerOption) StockLedger {
	l := &stockLedger{
		productRepo: pRepo,
		recordRepo:  rRepo,
		db:          db,
		now:         time.Now,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *stockLedger) AdjustStock(ctx context.Context, productID uint, count int, direction model.Direction, remark string) (*Adjustment, error) {
	req := model.StockAdjustment{ProductID: productID, Count: count, Direction: direction, Remark: remark}
	if err := validationError(&req); err != nil {
		return nil, err
	}

	var result Adjustment
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperror.ProductNotFoundError{ID: productID}
			}
			return &apperror.QueryError{Op: "load product", Err: err}
		}

		newQty := product.Quantity
		switch direction {
		case model.Inbound:
			newQty += count
		case model.Outbound:
			if count > product.Quantity {
				return &apperror.InsufficientStockError{ProductID: productID, Current: product.Quantity, Requested: count}
			}
			newQty -= count
		}

		if err := l.productRepo.UpdateQuantity(tx, productID, newQty); err != nil {
			return &apperror.QueryError{Op: "update quantity", Err: err}
		}

		record := model.Record{
			ProductID: productID,
			Direction: direction,
			Count:     count,
			Timestamp: l.now().Unix(),
			Remark:    remark,
		}
		if err := l.recordRepo.Create(tx, &record); err != nil {
			return &apperror.QueryError{Op: "insert record", Err: err}
		}

		product.Quantity = newQty
		record.ProductName = product.Name
		result = Adjustment{Product: product, Record: record}
		return nil
	})
	if err != nil {
		if !apperror.IsKnown(err) {
			// begin or commit failed; the closure never ran or was rolled back
			err = &apperror.TransactionError{Op: "commit", Err: err}
		}
		l.log.Warn().Err(err).Uint("product_id", productID).Stringer("direction", direction).Int("count", count).Msg("stock adjustment rejected")
		return nil, err
	}

	l.log.Info().
		Uint("product_id", productID).
		Stringer("direction", direction).
		Int("count", count).
		Int("quantity", result.Product.Quantity).
		Msg("stock adjusted")
	publish(l.notifier, EventStockAdjusted, result)
	return &result, nil
}

func (l *stockLedger) AdjustStockByCode(ctx context.Context, code string, count int, direction model.Direction, remark string) (*Adjustment, error) {
	product, err := l.productRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperror.ProductNotFoundError{Code: code}
		}
		return nil, &apperror.QueryError{Op: "load product", Err: err}
	}
	return l.AdjustStock(ctx, product.ID, count, direction, remark)
}
