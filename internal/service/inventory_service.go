package service

import (
	"context"
	"errors"
	"strings"

	"go-warehouse/internal/apperror"
	"go-warehouse/internal/model"
	"go-warehouse/internal/repository"

	"gorm.io/gorm"
)

// Event types published to the Notifier.
const (
	EventProductCreated = "product_created"
	EventProductUpdated = "product_updated"
	EventProductDeleted = "product_deleted"
	EventStockAdjusted  = "stock_adjusted"
)

// Notifier receives change events after they are committed. The websocket
// hub is the production implementation.
type Notifier interface {
	Publish(eventType string, payload interface{})
}

func publish(n Notifier, eventType string, payload interface{}) {
	if n != nil {
		n.Publish(eventType, payload)
	}
}

type InventoryService interface {
	CreateProduct(ctx context.Context, req *model.Product) error
	UpdateProduct(ctx context.Context, id uint, req *model.Product) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	GetProductByCode(ctx context.Context, code string) (*model.Product, error)
	GetProducts(ctx context.Context, search string) ([]model.Product, error)
	GetLowStockProducts(ctx context.Context) ([]model.Product, error)
	GetRecords(ctx context.Context) ([]model.Record, error)
	GetProductRecords(ctx context.Context, productID uint) ([]model.Record, error)
}

type inventoryService struct {
	productRepo repository.ProductRepository
	recordRepo  repository.RecordRepository
	notifier    Notifier
}

func NewInventoryService(pRepo repository.ProductRepository, rRepo repository.RecordRepository, notifier Notifier) InventoryService {
	return &inventoryService{
		productRepo: pRepo,
		recordRepo:  rRepo,
		notifier:    notifier,
	}
}

func normalizeProduct(p *model.Product) {
	p.Code = strings.TrimSpace(p.Code)
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Unit = strings.TrimSpace(p.Unit)
}

func duplicateCode(code string) error {
	return &apperror.ValidationError{Field: "code", Message: "code " + code + " already exists", Err: apperror.ErrDuplicateCode}
}

func (s *inventoryService) CreateProduct(ctx context.Context, req *model.Product) error {
	normalizeProduct(req)
	req.ID = 0
	if err := validationError(req); err != nil {
		return err
	}

	// Friendly pre-check; the unique index still closes the race
	if _, err := s.productRepo.FindByCode(ctx, req.Code); err == nil {
		return duplicateCode(req.Code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return &apperror.QueryError{Op: "check product code", Err: err}
	}

	if err := s.productRepo.Create(ctx, req); err != nil {
		if repository.IsUniqueViolation(err) {
			return duplicateCode(req.Code)
		}
		if repository.IsCheckViolation(err) {
			return &apperror.ValidationError{Message: "value out of range", Err: err}
		}
		return &apperror.QueryError{Op: "insert product", Err: err}
	}

	publish(s.notifier, EventProductCreated, req)
	return nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uint, req *model.Product) (*model.Product, error) {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	normalizeProduct(req)
	req.ID = id
	req.Quantity = existing.Quantity
	if err := validationError(req); err != nil {
		return nil, err
	}

	if req.Code != existing.Code {
		other, err := s.productRepo.FindByCode(ctx, req.Code)
		if err == nil && other.ID != id {
			return nil, duplicateCode(req.Code)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperror.QueryError{Op: "check product code", Err: err}
		}
	}

	if err := s.productRepo.Update(ctx, req); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, duplicateCode(req.Code)
		}
		if repository.IsCheckViolation(err) {
			return nil, &apperror.ValidationError{Message: "value out of range", Err: err}
		}
		return nil, &apperror.QueryError{Op: "update product", Err: err}
	}

	updated, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	publish(s.notifier, EventProductUpdated, updated)
	return updated, nil
}

// DeleteProduct removes the product row. Its records stay behind.
func (s *inventoryService) DeleteProduct(ctx context.Context, id uint) error {
	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return &apperror.QueryError{Op: "delete product", Err: err}
	}
	if !deleted {
		return &apperror.ProductNotFoundError{ID: id}
	}
	publish(s.notifier, EventProductDeleted, map[string]uint{"id": id})
	return nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperror.ProductNotFoundError{ID: id}
		}
		return nil, &apperror.QueryError{Op: "load product", Err: err}
	}
	return product, nil
}

func (s *inventoryService) GetProductByCode(ctx context.Context, code string) (*model.Product, error) {
	product, err := s.productRepo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperror.ProductNotFoundError{Code: code}
		}
		return nil, &apperror.QueryError{Op: "load product", Err: err}
	}
	return product, nil
}

func (s *inventoryService) GetProducts(ctx context.Context, search string) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx, search)
	if err != nil {
		return nil, &apperror.QueryError{Op: "list products", Err: err}
	}
	return products, nil
}

func (s *inventoryService) GetLowStockProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindLowStock(ctx)
	if err != nil {
		return nil, &apperror.QueryError{Op: "list low stock products", Err: err}
	}
	return products, nil
}

func (s *inventoryService) GetRecords(ctx context.Context) ([]model.Record, error) {
	records, err := s.recordRepo.FindAll(ctx)
	if err != nil {
		return nil, &apperror.QueryError{Op: "list records", Err: err}
	}
	return records, nil
}

func (s *inventoryService) GetProductRecords(ctx context.Context, productID uint) ([]model.Record, error) {
	records, err := s.recordRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, &apperror.QueryError{Op: "list records", Err: err}
	}
	return records, nil
}
