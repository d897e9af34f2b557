package worker

import (
	"context"
	"fmt"

	"go-warehouse/internal/apperror"
	"go-warehouse/internal/model"
	"go-warehouse/internal/repository"

	"gorm.io/gorm"
)

// ExportStock writes every product to a CSV file in id order.
type ExportStock struct {
	path string
}

func NewExportStock(path string) *ExportStock {
	return &ExportStock{path: path}
}

func (t *ExportStock) Kind() Kind   { return KindExportStock }
func (t *ExportStock) Path() string { return t.path }

func (t *ExportStock) Run(ctx context.Context, db *gorm.DB, report ProgressFunc) Result {
	n, err := t.export(ctx, db, report)
	if err != nil {
		return failure(err)
	}
	return Result{Success: true, Message: fmt.Sprintf("exported %d products", n), Rows: n}
}

func (t *ExportStock) export(ctx context.Context, db *gorm.DB, report ProgressFunc) (int, error) {
	products := repository.NewProductRepo(db)

	count, err := products.Count(ctx)
	if err != nil {
		return 0, &apperror.QueryError{Op: "count products", Err: err}
	}
	total := int(count)

	out, err := createCSV(t.path)
	if err != nil {
		return 0, err
	}
	if err := out.writeHeader(stockHeader); err != nil {
		_ = out.Close()
		return 0, err
	}

	current := 0
	err = products.Each(ctx, func(p *model.Product) error {
		if err := out.write([]string{
			itoa(p.ID),
			p.Code,
			p.Name,
			p.Category,
			p.Unit,
			p.Price.String(),
			itoa(p.Quantity),
			itoa(p.MinStock),
		}); err != nil {
			return err
		}
		current++
		if current%exportProgressStep == 0 || current == total {
			report(Progress{Current: current, Total: total})
		}
		return nil
	})
	if err != nil {
		_ = out.Close()
		if apperror.IsKnown(err) {
			return current, err
		}
		return current, &apperror.QueryError{Op: "read products", Err: err}
	}

	if err := out.Close(); err != nil {
		return current, err
	}
	return current, nil
}
