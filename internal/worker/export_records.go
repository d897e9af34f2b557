package worker

import (
	"context"
	"fmt"

	"go-warehouse/internal/apperror"
	"go-warehouse/internal/model"
	"go-warehouse/internal/repository"

	"gorm.io/gorm"
)

// ExportRecords writes the movement history, newest first.
type ExportRecords struct {
	path string
}

func NewExportRecords(path string) *ExportRecords {
	return &ExportRecords{path: path}
}

func (t *ExportRecords) Kind() Kind   { return KindExportRecords }
func (t *ExportRecords) Path() string { return t.path }

func (t *ExportRecords) Run(ctx context.Context, db *gorm.DB, report ProgressFunc) Result {
	n, err := t.export(ctx, db, report)
	if err != nil {
		return failure(err)
	}
	return Result{Success: true, Message: fmt.Sprintf("exported %d stock records", n), Rows: n}
}

func (t *ExportRecords) export(ctx context.Context, db *gorm.DB, report ProgressFunc) (int, error) {
	records := repository.NewRecordRepo(db)

	count, err := records.Count(ctx)
	if err != nil {
		return 0, &apperror.QueryError{Op: "count records", Err: err}
	}
	total := int(count)

	out, err := createCSV(t.path)
	if err != nil {
		return 0, err
	}
	if err := out.writeHeader(recordsHeader); err != nil {
		_ = out.Close()
		return 0, err
	}

	current := 0
	err = records.Each(ctx, func(r *model.Record) error {
		if err := out.write([]string{
			itoa(r.ID),
			itoa(r.ProductID),
			r.Direction.Label(),
			itoa(r.Count),
			r.Time().Format(recordTimeLayout),
			r.Remark,
		}); err != nil {
			return err
		}
		current++
		if current%exportProgressStep == 0 {
			report(Progress{Current: current, Total: max(total, current)})
		}
		return nil
	})
	if err != nil {
		_ = out.Close()
		if apperror.IsKnown(err) {
			return current, err
		}
		return current, &apperror.QueryError{Op: "read records", Err: err}
	}

	if err := out.Close(); err != nil {
		return current, err
	}
	report(Progress{Current: current, Total: current})
	return current, nil
}
