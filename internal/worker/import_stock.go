package worker

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go-warehouse/internal/apperror"
	"go-warehouse/internal/model"
	"go-warehouse/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// minImportFields is the shortest row accepted: id through quantity.
const minImportFields = 7

// ImportStock inserts products from a CSV file in a single transaction.
// Rows that fail to insert are counted and skipped; the rest still commit.
type ImportStock struct {
	path string
}

func NewImportStock(path string) *ImportStock {
	return &ImportStock{path: path}
}

func (t *ImportStock) Kind() Kind   { return KindImportStock }
func (t *ImportStock) Path() string { return t.path }

type importStats struct {
	inserted int
	skipped  int
	failed   int
}

func (t *ImportStock) Run(ctx context.Context, db *gorm.DB, report ProgressFunc) Result {
	stats, err := t.load(ctx, db, report)
	if err != nil {
		return failure(err)
	}

	msg := fmt.Sprintf("imported %d products", stats.inserted)
	if stats.skipped > 0 || stats.failed > 0 {
		msg += fmt.Sprintf(" (%d malformed rows skipped, %d rows rejected)", stats.skipped, stats.failed)
	}
	return Result{Success: true, Message: msg, Rows: stats.inserted, Skipped: stats.skipped, Failed: stats.failed}
}

func (t *ImportStock) load(ctx context.Context, db *gorm.DB, report ProgressFunc) (importStats, error) {
	var stats importStats
	log := zerolog.Ctx(ctx)

	r, closer, err := openCSV(t.path)
	if err != nil {
		return stats, err
	}
	defer closer.Close()

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return stats, &apperror.TransactionError{Op: "begin", Err: tx.Error}
	}
	products := repository.NewProductRepo(tx)

	for {
		fields, line, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			tx.Rollback()
			return importStats{}, err
		}

		if blank(fields) {
			continue
		}
		if line == 1 && looksLikeHeader(fields) {
			continue
		}
		if len(fields) < minImportFields {
			stats.skipped++
			log.Debug().Int("line", line).Int("fields", len(fields)).Msg("short import row skipped")
			continue
		}

		p := productFromRow(fields)
		if err := products.Create(ctx, p); err != nil {
			stats.failed++
			log.Debug().Err(err).Int("line", line).Str("code", p.Code).Str("reason", rejectReason(err)).Msg("import row rejected")
			continue
		}
		stats.inserted++
		if stats.inserted%importProgressStep == 0 {
			report(Progress{Current: stats.inserted, Total: 0})
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return importStats{}, &apperror.TransactionError{Op: "commit", Err: fmt.Errorf("import rolled back: %w", err)}
	}
	return stats, nil
}

func looksLikeHeader(fields []string) bool {
	line := strings.Join(fields, ",")
	return strings.Contains(line, "ID") || strings.Contains(line, "编号")
}

// productFromRow maps columns 2..8 (code through min stock); column 1, the
// exported id, is ignored so the database assigns fresh ids.
func productFromRow(fields []string) *model.Product {
	p := &model.Product{
		Code:     strings.TrimSpace(fields[1]),
		Name:     strings.TrimSpace(fields[2]),
		Category: strings.TrimSpace(fields[3]),
		Unit:     strings.TrimSpace(fields[4]),
		Price:    parseDecimal(fields[5]),
		Quantity: parseInt(fields[6]),
	}
	if len(fields) > 7 {
		p.MinStock = parseInt(fields[7])
	}
	return p
}

func rejectReason(err error) string {
	switch {
	case repository.IsUniqueViolation(err):
		return "duplicate code"
	case repository.IsCheckViolation(err):
		return "value out of range"
	}
	return "insert failed"
}
