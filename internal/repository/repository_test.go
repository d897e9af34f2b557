package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-warehouse/internal/model"
	"go-warehouse/internal/repository"
	"go-warehouse/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProduct(t *testing.T, repo repository.ProductRepository, code, name string, qty, minStock int) *model.Product {
	t.Helper()
	p := &model.Product{Code: code, Name: name, Unit: "pcs", Price: decimal.RequireFromString("9.99"), Quantity: qty, MinStock: minStock}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestProductRepo_CreateAndFind(t *testing.T) {
	db, _ := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)
	ctx := context.Background()

	p := seedProduct(t, repo, "A1", "Widget", 3, 0)
	assert.NotZero(t, p.ID)

	byID, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", byID.Name)
	assert.Equal(t, "9.99", byID.Price.String())

	byCode, err := repo.FindByCode(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byCode.ID)

	_, err = repo.FindByCode(ctx, "nope")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestProductRepo_UniqueCodeIsEnforcedByStorage(t *testing.T) {
	db, _ := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)

	seedProduct(t, repo, "A1", "Widget", 0, 0)
	err := repo.Create(context.Background(), &model.Product{Code: "A1", Name: "Other"})
	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolation(err))
}

func TestProductRepo_CheckConstraintRejectsNegativeQuantity(t *testing.T) {
	db, _ := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)

	err := repo.Create(context.Background(), &model.Product{Code: "N1", Name: "Neg", Quantity: -1})
	require.Error(t, err)
	assert.True(t, repository.IsCheckViolation(err))
	assert.False(t, repository.IsUniqueViolation(err))
}

func TestProductRepo_SearchIsCaseInsensitive(t *testing.T) {
	db, _ := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)
	ctx := context.Background()

	seedProduct(t, repo, "A1", "Blue Widget", 1, 0)
	seedProduct(t, repo, "A2", "Gadget", 1, 0)
	seedProduct(t, repo, "A3", "WIDGET 100%", 1, 0)

	found, err := repo.FindAll(ctx, "widget")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "A3", found[0].Code, "newest first")

	found, err = repo.FindAll(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, found, 1)

	all, err := repo.FindAll(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProductRepo_UpdateLeavesQuantityAlone(t *testing.T) {
	db, _ := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)
	ctx := context.Background()

	p := seedProduct(t, repo, "A1", "Widget", 7, 0)
	edit := &model.Product{ID: p.ID, Code: "A1", Name: "Widget v2", Price: decimal.NewFromInt(12), Quantity: 999, MinStock: 2}
	require.NoError(t, repo.Update(ctx, edit))

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", got.Name)
	assert.Equal(t, "12", got.Price.String())
	assert.Equal(t, 7, got.Quantity)
	assert.Equal(t, 2, got.MinStock)
}

func TestProductRepo_LowStockAndEach(t *testing.T) {
	db, _ := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)
	ctx := context.Background()

	seedProduct(t, repo, "A1", "Low", 1, 5)
	seedProduct(t, repo, "A2", "Fine", 5, 5)

	low, err := repo.FindLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "A1", low[0].Code)

	var codes []string
	require.NoError(t, repo.Each(ctx, func(p *model.Product) error {
		codes = append(codes, p.Code)
		return nil
	}))
	assert.Equal(t, []string{"A1", "A2"}, codes)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestRecordRepo_JoinKeepsOrphans(t *testing.T) {
	db, _ := testutil.NewDB(t)
	products := repository.NewProductRepo(db)
	records := repository.NewRecordRepo(db)
	ctx := context.Background()

	kept := seedProduct(t, products, "A1", "Widget", 0, 0)
	gone := seedProduct(t, products, "B1", "Gizmo", 0, 0)

	require.NoError(t, records.Create(db, &model.Record{ProductID: kept.ID, Direction: model.Inbound, Count: 3, Timestamp: 100}))
	require.NoError(t, records.Create(db, &model.Record{ProductID: gone.ID, Direction: model.Inbound, Count: 1, Timestamp: 200}))
	deleted, err := products.Delete(ctx, gone.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	all, err := records.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, gone.ID, all[0].ProductID)
	assert.Empty(t, all[0].ProductName)
	assert.Equal(t, "Widget", all[1].ProductName)

	forKept, err := records.FindByProduct(ctx, kept.ID)
	require.NoError(t, err)
	require.Len(t, forKept, 1)
	assert.Equal(t, 3, forKept[0].Count)
}

func TestRecordRepo_EachNewestFirst(t *testing.T) {
	db, _ := testutil.NewDB(t)
	records := repository.NewRecordRepo(db)

	for i, ts := range []int64{300, 100, 300, 200} {
		require.NoError(t, records.Create(db, &model.Record{ProductID: uint(i + 1), Direction: model.Outbound, Count: 1, Timestamp: ts}))
	}

	var ids []uint
	require.NoError(t, records.Each(context.Background(), func(r *model.Record) error {
		ids = append(ids, r.ID)
		return nil
	}))
	assert.Equal(t, []uint{3, 1, 4, 2}, ids)
}

func TestRecordRepo_StockMovementAndStats(t *testing.T) {
	db, _ := testutil.NewDB(t)
	products := repository.NewProductRepo(db)
	records := repository.NewRecordRepo(db)
	ctx := context.Background()

	p := seedProduct(t, products, "A1", "Widget", 4, 5)
	seedProduct(t, products, "A2", "Gadget", 10, 1)

	day := time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)
	require.NoError(t, records.Create(db, &model.Record{ProductID: p.ID, Direction: model.Inbound, Count: 6, Timestamp: day.Unix()}))
	require.NoError(t, records.Create(db, &model.Record{ProductID: p.ID, Direction: model.Outbound, Count: 2, Timestamp: day.Add(time.Hour).Unix()}))

	moves, err := records.GetStockMovement(ctx, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, movement("2026-03-14", 6, 2), moves[0])

	stats, err := records.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.EqualValues(t, 1, stats.LowStockCount)
	assert.EqualValues(t, 14, stats.TotalQuantity)
	assert.EqualValues(t, 2, stats.TotalRecords)
	assert.Equal(t, "139.86", stats.TotalValuation.String())
}

func movement(date string, in, out int) repository.StockMovementData {
	return repository.StockMovementData{Date: date, Inbound: in, Outbound: out}
}
