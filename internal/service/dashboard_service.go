package service

import (
	"context"
	"time"

	"go-warehouse/internal/apperror"
	"go-warehouse/internal/repository"
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
}

type dashboardService struct {
	recordRepo repository.RecordRepository
	now        func() time.Time
}

func NewDashboardService(rRepo repository.RecordRepository) DashboardService {
	return &dashboardService{recordRepo: rRepo, now: time.Now}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.recordRepo.GetStockMovement(ctx, startDate, endDate)
	if err != nil {
		return nil, &apperror.QueryError{Op: "aggregate stock movement", Err: err}
	}
	return data, nil
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := s.recordRepo.GetDashboardStats(ctx)
	if err != nil {
		return nil, &apperror.QueryError{Op: "load dashboard stats", Err: err}
	}
	return stats, nil
}
