package service

import (
	"context"
	"time"

	"tobaku-pos/internal/model"
	"tobaku-pos/internal/report"
	"tobaku-pos/internal/repository"
)

// ReportService loads the rows the report package needs. It never writes.
type ReportService interface {
	Summary(ctx context.Context, r report.Range, topN int) (*report.Summary, error)
	LowStock(ctx context.Context) ([]model.Product, error)
	GetDashboardStats(ctx context.Context) (*report.DashboardStats, error)
	GetStockMovement(ctx context.Context, days int) ([]report.StockMovementData, error)
}

type reportService struct {
	store repository.Store
	loc   *time.Location
	now   func() time.Time
}

func NewReportService(store repository.Store, loc *time.Location) ReportService {
	return NewReportServiceWithClock(store, loc, time.Now)
}

func NewReportServiceWithClock(store repository.Store, loc *time.Location, now func() time.Time) ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &reportService{store: store, loc: loc, now: now}
}

func (s *reportService) Summary(ctx context.Context, r report.Range, topN int) (*report.Summary, error) {
	period, err := report.Window(r, s.now(), s.loc)
	if err != nil {
		return nil, validationError("range must be today, week or month")
	}

	txs, err := s.store.Transactions().FindAll(ctx, repository.TransactionFilter{From: period.Start, To: period.End})
	if err != nil {
		return nil, fromRepo(err, "transaction")
	}
	products, err := s.store.Products().FindAll(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, fromRepo(err, "product")
	}

	summary := report.Summarize(txs, products, period, topN)
	return &summary, nil
}

func (s *reportService) LowStock(ctx context.Context) ([]model.Product, error) {
	products, err := s.store.Products().FindAll(ctx, repository.ProductFilter{LowStockOnly: true})
	if err != nil {
		return nil, fromRepo(err, "product")
	}
	return report.LowStock(products), nil
}

func (s *reportService) GetDashboardStats(ctx context.Context) (*report.DashboardStats, error) {
	products, err := s.store.Products().FindAll(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, fromRepo(err, "product")
	}
	stats := report.Stats(products)
	return &stats, nil
}

func (s *reportService) GetStockMovement(ctx context.Context, days int) ([]report.StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	now := s.now()
	window := report.MovementWindow(now, days, s.loc)

	logs, err := s.store.StockLogs().FindAll(ctx, repository.StockLogFilter{From: window.Start, To: window.End})
	if err != nil {
		return nil, fromRepo(err, "stock log")
	}
	return report.StockMovement(logs, now, days, s.loc), nil
}
