package repository

import (
	"context"
	"time"

	"tobaku-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockLogFilter struct {
	ProductID     *uuid.UUID
	TransactionID *uuid.UUID
	Type          model.StockType
	From          time.Time // inclusive, zero = unbounded
	To            time.Time // inclusive, zero = unbounded
	Limit         int       // <= 0 = no limit
}

// StockLogRepository is append-only: there is no update or delete.
type StockLogRepository interface {
	Create(ctx context.Context, entry *model.StockLog) error
	FindAll(ctx context.Context, filter StockLogFilter) ([]model.StockLog, error)
}

type stockLogRepo struct {
	db *gorm.DB
}

func NewStockLogRepo(db *gorm.DB) StockLogRepository {
	return &stockLogRepo{db}
}

func (r *stockLogRepo) Create(ctx context.Context, entry *model.StockLog) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}

// FindAll returns entries newest first.
func (r *stockLogRepo) FindAll(ctx context.Context, filter StockLogFilter) ([]model.StockLog, error) {
	var logs []model.StockLog
	q := r.db.WithContext(ctx).Model(&model.StockLog{})

	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.TransactionID != nil {
		q = q.Where("transaction_id = ?", *filter.TransactionID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at <= ?", filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	err := q.Order("created_at DESC").Find(&logs).Error
	return logs, translate(err)
}
