package repository

import (
	"context"
	"time"

	"tobaku-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionFilter struct {
	From      time.Time // inclusive, zero = unbounded
	To        time.Time // inclusive, zero = unbounded
	CashierID string
	Limit     int // <= 0 = no limit
}

// TransactionRepository is append-only. Header and items are written
// separately so both land inside the caller's unit of work.
type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	CreateItems(ctx context.Context, items []model.TransactionItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*model.Transaction, error)
	FindAll(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

// Create inserts the header only; items go through CreateItems.
func (r *transactionRepo) Create(ctx context.Context, tx *model.Transaction) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(tx).Error)
}

func (r *transactionRepo) CreateItems(ctx context.Context, items []model.TransactionItem) error {
	if len(items) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(&items).Error)
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.withItems(ctx).First(&transaction, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &transaction, nil
}

func (r *transactionRepo) FindByIdempotencyKey(ctx context.Context, key string) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.withItems(ctx).First(&transaction, "idempotency_key = ?", key).Error
	if err != nil {
		return nil, translate(err)
	}
	return &transaction, nil
}

// FindAll returns transactions newest first with their items.
func (r *transactionRepo) FindAll(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error) {
	var transactions []model.Transaction
	q := r.withItems(ctx)

	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at <= ?", filter.To)
	}
	if filter.CashierID != "" {
		q = q.Where("cashier_id = ?", filter.CashierID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	err := q.Order("created_at DESC").Find(&transactions).Error
	return transactions, translate(err)
}

func (r *transactionRepo) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_no ASC")
	})
}
