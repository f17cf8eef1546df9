package repository

import (
	"context"
	"fmt"

	"tobaku-pos/internal/model"

	"gorm.io/gorm"
)

// Repos groups the repositories that may take part in one unit of work.
type Repos interface {
	Products() ProductRepository
	StockLogs() StockLogRepository
	Transactions() TransactionRepository
	Users() UserRepository
}

// TxManager hides begin/commit/rollback from the services. Repos handed to fn
// are bound to the transaction; fn returning an error rolls everything back.
// fn must not call WithinTx again or use repos obtained outside of it.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}

// Store is what the services depend on: plain repos for reads and single
// writes, plus the transaction manager for multi-record units of work.
type Store interface {
	Repos
	TxManager
}

type gormRepos struct {
	products     ProductRepository
	stockLogs    StockLogRepository
	transactions TransactionRepository
	users        UserRepository
}

func newGormRepos(db *gorm.DB) *gormRepos {
	return &gormRepos{
		products:     NewProductRepo(db),
		stockLogs:    NewStockLogRepo(db),
		transactions: NewTransactionRepo(db),
		users:        NewUserRepo(db),
	}
}

func (r *gormRepos) Products() ProductRepository         { return r.products }
func (r *gormRepos) StockLogs() StockLogRepository       { return r.stockLogs }
func (r *gormRepos) Transactions() TransactionRepository { return r.transactions }
func (r *gormRepos) Users() UserRepository               { return r.users }

type gormStore struct {
	*gormRepos
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{gormRepos: newGormRepos(db), db: db}
}

func (s *gormStore) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// repos are rebuilt on the transaction handle
		return fn(newGormRepos(tx))
	})
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.StockLog{},
		&model.Transaction{},
		&model.TransactionItem{},
		&model.User{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	// AutoMigrate only adds CHECK constraints when creating the table
	if !db.Migrator().HasConstraint(&model.Product{}, "chk_products_stock_non_negative") {
		if err := db.Migrator().CreateConstraint(&model.Product{}, "chk_products_stock_non_negative"); err != nil {
			return fmt.Errorf("stock constraint: %w", err)
		}
	}
	return nil
}
