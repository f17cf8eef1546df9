package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tobaku-pos/internal/model"
	"tobaku-pos/internal/repository"
	"tobaku-pos/internal/repository/memory"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	cashier = model.Actor{ID: "0b8a3c1e-0000-4000-8000-000000000001", Name: "Sari", Role: model.RoleStaff}
	admin   = model.Actor{ID: "0b8a3c1e-0000-4000-8000-000000000002", Name: "Budi", Role: model.RoleAdmin}
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(event Event) {
	m.Called(event)
}

// recorder keeps every published event.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action + "/" + e.Type
	}
	return out
}

func createProduct(t *testing.T, store repository.Store, name string, price int64, stock, minStock int) *model.Product {
	t.Helper()
	p, err := NewCatalogService(store, nil).Create(context.Background(), admin, CreateProductRequest{
		Name:      name,
		Category:  "Sembako",
		SKU:       "SKU-" + name,
		CostPrice: price / 2,
		SellPrice: price,
		Stock:     stock,
		MinStock:  minStock,
	})
	require.NoError(t, err)
	return p
}

func stockOf(t *testing.T, store repository.Store, p *model.Product) int {
	t.Helper()
	got, err := store.Products().FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	return got.Stock
}

var errDiskFull = errors.New("disk full")

// faultyStore wraps the memory store and fails chosen writes inside units of
// work, so rollback can be observed.
type faultyStore struct {
	*memory.Store
	failItems      bool
	failHeader     bool
	failLogAt      int // 1-based ledger append that fails within a unit, 0 = never
	logsInThisUnit int
}

func (s *faultyStore) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	return s.Store.WithinTx(ctx, func(r repository.Repos) error {
		s.logsInThisUnit = 0
		return fn(&faultyRepos{Repos: r, store: s})
	})
}

type faultyRepos struct {
	repository.Repos
	store *faultyStore
}

func (r *faultyRepos) Transactions() repository.TransactionRepository {
	return &faultyTransactions{TransactionRepository: r.Repos.Transactions(), store: r.store}
}

func (r *faultyRepos) StockLogs() repository.StockLogRepository {
	return &faultyLogs{StockLogRepository: r.Repos.StockLogs(), store: r.store}
}

type faultyTransactions struct {
	repository.TransactionRepository
	store *faultyStore
}

func (t *faultyTransactions) Create(ctx context.Context, tx *model.Transaction) error {
	if t.store.failHeader {
		return errDiskFull
	}
	return t.TransactionRepository.Create(ctx, tx)
}

func (t *faultyTransactions) CreateItems(ctx context.Context, items []model.TransactionItem) error {
	if t.store.failItems {
		return errDiskFull
	}
	return t.TransactionRepository.CreateItems(ctx, items)
}

type faultyLogs struct {
	repository.StockLogRepository
	store *faultyStore
}

func (l *faultyLogs) Create(ctx context.Context, entry *model.StockLog) error {
	l.store.logsInThisUnit++
	if l.store.failLogAt > 0 && l.store.logsInThisUnit == l.store.failLogAt {
		return errDiskFull
	}
	return l.StockLogRepository.Create(ctx, entry)
}
