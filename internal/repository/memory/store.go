// Package memory is an in-process implementation of repository.Store used for
// development without Postgres and by the service tests. Units of work are
// serialised by one mutex and rolled back by restoring a snapshot.
package memory

import (
	"context"
	"sync"
	"time"

	"tobaku-pos/internal/model"
	"tobaku-pos/internal/repository"

	"github.com/google/uuid"
)

type state struct {
	products     map[uuid.UUID]model.Product
	stockLogs    []model.StockLog
	transactions []model.Transaction // headers, Items left empty
	items        []model.TransactionItem
	users        map[uuid.UUID]model.User
}

func newState() *state {
	return &state{
		products: make(map[uuid.UUID]model.Product),
		users:    make(map[uuid.UUID]model.User),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:     make(map[uuid.UUID]model.Product, len(s.products)),
		stockLogs:    append([]model.StockLog(nil), s.stockLogs...),
		transactions: append([]model.Transaction(nil), s.transactions...),
		items:        append([]model.TransactionItem(nil), s.items...),
		users:        make(map[uuid.UUID]model.User, len(s.users)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{state: newState(), now: time.Now}
}

// NewWithClock lets tests control created_at/updated_at.
func NewWithClock(now func() time.Time) *Store {
	return &Store{state: newState(), now: now}
}

// view runs f against the live state, taking the lock unless the caller
// already holds it as part of a unit of work.
type view struct {
	store *Store
	inTx  bool
}

func (v view) do(f func(st *state) error) error {
	if !v.inTx {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	return f(v.store.state)
}

func (v view) now() time.Time {
	return v.store.now()
}

type repos struct {
	products     *productRepo
	stockLogs    *stockLogRepo
	transactions *transactionRepo
	users        *userRepo
}

func newRepos(v view) *repos {
	return &repos{
		products:     &productRepo{v},
		stockLogs:    &stockLogRepo{v},
		transactions: &transactionRepo{v},
		users:        &userRepo{v},
	}
}

func (r *repos) Products() repository.ProductRepository         { return r.products }
func (r *repos) StockLogs() repository.StockLogRepository       { return r.stockLogs }
func (r *repos) Transactions() repository.TransactionRepository { return r.transactions }
func (r *repos) Users() repository.UserRepository               { return r.users }

func (s *Store) Products() repository.ProductRepository {
	return &productRepo{view{store: s}}
}

func (s *Store) StockLogs() repository.StockLogRepository {
	return &stockLogRepo{view{store: s}}
}

func (s *Store) Transactions() repository.TransactionRepository {
	return &transactionRepo{view{store: s}}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepo{view{store: s}}
}

func (s *Store) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	snapshot := s.state.clone()
	committed := false
	defer func() {
		// also covers a panic inside fn
		if !committed {
			s.state = snapshot
		}
		s.mu.Unlock()
	}()

	if err := fn(newRepos(view{store: s, inTx: true})); err != nil {
		return err
	}
	committed = true
	return nil
}
