package memory

import (
	"context"
	"math"
	"sort"
	"strings"

	"tobaku-pos/internal/model"
	"tobaku-pos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ---- products ----

type productRepo struct{ v view }

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	if product.Stock < 0 {
		return repository.ErrInsufficientStock
	}
	return r.v.do(func(st *state) error {
		if product.ID == uuid.Nil {
			product.ID = uuid.New()
		}
		if _, exists := st.products[product.ID]; exists {
			return repository.ErrDuplicate
		}
		now := r.v.now()
		product.CreatedAt = now
		product.UpdatedAt = now
		st.products[product.ID] = *product
		return nil
	})
}

func (r *productRepo) FindAll(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	var out []model.Product
	err := r.v.do(func(st *state) error {
		q := strings.ToLower(strings.TrimSpace(filter.Query))
		for _, p := range st.products {
			if p.DeletedAt.Valid {
				continue
			}
			if q != "" &&
				!strings.Contains(strings.ToLower(p.Name), q) &&
				!strings.Contains(strings.ToLower(p.SKU), q) &&
				!strings.Contains(strings.ToLower(p.Category), q) {
				continue
			}
			if filter.Category != "" && p.Category != filter.Category {
				continue
			}
			if filter.InStockOnly && p.Stock <= 0 {
				continue
			}
			if filter.LowStockOnly && !p.IsLowStock() {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var out *model.Product
	err := r.v.do(func(st *state) error {
		p, ok := live(st, id)
		if !ok {
			return repository.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *productRepo) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := r.v.do(func(st *state) error {
		seen := make(map[string]bool)
		for _, p := range st.products {
			if p.DeletedAt.Valid || seen[p.Category] {
				continue
			}
			seen[p.Category] = true
			out = append(out, p.Category)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	if product.Stock < 0 {
		return repository.ErrInsufficientStock
	}
	return r.v.do(func(st *state) error {
		p, ok := live(st, product.ID)
		if !ok {
			return repository.ErrNotFound
		}
		p.Name = product.Name
		p.Category = product.Category
		p.SKU = product.SKU
		p.CostPrice = product.CostPrice
		p.SellPrice = product.SellPrice
		p.Stock = product.Stock
		p.MinStock = product.MinStock
		p.UpdatedBy = product.UpdatedBy
		p.UpdatedAt = r.v.now()
		st.products[p.ID] = p
		return nil
	})
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return r.v.do(func(st *state) error {
		p, ok := live(st, id)
		if !ok {
			return repository.ErrNotFound
		}
		p.DeletedAt = gorm.DeletedAt{Time: r.v.now(), Valid: true}
		p.DeletedBy = deletedBy
		st.products[id] = p
		return nil
	})
}

func (r *productRepo) IncreaseStock(ctx context.Context, id uuid.UUID, qty int, updatedBy string) (*model.Product, error) {
	return r.adjust(id, updatedBy, func(p *model.Product) error {
		if qty < 0 || p.Stock > math.MaxInt-qty {
			return repository.ErrInsufficientStock
		}
		p.Stock += qty
		return nil
	})
}

func (r *productRepo) DecreaseStockIfEnough(ctx context.Context, id uuid.UUID, qty int, updatedBy string) (*model.Product, error) {
	return r.adjust(id, updatedBy, func(p *model.Product) error {
		if qty < 0 || p.Stock < qty {
			return repository.ErrInsufficientStock
		}
		p.Stock -= qty
		return nil
	})
}

// FindByIDForUpdate needs no extra locking here: units of work already hold
// the store mutex.
func (r *productRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *productRepo) SetStock(ctx context.Context, id uuid.UUID, newStock int, updatedBy string) error {
	_, err := r.adjust(id, updatedBy, func(p *model.Product) error {
		if newStock < 0 {
			return repository.ErrInsufficientStock
		}
		p.Stock = newStock
		return nil
	})
	return err
}

func (r *productRepo) adjust(id uuid.UUID, updatedBy string, f func(p *model.Product) error) (*model.Product, error) {
	var out *model.Product
	err := r.v.do(func(st *state) error {
		p, ok := live(st, id)
		if !ok {
			return repository.ErrNotFound
		}
		if err := f(&p); err != nil {
			return err
		}
		if p.Stock < 0 {
			return repository.ErrInsufficientStock
		}
		p.UpdatedBy = updatedBy
		p.UpdatedAt = r.v.now()
		st.products[id] = p
		out = &p
		return nil
	})
	return out, err
}

func live(st *state, id uuid.UUID) (model.Product, bool) {
	p, ok := st.products[id]
	if !ok || p.DeletedAt.Valid {
		return model.Product{}, false
	}
	return p, true
}

// ---- stock logs ----

type stockLogRepo struct{ v view }

func (r *stockLogRepo) Create(ctx context.Context, entry *model.StockLog) error {
	return r.v.do(func(st *state) error {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = r.v.now()
		}
		st.stockLogs = append(st.stockLogs, *entry)
		return nil
	})
}

func (r *stockLogRepo) FindAll(ctx context.Context, filter repository.StockLogFilter) ([]model.StockLog, error) {
	var out []model.StockLog
	err := r.v.do(func(st *state) error {
		// newest first: walk the append order backwards
		for i := len(st.stockLogs) - 1; i >= 0; i-- {
			l := st.stockLogs[i]
			if filter.ProductID != nil && l.ProductID != *filter.ProductID {
				continue
			}
			if filter.TransactionID != nil && (l.TransactionID == nil || *l.TransactionID != *filter.TransactionID) {
				continue
			}
			if filter.Type != "" && l.Type != filter.Type {
				continue
			}
			if !filter.From.IsZero() && l.CreatedAt.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && l.CreatedAt.After(filter.To) {
				continue
			}
			out = append(out, l)
			if filter.Limit > 0 && len(out) == filter.Limit {
				break
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

// ---- transactions ----

type transactionRepo struct{ v view }

func (r *transactionRepo) Create(ctx context.Context, tx *model.Transaction) error {
	return r.v.do(func(st *state) error {
		if tx.IdempotencyKey != nil {
			for _, existing := range st.transactions {
				if existing.IdempotencyKey != nil && *existing.IdempotencyKey == *tx.IdempotencyKey {
					return repository.ErrDuplicate
				}
			}
		}
		if tx.ID == uuid.Nil {
			tx.ID = uuid.New()
		}
		if tx.CreatedAt.IsZero() {
			tx.CreatedAt = r.v.now()
		}
		header := *tx
		header.Items = nil
		st.transactions = append(st.transactions, header)
		return nil
	})
}

func (r *transactionRepo) CreateItems(ctx context.Context, items []model.TransactionItem) error {
	return r.v.do(func(st *state) error {
		for i := range items {
			if !hasTransaction(st, items[i].TransactionID) {
				return repository.ErrNotFound
			}
			if items[i].ID == uuid.Nil {
				items[i].ID = uuid.New()
			}
			if items[i].CreatedAt.IsZero() {
				items[i].CreatedAt = r.v.now()
			}
		}
		st.items = append(st.items, items...)
		return nil
	})
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return r.findOne(func(t model.Transaction) bool { return t.ID == id })
}

func (r *transactionRepo) FindByIdempotencyKey(ctx context.Context, key string) (*model.Transaction, error) {
	return r.findOne(func(t model.Transaction) bool {
		return t.IdempotencyKey != nil && *t.IdempotencyKey == key
	})
}

func (r *transactionRepo) FindAll(ctx context.Context, filter repository.TransactionFilter) ([]model.Transaction, error) {
	var out []model.Transaction
	err := r.v.do(func(st *state) error {
		for i := len(st.transactions) - 1; i >= 0; i-- {
			t := st.transactions[i]
			if !filter.From.IsZero() && t.CreatedAt.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && t.CreatedAt.After(filter.To) {
				continue
			}
			if filter.CashierID != "" && t.CashierID != filter.CashierID {
				continue
			}
			t.Items = itemsOf(st, t.ID)
			out = append(out, t)
			if filter.Limit > 0 && len(out) == filter.Limit {
				break
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

func (r *transactionRepo) findOne(match func(model.Transaction) bool) (*model.Transaction, error) {
	var out *model.Transaction
	err := r.v.do(func(st *state) error {
		for _, t := range st.transactions {
			if match(t) {
				t.Items = itemsOf(st, t.ID)
				out = &t
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func hasTransaction(st *state, id uuid.UUID) bool {
	for _, t := range st.transactions {
		if t.ID == id {
			return true
		}
	}
	return false
}

func itemsOf(st *state, id uuid.UUID) []model.TransactionItem {
	var items []model.TransactionItem
	for _, it := range st.items {
		if it.TransactionID == id {
			items = append(items, it)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].LineNo < items[j].LineNo })
	return items
}

// ---- users ----

type userRepo struct{ v view }

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(func(u model.User) bool { return u.Username == username })
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.findOne(func(u model.User) bool { return u.ID == id })
}

func (r *userRepo) FindAll(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := r.v.do(func(st *state) error {
		for _, u := range st.users {
			if !u.DeletedAt.Valid {
				out = append(out, u)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, err
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.v.do(func(st *state) error {
		for _, u := range st.users {
			if u.Username == user.Username {
				return repository.ErrDuplicate
			}
		}
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		now := r.v.now()
		user.CreatedAt = now
		user.UpdatedAt = now
		st.users[user.ID] = *user
		return nil
	})
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.users[user.ID]; !ok {
			return repository.ErrNotFound
		}
		user.UpdatedAt = r.v.now()
		st.users[user.ID] = *user
		return nil
	})
}

func (r *userRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	return r.v.do(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return repository.ErrNotFound
		}
		u.Password = hashedPassword
		u.UpdatedAt = r.v.now()
		st.users[userID] = u
		return nil
	})
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	return r.v.do(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return repository.ErrNotFound
		}
		now := r.v.now()
		u.LastLoginAt = &now
		st.users[userID] = u
		return nil
	})
}

func (r *userRepo) findOne(match func(model.User) bool) (*model.User, error) {
	var out *model.User
	err := r.v.do(func(st *state) error {
		for _, u := range st.users {
			if !u.DeletedAt.Valid && match(u) {
				out = &u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}
