package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"tobaku-pos/internal/checkout"
	"tobaku-pos/internal/model"
	"tobaku-pos/internal/repository"

	"github.com/google/uuid"
)

type CheckoutService interface {
	Quote(ctx context.Context, req SubmitRequest) (*Quote, error)
	Submit(ctx context.Context, actor model.Actor, req SubmitRequest) (*model.Transaction, error)
	SubmitSession(ctx context.Context, actor model.Actor, session *checkout.Session, note, idempotencyKey string) (*model.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, filter repository.TransactionFilter) ([]model.Transaction, error)
}

type CartItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"gt=0,max=1000000"`
}

type SubmitRequest struct {
	Items           []CartItem          `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   model.PaymentMethod `json:"payment_method" validate:"oneof=cash non-cash"`
	DiscountPercent int                 `json:"discount_percent" validate:"gte=0,lte=100"`
	Note            string              `json:"note" validate:"max=500"`
	IdempotencyKey  string              `json:"idempotency_key" validate:"max=255"`
}

type Quote struct {
	Lines         []checkout.Line     `json:"lines"`
	Totals        checkout.Totals     `json:"totals"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
}

type checkoutService struct {
	store     repository.Store
	publisher Publisher
}

func NewCheckoutService(store repository.Store, publisher Publisher) CheckoutService {
	return &checkoutService{store: store, publisher: publisherOrNop(publisher)}
}

// Quote prices a cart against the current catalog without writing anything.
func (s *checkoutService) Quote(ctx context.Context, req SubmitRequest) (*Quote, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	session := checkout.NewSession()
	if err := session.SetPaymentMethod(req.PaymentMethod); err != nil {
		return nil, validationError("%v", err)
	}
	if err := session.SetDiscount(req.DiscountPercent); err != nil {
		return nil, validationError("%v", err)
	}
	for _, item := range req.Items {
		product, err := s.store.Products().FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, fromRepo(err, "product "+item.ProductID.String())
		}
		if err := session.AddItem(*product, item.Quantity); err != nil {
			if errors.Is(err, checkout.ErrInsufficientStock) {
				return nil, validationError("quantity for '%s' exceeds available stock (%d)", product.Name, product.Stock)
			}
			return nil, validationError("%v", err)
		}
	}

	return &Quote{
		Lines:         session.Lines(),
		Totals:        session.Totals(),
		PaymentMethod: session.PaymentMethod(),
	}, nil
}

// Submit records a sale. Header, items, stock debits and ledger entries are
// written in one unit of work; any failure leaves no trace of the sale.
//
// Prices and names are read inside the unit of work, so the sale uses the
// catalog as it is at commit time rather than what the cart showed.
func (s *checkoutService) Submit(ctx context.Context, actor model.Actor, req SubmitRequest) (*model.Transaction, error) {
	req.Note = strings.TrimSpace(req.Note)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if err := validate(&req); err != nil {
		return nil, err
	}
	if actor.ID == "" {
		return nil, validationError("cashier is required")
	}

	if req.IdempotencyKey != "" {
		existing, err := s.store.Transactions().FindByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			return replay(existing, actor)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fromRepo(err, "transaction")
		}
	}

	lines, err := mergeCartItems(req.Items)
	if err != nil {
		return nil, err
	}

	// debit in product id order so two carts sharing products lock rows in
	// the same sequence
	order := make([]int, len(lines))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return lines[order[a]].ProductID.String() < lines[order[b]].ProductID.String()
	})

	txID := uuid.New()
	var created *model.Transaction
	var touched []*model.Product

	err = s.store.WithinTx(ctx, func(r repository.Repos) error {
		items := make([]model.TransactionItem, len(lines))
		touched = touched[:0]

		for _, i := range order {
			line := lines[i]
			product, _, err := applyMovement(ctx, r, actor, MovementRequest{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Type:      model.StockOut,
				Source:    model.SourceSale,
			}, &txID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return notFound("product " + line.ProductID.String())
			case errors.Is(err, repository.ErrInsufficientStock):
				return &Error{
					Kind:    ErrConcurrencyConflict,
					Message: fmt.Sprintf("insufficient stock for product %s", line.ProductID),
					Err:     err,
				}
			case err != nil:
				return err
			}
			touched = append(touched, product)

			items[i] = model.TransactionItem{
				TransactionID: txID,
				LineNo:        i + 1,
				ProductID:     product.ID,
				ProductName:   product.Name,
				Quantity:      line.Quantity,
				UnitPrice:     product.SellPrice,
				TotalPrice:    product.SellPrice * int64(line.Quantity),
			}
		}

		totals := checkout.ComputeTotals(itemLines(items), req.DiscountPercent)
		header := &model.Transaction{
			Total:         totals.Total,
			PaymentMethod: req.PaymentMethod,
			CashierID:     actor.ID,
			CashierName:   actor.Name,
			Note:          checkout.DiscountNote(req.DiscountPercent, req.Note),
		}
		header.ID = txID
		if req.IdempotencyKey != "" {
			key := req.IdempotencyKey
			header.IdempotencyKey = &key
		}
		if err := r.Transactions().Create(ctx, header); err != nil {
			return err
		}
		if err := r.Transactions().CreateItems(ctx, items); err != nil {
			return err
		}
		header.Items = items
		created = header
		return nil
	})
	if err != nil {
		// lost a race with a retry carrying the same key
		if req.IdempotencyKey != "" && errors.Is(err, repository.ErrDuplicate) {
			existing, findErr := s.store.Transactions().FindByIdempotencyKey(ctx, req.IdempotencyKey)
			if findErr == nil {
				return replay(existing, actor)
			}
		}
		return nil, fromRepo(err, "transaction")
	}

	s.publisher.Publish(Event{
		Type:    EventSale,
		Action:  ActionTransactionCreated,
		Data:    created,
		User:    actor,
		Message: fmt.Sprintf("%s recorded a sale of Rp %d", actor.Name, created.Total),
	})
	for _, p := range touched {
		if p.IsLowStock() {
			s.publisher.Publish(lowStockEvent(p, actor))
		}
	}
	return created, nil
}

// SubmitSession submits the cart and clears it once the sale is committed.
func (s *checkoutService) SubmitSession(ctx context.Context, actor model.Actor, session *checkout.Session, note, idempotencyKey string) (*model.Transaction, error) {
	if session == nil || session.IsEmpty() {
		return nil, validationError("%v", checkout.ErrEmptyCart)
	}
	req := SubmitRequest{
		PaymentMethod:   session.PaymentMethod(),
		DiscountPercent: session.DiscountPercent(),
		Note:            note,
		IdempotencyKey:  idempotencyKey,
	}
	for _, l := range session.Lines() {
		req.Items = append(req.Items, CartItem{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	tx, err := s.Submit(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	session.Clear()
	return tx, nil
}

func (s *checkoutService) Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	tx, err := s.store.Transactions().FindByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "transaction")
	}
	return tx, nil
}

func (s *checkoutService) List(ctx context.Context, filter repository.TransactionFilter) ([]model.Transaction, error) {
	txs, err := s.store.Transactions().FindAll(ctx, filter)
	if err != nil {
		return nil, fromRepo(err, "transaction")
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	return txs, nil
}

// replay returns the sale already recorded under an idempotency key. Keys are
// scoped to the cashier that used them first.
func replay(existing *model.Transaction, actor model.Actor) (*model.Transaction, error) {
	if existing.CashierID != actor.ID {
		return nil, validationError("idempotency key already used by another cashier")
	}
	return existing, nil
}

// mergeCartItems folds repeated products into one line, keeping the position
// of the first occurrence. Inputs are already bounded by MaxQuantity, so the
// sum cannot overflow before it is checked.
func mergeCartItems(items []CartItem) ([]CartItem, error) {
	out := make([]CartItem, 0, len(items))
	pos := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		if i, ok := pos[it.ProductID]; ok {
			if it.Quantity > model.MaxQuantity-out[i].Quantity {
				return nil, validationError("total quantity for product %s exceeds %d", it.ProductID, model.MaxQuantity)
			}
			out[i].Quantity += it.Quantity
			continue
		}
		pos[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out, nil
}

func itemLines(items []model.TransactionItem) []checkout.Line {
	lines := make([]checkout.Line, len(items))
	for i, it := range items {
		lines[i] = checkout.Line{ProductID: it.ProductID, Name: it.ProductName, UnitPrice: it.UnitPrice, Quantity: it.Quantity}
	}
	return lines
}
