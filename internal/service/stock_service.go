package service

import (
	"context"
	"fmt"
	"strings"

	"tobaku-pos/internal/model"
	"tobaku-pos/internal/repository"

	"github.com/google/uuid"
)

type StockService interface {
	RecordMovement(ctx context.Context, actor model.Actor, req MovementRequest) (*model.StockLog, error)
	ListLogs(ctx context.Context, filter repository.StockLogFilter) ([]model.StockLog, error)
}

type MovementRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity  int             `json:"quantity" validate:"gt=0,max=1000000"`
	Type      model.StockType `json:"type" validate:"oneof=IN OUT"`
	Source    string          `json:"source" validate:"notblank"`
	// AllowClamp lets an OUT larger than the stock on hand bring it to zero
	// instead of failing. Used for write-offs where the real remainder is
	// unknown.
	AllowClamp bool `json:"allow_clamp"`
}

type stockService struct {
	store     repository.Store
	publisher Publisher
}

func NewStockService(store repository.Store, publisher Publisher) StockService {
	return &stockService{store: store, publisher: publisherOrNop(publisher)}
}

// RecordMovement applies one IN or OUT and appends the ledger entry in the
// same unit of work.
func (s *stockService) RecordMovement(ctx context.Context, actor model.Actor, req MovementRequest) (*model.StockLog, error) {
	req.Source = strings.TrimSpace(req.Source)
	if err := validate(&req); err != nil {
		return nil, err
	}

	var entry *model.StockLog
	var product *model.Product
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		product, entry, err = applyMovement(ctx, r, actor, req, nil)
		return err
	})
	if err != nil {
		return nil, fromRepo(err, "product")
	}

	verb := "added"
	if req.Type == model.StockOut {
		verb = "removed"
	}
	s.publisher.Publish(Event{
		Type:    EventStockUpdate,
		Action:  ActionStockMovement,
		Data:    entry,
		User:    actor,
		Message: fmt.Sprintf("%s %s %d units of '%s' (%s)", actor.Name, verb, entry.AppliedQuantity, entry.ProductName, req.Source),
	})
	if product.IsLowStock() {
		s.publisher.Publish(lowStockEvent(product, actor))
	}
	return entry, nil
}

// applyMovement changes the stock and appends the log entry on the repos of
// an open unit of work. Checkout uses it for every sold line.
func applyMovement(ctx context.Context, r repository.Repos, actor model.Actor, req MovementRequest, txID *uuid.UUID) (*model.Product, *model.StockLog, error) {
	products := r.Products()

	var product *model.Product
	var applied int
	var err error

	switch {
	case req.Type == model.StockIn:
		product, err = products.IncreaseStock(ctx, req.ProductID, req.Quantity, actor.ID)
		applied = req.Quantity

	case req.AllowClamp:
		product, err = products.FindByIDForUpdate(ctx, req.ProductID)
		if err != nil {
			return nil, nil, err
		}
		applied = req.Quantity
		if applied > product.Stock {
			applied = product.Stock
		}
		product.Stock -= applied
		err = products.SetStock(ctx, product.ID, product.Stock, actor.ID)

	default:
		product, err = products.DecreaseStockIfEnough(ctx, req.ProductID, req.Quantity, actor.ID)
		applied = req.Quantity
	}
	if err != nil {
		return nil, nil, err
	}

	entry := &model.StockLog{
		ProductID:       product.ID,
		ProductName:     product.Name,
		Type:            req.Type,
		Quantity:        req.Quantity,
		AppliedQuantity: applied,
		StockAfter:      product.Stock,
		Source:          req.Source,
		TransactionID:   txID,
		CreatedBy:       actor.ID,
	}
	if err := r.StockLogs().Create(ctx, entry); err != nil {
		return nil, nil, err
	}
	return product, entry, nil
}

func (s *stockService) ListLogs(ctx context.Context, filter repository.StockLogFilter) ([]model.StockLog, error) {
	logs, err := s.store.StockLogs().FindAll(ctx, filter)
	if err != nil {
		return nil, fromRepo(err, "stock log")
	}
	if logs == nil {
		logs = []model.StockLog{}
	}
	return logs, nil
}
