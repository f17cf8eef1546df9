package service

import (
	"context"
	"fmt"
	"strings"

	"tobaku-pos/internal/model"
	"tobaku-pos/internal/repository"

	"github.com/google/uuid"
)

type CatalogService interface {
	List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, actor model.Actor, req CreateProductRequest) (*model.Product, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, patch ProductPatch) (*model.Product, error)
	Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error
}

type CreateProductRequest struct {
	Name      string `json:"name" validate:"notblank"`
	Category  string `json:"category" validate:"notblank"`
	SKU       string `json:"sku" validate:"notblank"`
	CostPrice int64  `json:"cost_price" validate:"gte=0"`
	SellPrice int64  `json:"sell_price" validate:"gte=0"`
	Stock     int    `json:"stock" validate:"gte=0"`
	MinStock  int    `json:"min_stock" validate:"gte=0"`
}

// ProductPatch is a partial update: nil fields are left alone.
type ProductPatch struct {
	Name      *string `json:"name" validate:"omitempty,notblank"`
	Category  *string `json:"category" validate:"omitempty,notblank"`
	SKU       *string `json:"sku" validate:"omitempty,notblank"`
	CostPrice *int64  `json:"cost_price" validate:"omitempty,gte=0"`
	SellPrice *int64  `json:"sell_price" validate:"omitempty,gte=0"`
	Stock     *int    `json:"stock" validate:"omitempty,gte=0"`
	MinStock  *int    `json:"min_stock" validate:"omitempty,gte=0"`
}

type catalogService struct {
	store     repository.Store
	publisher Publisher
}

func NewCatalogService(store repository.Store, publisher Publisher) CatalogService {
	return &catalogService{store: store, publisher: publisherOrNop(publisher)}
}

func (s *catalogService) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	products, err := s.store.Products().FindAll(ctx, filter)
	if err != nil {
		return nil, fromRepo(err, "product")
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "product")
	}
	return p, nil
}

func (s *catalogService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.store.Products().Categories(ctx)
	if err != nil {
		return nil, fromRepo(err, "product")
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (s *catalogService) Create(ctx context.Context, actor model.Actor, req CreateProductRequest) (*model.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	req.SKU = strings.TrimSpace(req.SKU)
	if err := validate(&req); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:      req.Name,
		Category:  req.Category,
		SKU:       req.SKU,
		CostPrice: req.CostPrice,
		SellPrice: req.SellPrice,
		Stock:     req.Stock,
		MinStock:  req.MinStock,
	}
	product.CreatedBy = actor.ID
	product.UpdatedBy = actor.ID

	if err := s.store.Products().Create(ctx, product); err != nil {
		return nil, fromRepo(err, "product")
	}

	s.publisher.Publish(Event{
		Type:    EventStockUpdate,
		Action:  ActionProductCreated,
		Data:    product,
		User:    actor,
		Message: fmt.Sprintf("%s created product '%s'", actor.Name, product.Name),
	})
	return product, nil
}

func (s *catalogService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, patch ProductPatch) (*model.Product, error) {
	trimPtr(patch.Name)
	trimPtr(patch.Category)
	trimPtr(patch.SKU)
	if err := validate(&patch); err != nil {
		return nil, err
	}

	var updated *model.Product
	var oldStock int
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		existing, err := r.Products().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		oldStock = existing.Stock

		if patch.Name != nil {
			existing.Name = *patch.Name
		}
		if patch.Category != nil {
			existing.Category = *patch.Category
		}
		if patch.SKU != nil {
			existing.SKU = *patch.SKU
		}
		if patch.CostPrice != nil {
			existing.CostPrice = *patch.CostPrice
		}
		if patch.SellPrice != nil {
			existing.SellPrice = *patch.SellPrice
		}
		if patch.Stock != nil {
			existing.Stock = *patch.Stock
		}
		if patch.MinStock != nil {
			existing.MinStock = *patch.MinStock
		}
		existing.UpdatedBy = actor.ID

		if err := r.Products().Update(ctx, existing); err != nil {
			return err
		}
		updated, err = r.Products().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fromRepo(err, "product")
	}

	s.publisher.Publish(Event{
		Type:   EventStockUpdate,
		Action: ActionProductUpdated,
		Data: map[string]interface{}{
			"product":   updated,
			"old_stock": oldStock,
			"new_stock": updated.Stock,
		},
		User:    actor,
		Message: fmt.Sprintf("%s updated product '%s'", actor.Name, updated.Name),
	})
	return updated, nil
}

func (s *catalogService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if err := s.store.Products().Delete(ctx, id, actor.ID); err != nil {
		return fromRepo(err, "product")
	}
	s.publisher.Publish(Event{
		Type:    EventStockUpdate,
		Action:  ActionProductDeleted,
		Data:    map[string]interface{}{"product_id": id},
		User:    actor,
		Message: fmt.Sprintf("%s deleted a product", actor.Name),
	})
	return nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
