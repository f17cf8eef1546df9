package service

import (
	"tobaku-pos/internal/model"
)

// Event is what live clients receive over the WebSocket.
type Event struct {
	Type    string      `json:"type"`
	Action  string      `json:"action"`
	Data    interface{} `json:"data"`
	User    model.Actor `json:"user"`
	Message string      `json:"message"`
}

const (
	EventStockUpdate = "stock_update"
	EventLowStock    = "low_stock"
	EventSale        = "sale"

	ActionProductCreated     = "product_created"
	ActionProductUpdated     = "product_updated"
	ActionProductDeleted     = "product_deleted"
	ActionStockMovement      = "stock_movement"
	ActionTransactionCreated = "transaction_created"
)

// Publisher fans events out to connected clients. Services only publish after
// the unit of work has committed.
type Publisher interface {
	Publish(event Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

func lowStockEvent(p *model.Product, actor model.Actor) Event {
	return Event{
		Type:   EventLowStock,
		Action: ActionStockMovement,
		Data: map[string]interface{}{
			"product_id": p.ID,
			"name":       p.Name,
			"stock":      p.Stock,
			"min_stock":  p.MinStock,
		},
		User:    actor,
		Message: "Stok " + p.Name + " menipis",
	}
}
