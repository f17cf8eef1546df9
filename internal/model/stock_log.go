package model

import "github.com/google/uuid"

type StockType string

const (
	StockIn  StockType = "IN"
	StockOut StockType = "OUT"
)

// MaxQuantity caps a single movement or cart line, merged lines included.
const MaxQuantity = 1_000_000

// SourceSale is the ledger source recorded for every debit caused by a checkout.
const SourceSale = "Penjualan"

// StockLog is one entry of the append-only stock ledger.
//
// Quantity is what the caller asked for; AppliedQuantity is what actually
// changed on the product. They only differ for clamped OUT movements.
type StockLog struct {
	LedgerModel
	ProductID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName     string     `gorm:"type:varchar(255)" json:"product_name"` // snapshot
	Type            StockType  `gorm:"type:varchar(10);not null;index" json:"type"`
	Quantity        int        `gorm:"not null" json:"quantity"`
	AppliedQuantity int        `gorm:"not null" json:"applied_quantity"`
	StockAfter      int        `gorm:"not null" json:"stock_after"`
	Source          string     `gorm:"type:varchar(255);not null" json:"source"`
	TransactionID   *uuid.UUID `gorm:"type:uuid;index" json:"transaction_id,omitempty"`
	CreatedBy       string     `gorm:"type:varchar(255)" json:"created_by"`
}
