package model

import "github.com/google/uuid"

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentNonCash PaymentMethod = "non-cash"
)

// Transaction is a completed sale. Append-only.
type Transaction struct {
	LedgerModel
	Total          int64             `gorm:"not null" json:"total"`
	PaymentMethod  PaymentMethod     `gorm:"type:varchar(20);not null" json:"payment_method"`
	CashierID      string            `gorm:"type:varchar(255);not null;index" json:"cashier_id"`
	CashierName    string            `gorm:"type:varchar(255)" json:"cashier_name"`
	Note           string            `gorm:"type:text" json:"note,omitempty"`
	IdempotencyKey *string           `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	Items          []TransactionItem `gorm:"foreignKey:TransactionID" json:"items"`
}

// TransactionItem snapshots product name and sell price at the time of sale.
type TransactionItem struct {
	LedgerModel
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index" json:"transaction_id"`
	LineNo        int       `gorm:"not null" json:"line_no"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName   string    `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	UnitPrice     int64     `gorm:"not null" json:"unit_price"`
	TotalPrice    int64     `gorm:"not null" json:"total_price"`
}
