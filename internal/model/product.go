package model

type Product struct {
	BaseModel
	Name      string `gorm:"type:varchar(255);not null;index" json:"name"`
	Category  string `gorm:"type:varchar(100);not null;index" json:"category"`
	SKU       string `gorm:"type:varchar(50);not null;index" json:"sku"` // searchable, not unique
	CostPrice int64  `gorm:"not null;default:0" json:"cost_price"`
	SellPrice int64  `gorm:"not null;default:0" json:"sell_price"`
	Stock     int    `gorm:"not null;default:0;check:chk_products_stock_non_negative,stock >= 0" json:"stock"`
	MinStock  int    `gorm:"not null;default:0" json:"min_stock"`
}

// IsLowStock reports whether the product is at or below its reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}
