package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID       uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Code     string          `gorm:"uniqueIndex;not null;check:chk_products_code,length(trim(code)) > 0" json:"code" validate:"notblank,max=64"`
	Name     string          `gorm:"not null;check:chk_products_name,length(trim(name)) > 0" json:"name" validate:"notblank,max=255"`
	Category string          `json:"category" validate:"max=64"`
	Unit     string          `json:"unit" validate:"max=16"`
	Price    decimal.Decimal `gorm:"type:real;not null;default:0;check:chk_products_price,price >= 0" json:"price" validate:"decimal_gte0"`
	Quantity int             `gorm:"not null;default:0;check:chk_products_quantity,quantity >= 0" json:"quantity" validate:"gte=0"`
	MinStock int             `gorm:"column:min_stock;not null;default:0;check:chk_products_min_stock,min_stock >= 0" json:"min_stock" validate:"gte=0"`
}

// IsLowStock reports whether the quantity fell under the warning threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity < p.MinStock
}

// DisplayText is the one-line label used by pickers, e.g. "A1 - Widget (stock: 3)".
func (p *Product) DisplayText() string {
	return fmt.Sprintf("%s - %s (stock: %d)", p.Code, p.Name, p.Quantity)
}
